// Package crcgen is the root driver: it wires model.Model through the
// kernel/bwe cross-check for numeric computation (Compute) and through
// symtable/macro for C source generation (Emit). Grounded on
// _examples/pasztorpisti-go-crc/crc.go's top-level NewAlgo/Algo[T]
// builder, generalized from a single register algorithm to the four-way
// cross-checked compute path plus the template-driven codegen path this
// spec adds.
package crcgen

import (
	"github.com/pkg/errors"

	"github.com/crcgen/crcgen/bwe"
	"github.com/crcgen/crcgen/kernel"
	"github.com/crcgen/crcgen/macro"
	"github.com/crcgen/crcgen/model"
	"github.com/crcgen/crcgen/symtable"
)

// Action selects which template Emit expands.
type Action int

const (
	GenerateH Action = iota
	GenerateC
	GenerateCMain
	GenerateTable
)

func (a Action) String() string {
	switch a {
	case GenerateH:
		return "GenerateH"
	case GenerateC:
		return "GenerateC"
	case GenerateCMain:
		return "GenerateCMain"
	case GenerateTable:
		return "GenerateTable"
	default:
		return "Action(?)"
	}
}

// Compute runs every algorithm in algos over data under m and
// cross-checks their results, returning kernel.ErrInconsistentAlgorithms
// (or bwe's own build error) on any divergence. m must be fully defined
// (see model.Model.Defined). Unlike kernel.CRC, Compute also accepts
// kernel.BitwiseExpression -- resolving the kernel/bwe import cycle
// documented in DESIGN.md is this function's whole reason to exist.
func Compute(m *model.Model, algos []kernel.Algorithm, data []byte) (model.U128, error) {
	m.MustFull()

	var registerAlgos []kernel.Algorithm
	wantBWE := false
	for _, a := range algos {
		if a == kernel.BitwiseExpression {
			wantBWE = true
			continue
		}
		registerAlgos = append(registerAlgos, a)
	}

	var result model.U128
	haveResult := false
	if len(registerAlgos) > 0 {
		v, err := kernel.CRC(m, registerAlgos, data)
		if err != nil {
			return model.U128{}, err
		}
		result, haveResult = v, true
	}

	if wantBWE {
		expr, err := bwe.Build(m)
		if err != nil {
			return model.U128{}, errors.Wrap(err, "crcgen: building bitwise expression for cross-check")
		}
		v := kernel.TableDrivenWithLookup(m, data, expr.Eval)
		if haveResult && !v.Equal(result) {
			return model.U128{}, &kernel.ErrInconsistentAlgorithms{
				A: registerAlgos[0], ResultA: result,
				B: kernel.BitwiseExpression, ResultB: v,
			}
		}
		result, haveResult = v, true
	}

	if !haveResult {
		return model.U128{}, errors.New("crcgen: Compute called with no algorithms")
	}
	return result, nil
}

// Emit expands the C source template named by action against opt, using m
// as the model backing opt.Model: if opt.Model is a different pointer (or
// nil), it is replaced with m before generation, so m always wins.
func Emit(m *model.Model, opt symtable.Options, action Action) (string, error) {
	if opt.Model != m {
		opt.Model = m
	}

	sym := symtable.New(opt)
	p := macro.New(sym)

	var tmplName string
	switch action {
	case GenerateH:
		tmplName = "h_template"
	case GenerateC:
		tmplName = "c_template"
	case GenerateCMain:
		c, err := p.Parse(`$c_template`)
		if err != nil {
			return "", err
		}
		p2 := macro.New(sym)
		main, err := p2.Parse(`$main_template`)
		if err != nil {
			return "", err
		}
		return c + "\n\n" + main, nil
	case GenerateTable:
		tmplName = "crc_table_init"
	default:
		return "", errors.Errorf("crcgen: unknown action %v", action)
	}

	return p.Parse("$" + tmplName)
}
