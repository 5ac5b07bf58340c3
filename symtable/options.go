// Package symtable implements the macro language's symbol source for CRC
// C-source generation (spec.md §4.5): a static set of symbols seeded from
// an Options/Model pair, plus a larger set of symbols computed lazily on
// first lookup and memoized, including the four root C templates. It
// satisfies package macro's SymbolSource contract.
package symtable

import (
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crcgen/crcgen/kernel"
	"github.com/crcgen/crcgen/model"
)

// CStd selects the target C dialect, which changes several generated
// idioms (bool vs int, inline vs macro, printf vs snprintf format width).
type CStd int

const (
	C99 CStd = iota
	C89
)

func (c CStd) String() string {
	if c == C89 {
		return "C89"
	}
	return "C99"
}

// Options carries everything about a code-generation request that isn't
// part of the CRC parameters themselves: the target algorithm, naming,
// dialect, and output shape. M may be partially defined (see
// model.Partial) -- any field left nil is generated as a runtime cfg_t
// member instead of a compile-time constant.
type Options struct {
	Model         *model.Model
	Algorithm     kernel.Algorithm
	CStd          CStd
	CrcType       string // explicit override of the crc_t underlying type; "" means infer
	SymbolPrefix  string // prefix for every generated identifier, e.g. "crc_"
	OutputFile    string // "" means stdout; only its basename is ever used
	IncludeFiles  []string
	VersionStr    string
	WebAddress    string
	Verbose       bool
	now           func() string // overridable for tests; nil means time.Now
}

func (o Options) timestamp() string {
	if o.now != nil {
		return o.now()
	}
	return time.Now().Format(time.ANSIC)
}

// undefinedCrcParameters reports whether any CRC parameter is left for
// the generated code to pick up at runtime via a cfg_t argument.
func (o Options) undefinedCrcParameters() bool {
	return o.Model == nil || !o.Model.Defined()
}

// headerBasename returns the basename of OutputFile, or the stdout
// placeholder pycrc uses when no file was given.
func (o Options) headerBasename() string {
	if o.OutputFile == "" {
		return "pycrc_stdout"
	}
	return filepath.Base(o.OutputFile)
}

func (o Options) log() *logrus.Entry {
	return logrus.WithField("component", "symtable")
}
