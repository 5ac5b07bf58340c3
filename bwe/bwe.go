// Package bwe formats a CRC table-driven lookup as a closed-form C boolean
// expression (the "bitwise-expression" algorithm of spec.md §4.1/§4.3),
// using package qm to minimise each output bit of the lookup table.
package bwe

import (
	"fmt"
	"strings"

	"github.com/crcgen/crcgen/kernel"
	"github.com/crcgen/crcgen/model"
	"github.com/crcgen/crcgen/qm"
)

// minterm is one Quine-McCluskey term contributing to output bit Bit. Term
// is exactly TableIdxWidth characters long, over the alphabet
// '0','1','-','^','~'.
type minterm struct {
	bit  int
	term string
}

// Expression is the minimised boolean formula for one CRC model's
// table-driven lookup, one minterm set per output bit.
type Expression struct {
	width         int
	tableIdxWidth int
	terms         []minterm
}

// Build derives the bitwise-expression formula for m's table-driven
// lookup table (kernel.GenTable), by running the XOR/XNOR-extended
// Quine-McCluskey minimiser once per output bit. Grounded on
// crc_symtable.py's __get_crc_bwe_bitmask_minterms.
func Build(m *model.Model) (*Expression, error) {
	m.MustFull()
	width := *m.Width
	t := m.TableIdxWidthOrDefault()
	tableWidth := 1 << uint(t)
	table := kernel.GenTable(m)

	maxBit := width
	if maxBit < 8 {
		maxBit = 8
	}

	minimiser := qm.QM{UseXOR: true}
	var terms []minterm
	for bit := 0; bit < maxBit; bit++ {
		var ones []int
		for i := 0; i < tableWidth; i++ {
			if table[i].Bit(bit) != 0 {
				ones = append(ones, i)
			}
		}
		for _, term := range minimiser.Simplify(ones, nil, t) {
			terms = append(terms, minterm{bit: bit, term: term})
		}
	}
	return &Expression{width: width, tableIdxWidth: t, terms: terms}, nil
}

// FormatC renders the §4.3 C sub-expression: one shift/AND/XOR group per
// minterm, OR'd together, matching crc_symtable.py's
// __format_bwe_expression byte for byte. Returns "0" if the table is
// identically zero.
func (e *Expression) FormatC() string {
	nibbles := (e.width + 3) / 4
	var orExps []string
	for _, mt := range e.terms {
		shifted := strings.Repeat(".", mt.bit) + mt.term
		suffix := e.width - mt.bit - 1
		if suffix > 0 {
			shifted += strings.Repeat(".", suffix)
		}

		var xors, ands []string
		for bitPos := 0; bitPos < len(shifted); bitPos++ {
			op := shifted[bitPos]
			shift := bitPos - e.tableIdxWidth + 1

			bitsFmt := func(prefix string) string {
				switch {
				case shift > 0:
					return fmt.Sprintf("(%sbits << %d)", prefix, shift)
				case shift < 0:
					return fmt.Sprintf("(%sbits >> %d)", prefix, -shift)
				default:
					return prefix + "bits"
				}
			}

			switch op {
			case '^':
				xors = append(xors, bitsFmt(""))
			case '~':
				xors = append(xors, bitsFmt("~"))
			case '0':
				ands = append(ands, bitsFmt("~"))
			case '1':
				ands = append(ands, bitsFmt(""))
			}
		}
		if len(xors) > 0 {
			ands = append(ands, strings.Join(xors, " ^ "))
		}
		if len(ands) > 0 {
			bitmask := model.U64(1).Shl(uint(mt.bit))
			orExps = append(orExps, fmt.Sprintf("((%s) & %s)", strings.Join(ands, " & "), bitmask.HexWidth(nibbles)))
		}
	}
	if len(orExps) == 0 {
		return "0"
	}
	return strings.Join(orExps, " |\n            ")
}

// Eval computes the table-driven lookup value at table index idx directly
// from the minimised formula, without consulting a literal table. This is
// what lets kernel.TableDrivenWithLookup run the bitwise-expression
// algorithm numerically for the cross-check harness and the
// table-driven/bitwise-expression equivalence property.
func (e *Expression) Eval(idx int) model.U128 {
	var result model.U128
	for _, mt := range e.terms {
		if termMatches(mt.term, idx, e.tableIdxWidth) {
			result = result.Or(model.U64(1).Shl(uint(mt.bit)))
		}
	}
	return result
}

func termMatches(term string, idx, width int) bool {
	target := make([]byte, width)
	for i := 0; i < width; i++ {
		bitPos := width - 1 - i
		if idx&(1<<uint(bitPos)) != 0 {
			target[i] = '1'
		} else {
			target[i] = '0'
		}
	}
	want := string(target)
	for _, p := range qm.Permutations(term) {
		if p == want {
			return true
		}
	}
	return false
}
