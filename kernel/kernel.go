// Package kernel implements the four reference CRC algorithms described in
// spec.md §4.1: bit-by-bit, bit-by-bit-fast, table-driven, and the
// register-level half of bitwise-expression (the boolean-formula half
// lives in package bwe, which depends on this package for GenTable -- see
// DESIGN.md for why the full 4-algorithm cross-check harness therefore
// lives one level up, in the root driver).
package kernel

import (
	"github.com/pkg/errors"

	"github.com/crcgen/crcgen/model"
)

// Algorithm tags one of the four reference CRC algorithms.
type Algorithm int

const (
	BitByBit Algorithm = iota
	BitByBitFast
	TableDriven
	BitwiseExpression
)

func (a Algorithm) String() string {
	switch a {
	case BitByBit:
		return "bit-by-bit"
	case BitByBitFast:
		return "bit-by-bit-fast"
	case TableDriven:
		return "table-driven"
	case BitwiseExpression:
		return "bitwise-expression"
	default:
		return "unknown"
	}
}

// ErrInconsistentAlgorithms is returned by the cross-check harness when two
// requested algorithms disagree on the result for the same model and input.
// It is a hard bug indicator, not a user error (spec.md §7).
type ErrInconsistentAlgorithms struct {
	A, B       Algorithm
	ResultA, ResultB model.U128
}

func (e *ErrInconsistentAlgorithms) Error() string {
	return errors.Errorf("crc: algorithms %s (%s) and %s (%s) disagree", e.A, e.ResultA, e.B, e.ResultB).Error()
}

// ErrUnsupportedByKernel is returned by CRC when asked to run
// BitwiseExpression: that algorithm's table lookup is a minimised boolean
// formula built by package bwe (which itself depends on kernel.GenTable),
// so running it lives in the root driver to avoid a kernel<->bwe import
// cycle. See DESIGN.md.
var ErrUnsupportedByKernel = errors.New("kernel: BitwiseExpression is evaluated by the root driver, not package kernel")

// Reflect reverses the order of the low n bits of v.
func Reflect(v model.U128, n int) model.U128 { return model.Reflect(v, n) }

// crcShift is pycrc's "a shift count that is used when width < 8" (see
// symtable's cfg_shift documentation): the table-driven and
// bitwise-expression algorithms take their lookup indices from the top of
// a byte-wide register field, so
// a register narrower than a byte is carried in the top bits of an
// 8-bit-wide working field instead of its own low bits, with poly, the
// MSB mask, and the register mask all shifted up to match. bit-by-bit and
// bit-by-bit-fast never use this; they operate at the native width.
func crcShift(width int) uint {
	if width < 8 {
		return uint(8 - width)
	}
	return 0
}

// GenTable populates the 2^T-entry accelerator table for table-driven
// (and, indirectly, bitwise-expression) mode. It uses Width, Poly,
// ReflectIn and TableIdxWidth; XorIn/XorOut/ReflectOut are irrelevant to
// the table and may be left undefined.
func GenTable(m *model.Model) []model.U128 {
	if m.Width == nil || m.Poly == nil || m.ReflectIn == nil {
		panic("kernel: GenTable requires Width, Poly and ReflectIn")
	}
	width := *m.Width
	t := m.TableIdxWidthOrDefault()
	rin := *m.ReflectIn
	poly := *m.Poly
	msbMask := m.MSBMask()
	mask := m.Mask()

	shift := crcShift(width)
	workPoly := poly.Shl(shift)
	workMsbMask := msbMask.Shl(shift)
	workMask := mask.Shl(shift)

	shiftAmt := width - t + int(shift)
	if shiftAmt < 0 {
		shiftAmt = 0
	}

	n := 1 << uint(t)
	table := make([]model.U128, n)
	for i := 0; i < n; i++ {
		v := model.U64(uint64(i))
		if rin {
			v = model.Reflect(v, t)
		}
		v = v.Shl(uint(shiftAmt))
		for j := 0; j < t; j++ {
			if !v.And(workMsbMask).IsZero() {
				v = v.Shl(1).Xor(workPoly)
			} else {
				v = v.Shl(1)
			}
		}
		v = v.And(workMask)
		if rin {
			v = model.Reflect(v.Shr(shift), width).Shl(shift)
		}
		table[i] = v
	}
	return table
}

// NonDirectInit converts XorIn, a direct-init value, into the register
// value the non-direct bit-by-bit algorithm must start from. XorIn is a
// shortcut equivalent to folding W leading zero-bits through the
// fast/table-driven update; this undoes that shortcut bit by bit in
// reverse. Grounded on the generated crc_init_function's "bit-by-bit"
// branch (symtable/templates.go), the one place this transform was
// previously expressed (as literal C, not as code the kernel itself ran).
func NonDirectInit(m *model.Model) model.U128 {
	width := *m.Width
	poly := *m.Poly
	msbMask := m.MSBMask()
	mask := m.Mask()

	reg := *m.XorIn
	for i := 0; i < width; i++ {
		if !reg.And(model.U64(1)).IsZero() {
			reg = reg.Xor(poly).Shr(1).Or(msbMask)
		} else {
			reg = reg.Shr(1)
		}
	}
	return reg.And(mask)
}

// BitByBit implements the non-direct, augmented-message bit-by-bit
// algorithm of spec.md §4.1.
func BitByBit(m *model.Model, data []byte) model.U128 {
	m.MustFull()
	width := *m.Width
	poly := *m.Poly
	rin, rout := *m.ReflectIn, *m.ReflectOut
	msbMask := m.MSBMask()
	mask := m.Mask()

	reg := NonDirectInit(m)
	step := func(bit uint64) {
		msbSet := !reg.And(msbMask).IsZero()
		reg = reg.Shl(1).Or(model.U64(bit))
		if msbSet {
			reg = reg.Xor(poly)
		}
	}
	for _, b := range data {
		c := b
		if rin {
			c = reflect8(c)
		}
		for i := 7; i >= 0; i-- {
			step(uint64((c >> uint(i)) & 1))
		}
	}
	// The augmented-message tail: width more zero-bits folded in after
	// the real data.
	for i := 0; i < width; i++ {
		step(0)
	}
	if rout {
		reg = model.Reflect(reg, width)
	}
	reg = reg.Xor(*m.XorOut).And(mask)
	return reg
}

// BitByBitFast implements the direct-init bit-by-bit-fast algorithm of
// spec.md §4.1.
func BitByBitFast(m *model.Model, data []byte) model.U128 {
	m.MustFull()
	width := *m.Width
	poly := *m.Poly
	rin, rout := *m.ReflectIn, *m.ReflectOut
	msbMask := m.MSBMask()
	mask := m.Mask()

	reg := *m.XorIn
	for _, b := range data {
		c := b
		if rin {
			c = reflect8(c)
		}
		for i := 7; i >= 0; i-- {
			bit := !reg.And(msbMask).IsZero()
			inBit := (c>>uint(i))&1 != 0
			bit = bit != inBit // xor-in the input bit
			reg = reg.Shl(1)
			if bit {
				reg = reg.Xor(poly)
			}
		}
		reg = reg.And(mask)
	}
	if rout {
		reg = model.Reflect(reg, width)
	}
	reg = reg.Xor(*m.XorOut).And(mask)
	return reg
}

// TableDriven implements the table-driven algorithm of spec.md §4.1.
func TableDriven(m *model.Model, data []byte) model.U128 {
	m.MustFull()
	table := GenTable(m)
	return tableDrivenCore(m, data, func(idx int) model.U128 { return table[idx] })
}

// tableDrivenCore is shared between TableDriven and bwe's Eval-driven
// message CRC: the per-byte nibble-consuming register update is identical,
// only the lookup function differs (literal table vs. minimised formula).
//
// For width<8 the register is carried in the shifted representation
// GenTable's table entries use (see crcShift): it's unshifted back to the
// native width only once, after the byte loop, before xor_out/reflect_out
// -- ported from __get_table_core_algorithm_{non,}reflected and
// crc_final_value's "table-driven"/"bitwise-expression" branches.
func tableDrivenCore(m *model.Model, data []byte, lookup func(idx int) model.U128) model.U128 {
	width := *m.Width
	t := m.TableIdxWidthOrDefault()
	rin, rout := *m.ReflectIn, *m.ReflectOut
	mask := m.Mask()
	tblMask := (1 << uint(t)) - 1
	nibbles := 8 / t

	shift := crcShift(width)
	workMask := mask.Shl(shift)
	shr := width - t + int(shift)

	init := m.XorIn.And(mask)
	if rin {
		init = model.Reflect(init, width)
	}
	reg := init.Shl(shift)
	for _, b := range data {
		if !rin {
			for k := 0; k < nibbles; k++ {
				shamt := 8 - (k+1)*t
				idx := int(reg.Shr(uint(shr)).Xor(model.U64(uint64(b)>>uint(shamt))).Lo) & tblMask
				reg = lookup(idx).Xor(reg.Shl(uint(t))).And(workMask)
			}
		} else {
			for k := 0; k < nibbles; k++ {
				shamt := k * t
				idx := int(reg.Shr(shift).Xor(model.U64(uint64(b)>>uint(shamt))).Lo) & tblMask
				reg = lookup(idx).Xor(reg.Shr(uint(t))).And(workMask)
			}
		}
	}
	if shift != 0 {
		reg = reg.Shr(shift)
	}
	if rin != rout {
		reg = model.Reflect(reg, width)
	}
	reg = reg.Xor(*m.XorOut).And(mask)
	return reg
}

// TableDrivenWithLookup runs the table-driven register update using a
// caller-supplied lookup instead of a literal GenTable table. The root
// driver (crcgen.Compute) passes bwe's Expression.Eval here to compute the
// full-message CRC of the minimised boolean formula, for the
// "table-driven/bitwise-expression equivalence" property.
func TableDrivenWithLookup(m *model.Model, data []byte, lookup func(idx int) model.U128) model.U128 {
	m.MustFull()
	return tableDrivenCore(m, data, lookup)
}

// CRC runs every algorithm in algos against data and returns their common
// result, or ErrInconsistentAlgorithms if they disagree. BitwiseExpression
// is not supported here -- see ErrUnsupportedByKernel.
func CRC(m *model.Model, algos []Algorithm, data []byte) (model.U128, error) {
	if len(algos) == 0 {
		return model.U128{}, errors.New("kernel: CRC requires at least one algorithm")
	}
	var (
		result    model.U128
		resultAlg Algorithm
		have      bool
	)
	for _, a := range algos {
		var v model.U128
		switch a {
		case BitByBit:
			v = BitByBit(m, data)
		case BitByBitFast:
			v = BitByBitFast(m, data)
		case TableDriven:
			v = TableDriven(m, data)
		case BitwiseExpression:
			return model.U128{}, ErrUnsupportedByKernel
		default:
			return model.U128{}, errors.Errorf("kernel: unknown algorithm %d", a)
		}
		if !have {
			result, resultAlg, have = v, a, true
			continue
		}
		if !v.Equal(result) {
			return model.U128{}, &ErrInconsistentAlgorithms{A: resultAlg, ResultA: result, B: a, ResultB: v}
		}
	}
	return result, nil
}

var reflectedBytes [256]byte

func init() {
	for i := 0; i < 256; i++ {
		reflectedBytes[i] = byte(model.Reflect(model.U64(uint64(i)), 8).Lo)
	}
}

func reflect8(b byte) byte { return reflectedBytes[b] }
