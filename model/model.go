package model

import "github.com/pkg/errors"

// Model is the immutable CRC-parameter record. Every field, Width
// included, may be left undefined (nil) -- the codegen path needs that to emit code
// that still carries a runtime crc_cfg_t for the parameters the caller
// didn't fix at generation time. The compute path (kernel.CRC) requires
// every field it touches to be defined; it is the caller's job to build a
// fully-defined Model for that path (see New). MSBMask and Mask panic
// when Width is undefined.
type Model struct {
	Width         *int
	Poly          *U128
	XorIn         *U128
	XorOut        *U128
	ReflectIn     *bool
	ReflectOut    *bool
	TableIdxWidth *int // one of 1, 2, 4, 8
}

func intp(v int) *int   { return &v }
func boolp(v bool) *bool { return &v }
func u128p(v U128) *U128 { return &v }

// New builds a fully-defined Model for the compute path. width must be in
// [1,128] and tableIdxWidth must be one of {1,2,4,8}. Poly, xorIn and
// xorOut are reduced modulo the model's mask, per the invariant in §3.
func New(width int, poly, xorIn, xorOut U128, reflectIn, reflectOut bool, tableIdxWidth int) (*Model, error) {
	if width < 1 || width > 128 {
		return nil, errors.Errorf("model: width %d out of range [1,128]", width)
	}
	switch tableIdxWidth {
	case 1, 2, 4, 8:
	default:
		return nil, errors.Errorf("model: table index width %d must be one of 1,2,4,8", tableIdxWidth)
	}
	m := &Model{
		Width:         intp(width),
		ReflectIn:     boolp(reflectIn),
		ReflectOut:    boolp(reflectOut),
		TableIdxWidth: intp(tableIdxWidth),
	}
	mask := Mask(width)
	poly = poly.And(mask)
	xorIn = xorIn.And(mask)
	xorOut = xorOut.And(mask)
	m.Poly = u128p(poly)
	m.XorIn = u128p(xorIn)
	m.XorOut = u128p(xorOut)
	return m, nil
}

// Partial builds a Model with possibly-undefined fields, for the codegen
// path. Any of poly, xorIn, xorOut, reflectIn, reflectOut, tableIdxWidth
// may be nil; width, if non-nil, must be in [1,128].
func Partial(width *int, poly, xorIn, xorOut *U128, reflectIn, reflectOut *bool, tableIdxWidth *int) (*Model, error) {
	if width != nil && (*width < 1 || *width > 128) {
		return nil, errors.Errorf("model: width %d out of range [1,128]", *width)
	}
	if tableIdxWidth != nil {
		switch *tableIdxWidth {
		case 1, 2, 4, 8:
		default:
			return nil, errors.Errorf("model: table index width %d must be one of 1,2,4,8", *tableIdxWidth)
		}
	}
	m := &Model{Width: width, ReflectIn: reflectIn, ReflectOut: reflectOut, TableIdxWidth: tableIdxWidth}
	if width != nil {
		mask := Mask(*width)
		if poly != nil {
			v := poly.And(mask)
			poly = &v
		}
		if xorIn != nil {
			v := xorIn.And(mask)
			xorIn = &v
		}
		if xorOut != nil {
			v := xorOut.And(mask)
			xorOut = &v
		}
	}
	m.Poly, m.XorIn, m.XorOut = poly, xorIn, xorOut
	return m, nil
}

// Defined reports whether every CRC parameter (width, poly, xor in/out,
// reflect in/out) is defined. TableIdxWidth defaults to 8 and doesn't
// count against definedness (it always has a usable value, see
// TableIdxWidthOrDefault).
func (m *Model) Defined() bool {
	return m.Width != nil && m.Poly != nil && m.XorIn != nil && m.XorOut != nil &&
		m.ReflectIn != nil && m.ReflectOut != nil
}

// MustFull panics if the model is not fully defined; used by kernel
// functions that assume a validated model, per §4.1/§7 ("the core assumes
// M is validated").
func (m *Model) MustFull() {
	if !m.Defined() {
		panic("model: operation requires a fully-defined Model")
	}
}

// MSBMask returns 1 << (W-1).
func (m *Model) MSBMask() U128 {
	if m.Width == nil {
		panic("model: MSBMask requires Width")
	}
	return U64(1).Shl(uint(*m.Width - 1))
}

// Mask returns the W-bit mask (msb_mask-1 | msb_mask).
func (m *Model) Mask() U128 {
	if m.Width == nil {
		panic("model: Mask requires Width")
	}
	return Mask(*m.Width)
}

// TableIdxWidthOrDefault returns T, defaulting to 8 when undefined (pycrc
// always has a usable table-index width for internal CRC calculation,
// only reverting to 8 when generating code for an algorithm other than
// table-driven/bitwise-expression).
func (m *Model) TableIdxWidthOrDefault() int {
	if m.TableIdxWidth == nil {
		return 8
	}
	return *m.TableIdxWidth
}

// TableWidthOrDefault returns 1 << T, with T from TableIdxWidthOrDefault.
func (m *Model) TableWidthOrDefault() int {
	return 1 << uint(m.TableIdxWidthOrDefault())
}

// Shift returns the table-driven shift compensation (8-W for W<8, else 0).
// It is Undefined (ok=false) when Width is undefined.
func (m *Model) Shift() (shift int, ok bool) {
	if m.Width == nil {
		return 0, false
	}
	if *m.Width < 8 {
		return 8 - *m.Width, true
	}
	return 0, true
}
