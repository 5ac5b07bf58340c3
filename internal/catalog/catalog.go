// Package catalog is a small, test-only table of named CRC models used to
// exercise the compute and codegen paths against known check values. It is
// deliberately not exported outside _test.go files: a catalogue of named
// presets and the argument parsing/CLI surface that would normally front
// one are explicitly out of scope (spec.md's non-goals).
//
// Grounded on _examples/pasztorpisti-go-crc/preset.go's mustNewPreset
// catalogue, re-expressed over model.Model instead of a generic UInt preset
// type, and restricted to the handful of models this repo's tests need.
package catalog

import "github.com/crcgen/crcgen/model"

// Preset names a catalogued CRC model together with its reveng.sourceforge
// check value: crc(m, "123456789") using ASCII input.
type Preset struct {
	Name  string
	Model *model.Model
	Check model.U128
}

func must(width int, poly, xorIn, xorOut uint64, refIn, refOut bool) *model.Model {
	m, err := model.New(width, model.U64(poly), model.U64(xorIn), model.U64(xorOut), refIn, refOut, 8)
	if err != nil {
		panic(err)
	}
	return m
}

// Named returns the catalogued preset for name, or nil if name isn't
// catalogued. Names match pycrc's own catalogue spelling.
func Named(name string) *Preset {
	for _, p := range All {
		if p.Name == name {
			return &p
		}
	}
	return nil
}

// All is the full set of catalogued presets, per spec.md §8's check-value
// table plus the crc-64-jones base model used by the variable-width sweep
// property.
var All = []Preset{
	{
		Name:  "crc-16",
		Model: must(16, 0x8005, 0, 0, true, true),
		Check: model.U64(0xBB3D),
	},
	{
		Name:  "ccitt",
		Model: must(16, 0x1021, 0xFFFF, 0, false, false),
		Check: model.U64(0x29B1),
	},
	{
		Name:  "xmodem",
		Model: must(16, 0x1021, 0, 0, false, false),
		Check: model.U64(0x31C3),
	},
	{
		Name:  "crc-32",
		Model: must(32, 0x04C11DB7, 0xFFFFFFFF, 0xFFFFFFFF, true, true),
		Check: model.U64(0xCBF43926),
	},
	{
		Name:  "crc-32c",
		Model: must(32, 0x1EDC6F41, 0xFFFFFFFF, 0xFFFFFFFF, true, true),
		Check: model.U64(0xE3069283),
	},
	{
		Name:  "crc-64-xz",
		Model: must(64, 0x42F0E1EBA9EA3693, 0xFFFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF, true, true),
		Check: model.U64(0x995DC9BBDF1939FA),
	},
	{
		// Base model for the variable-width sweep (spec.md §8): reduced
		// models for each W in SweepWidths mask this model's
		// poly/xor_in/xor_out to W bits, per SweepModel.
		Name:  "crc-64-jones",
		Model: must(64, 0xAD93D23594C935A9, 0xFFFFFFFFFFFFFFFF, 0, true, true),
		Check: model.U64(0xCAA717168609F281),
	},
}

// SweepWidths is the set of table-index-agnostic widths the variable-width
// sweep property exercises (spec.md §8).
var SweepWidths = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 15, 16, 17, 23, 24, 25, 31, 32, 33, 63, 64}

// SweepModel derives the width-W reduced model used by the variable-width
// sweep property: crc-64-jones with poly/xor_in/xor_out masked to W bits,
// reflect flags and table-index width unchanged.
func SweepModel(width int) *model.Model {
	base := Named("crc-64-jones").Model
	mask := model.Mask(width)
	m, err := model.New(width, base.Poly.And(mask), base.XorIn.And(mask), base.XorOut.And(mask),
		*base.ReflectIn, *base.ReflectOut, base.TableIdxWidthOrDefault())
	if err != nil {
		panic(err)
	}
	return m
}
