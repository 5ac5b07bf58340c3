package symtable_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crcgen/crcgen/kernel"
	"github.com/crcgen/crcgen/macro"
	"github.com/crcgen/crcgen/model"
	"github.com/crcgen/crcgen/symtable"
)

func crc16(t *testing.T) *model.Model {
	t.Helper()
	m, err := model.New(16, model.U64(0x8005), model.U64(0), model.U64(0), true, true, 8)
	require.NoError(t, err)
	return m
}

func fullOptions(t *testing.T) symtable.Options {
	return symtable.Options{
		Model:        crc16(t),
		Algorithm:    kernel.TableDriven,
		CStd:         symtable.C99,
		SymbolPrefix: "crc_",
		VersionStr:   "1.0",
		WebAddress:   "https://example.invalid",
	}
}

func TestGetTerminalStaticCrcParameters(t *testing.T) {
	s := symtable.New(fullOptions(t))

	width, err := s.GetTerminal("crc_width")
	require.NoError(t, err)
	require.Equal(t, "16", width)

	poly, err := s.GetTerminal("crc_poly")
	require.NoError(t, err)
	require.Equal(t, "0x8005", poly)

	refIn, err := s.GetTerminal("crc_reflect_in")
	require.NoError(t, err)
	require.Equal(t, "True", refIn)
}

func TestGetTerminalEmptyIdentifierIsEmptyString(t *testing.T) {
	s := symtable.New(fullOptions(t))
	got, err := s.GetTerminal("")
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestGetTerminalUnknownIdentifierWrapsSymbolLookup(t *testing.T) {
	s := symtable.New(fullOptions(t))
	_, err := s.GetTerminal("not_a_real_symbol")
	require.Error(t, err)
	require.True(t, errors.Is(err, macro.ErrSymbolLookup))
}

func TestGetTerminalMemoizesDynamicSymbols(t *testing.T) {
	s := symtable.New(fullOptions(t))
	first, err := s.GetTerminal("crc_algorithm")
	require.NoError(t, err)
	second, err := s.GetTerminal("crc_algorithm")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, "table-driven", first)
}

func TestGetTerminalPartialModelMasksFromWidthAlone(t *testing.T) {
	width := 16
	partial, err := model.Partial(&width, nil, nil, nil, nil, nil, nil)
	require.NoError(t, err)

	s := symtable.New(symtable.Options{Model: partial, Algorithm: kernel.TableDriven})

	// Mask only needs Width, so it's computable even though poly etc.
	// are still undefined.
	mask, err := s.GetTerminal("crc_mask")
	require.NoError(t, err)
	require.Equal(t, "0xffff", mask)

	poly, err := s.GetTerminal("crc_poly")
	require.NoError(t, err)
	require.Equal(t, "Undefined", poly)

	undefined, err := s.GetTerminal("undefined_parameters")
	require.NoError(t, err)
	require.Equal(t, "True", undefined)
}

func TestGetTerminalFullyUndefinedModelMaskIsUndefined(t *testing.T) {
	partial, err := model.Partial(nil, nil, nil, nil, nil, nil, nil)
	require.NoError(t, err)

	s := symtable.New(symtable.Options{Model: partial, Algorithm: kernel.TableDriven})

	mask, err := s.GetTerminal("crc_mask")
	require.NoError(t, err)
	require.Equal(t, "Undefined", mask)
}

func TestCrcShiftZeroForWideTableDrivenModel(t *testing.T) {
	s := symtable.New(fullOptions(t))
	shift, err := s.GetTerminal("crc_shift")
	require.NoError(t, err)
	require.Equal(t, "0", shift)
}

func TestCrcShiftCompensatesNarrowTableDrivenModel(t *testing.T) {
	m, err := model.New(4, model.U64(0x3), model.U64(0), model.U64(0), false, false, 4)
	require.NoError(t, err)
	s := symtable.New(symtable.Options{Model: m, Algorithm: kernel.TableDriven})

	shift, err := s.GetTerminal("crc_shift")
	require.NoError(t, err)
	require.Equal(t, "4", shift)
}

func TestCrcShiftUndefinedWhenWidthMissingForTableDriven(t *testing.T) {
	poly := model.U64(0x8005)
	partial, err := model.Partial(nil, &poly, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	s := symtable.New(symtable.Options{Model: partial, Algorithm: kernel.TableDriven})

	shift, err := s.GetTerminal("crc_shift")
	require.NoError(t, err)
	require.Equal(t, "Undefined", shift)
}

func TestCrcShiftZeroForBitByBitRegardlessOfWidth(t *testing.T) {
	m, err := model.New(4, model.U64(0x3), model.U64(0), model.U64(0), false, false, 4)
	require.NoError(t, err)
	s := symtable.New(symtable.Options{Model: m, Algorithm: kernel.BitByBit})

	shift, err := s.GetTerminal("crc_shift")
	require.NoError(t, err)
	require.Equal(t, "0", shift)
}

func TestBitwiseExpressionRendersCExpressionForFullModel(t *testing.T) {
	opt := fullOptions(t)
	opt.Algorithm = kernel.BitwiseExpression
	s := symtable.New(opt)

	expr, err := s.GetTerminal("crc_bitwise_expression")
	require.NoError(t, err)
	require.NotEmpty(t, expr)
	require.NotEqual(t, "0", expr)
}

func TestBitwiseExpressionErrorsOnPartialModel(t *testing.T) {
	width := 16
	partial, err := model.Partial(&width, nil, nil, nil, nil, nil, nil)
	require.NoError(t, err)

	s := symtable.New(symtable.Options{Model: partial, Algorithm: kernel.BitwiseExpression})
	_, err = s.GetTerminal("crc_bitwise_expression")
	require.Error(t, err)
}

func TestRootTemplatesAreNonEmpty(t *testing.T) {
	s := symtable.New(fullOptions(t))
	for _, name := range []string{"h_template", "c_template", "main_template", "getopt_template"} {
		got, err := s.GetTerminal(name)
		require.NoErrorf(t, err, "symbol %s", name)
		require.NotEmptyf(t, got, "symbol %s", name)
	}
}

func TestHeaderProtectionUppercasesFilename(t *testing.T) {
	opt := fullOptions(t)
	opt.OutputFile = "my-crc.h"
	s := symtable.New(opt)

	got, err := s.GetTerminal("header_protection")
	require.NoError(t, err)
	require.Contains(t, got, "MY_CRC_H")
}

func TestCrcTableInitZeroWhenNotTableDriven(t *testing.T) {
	opt := fullOptions(t)
	opt.Algorithm = kernel.BitByBit
	s := symtable.New(opt)

	got, err := s.GetTerminal("crc_table_init")
	require.NoError(t, err)
	require.Equal(t, "0", got)
}
