package bwe_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crcgen/crcgen/bwe"
	"github.com/crcgen/crcgen/kernel"
	"github.com/crcgen/crcgen/model"
)

func crc16(t *testing.T) *model.Model {
	t.Helper()
	m, err := model.New(16, model.U64(0x8005), model.U64(0), model.U64(0), true, true, 8)
	require.NoError(t, err)
	return m
}

func crc32(t *testing.T) *model.Model {
	t.Helper()
	m, err := model.New(32, model.U64(0x04C11DB7), model.U64(0xFFFFFFFF), model.U64(0xFFFFFFFF), true, true, 8)
	require.NoError(t, err)
	return m
}

// TestBuildEvalMatchesGenTable is the "table-driven/bitwise-expression
// equivalence" property from spec.md §8: the minimised formula, evaluated
// over every table index, must reproduce kernel.GenTable exactly.
func TestBuildEvalMatchesGenTable(t *testing.T) {
	for _, m := range []*model.Model{crc16(t), crc32(t)} {
		expr, err := bwe.Build(m)
		require.NoError(t, err)

		table := kernel.GenTable(m)
		for i, want := range table {
			got := expr.Eval(i)
			require.Truef(t, got.Equal(want), "index %d: got %s want %s", i, got, want)
		}
	}
}

func TestBuildEvalAgreesWithTableDrivenOverMessage(t *testing.T) {
	m := crc32(t)
	expr, err := bwe.Build(m)
	require.NoError(t, err)

	data := []byte("123456789")
	want := kernel.TableDriven(m, data)
	got := kernel.TableDrivenWithLookup(m, data, expr.Eval)
	require.True(t, got.Equal(want))
	require.True(t, got.Equal(model.U64(0xCBF43926)))
}

func TestFormatCNonEmptyForNonzeroTable(t *testing.T) {
	m := crc16(t)
	expr, err := bwe.Build(m)
	require.NoError(t, err)
	src := expr.FormatC()
	require.NotEqual(t, "0", src)
	require.Contains(t, src, "bits")
}

func TestFormatCZeroTableIsLiteralZero(t *testing.T) {
	// width=1, poly=0 with no reflection: every table entry is zero, so
	// there is nothing to OR together.
	m, err := model.New(1, model.U64(0), model.U64(0), model.U64(0), false, false, 1)
	require.NoError(t, err)
	expr, err := bwe.Build(m)
	require.NoError(t, err)
	require.Equal(t, "0", expr.FormatC())
}
