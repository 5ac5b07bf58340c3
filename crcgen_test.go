package crcgen_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crcgen/crcgen"
	"github.com/crcgen/crcgen/internal/catalog"
	"github.com/crcgen/crcgen/kernel"
	"github.com/crcgen/crcgen/model"
	"github.com/crcgen/crcgen/symtable"
)

func TestComputeCRC16AllAlgorithms(t *testing.T) {
	m := catalog.Named("crc-16").Model
	got, err := crcgen.Compute(m, []kernel.Algorithm{
		kernel.BitByBit, kernel.BitByBitFast, kernel.TableDriven, kernel.BitwiseExpression,
	}, []byte("123456789"))
	require.NoError(t, err)
	require.True(t, got.Equal(model.U64(0xBB3D)))
}

func TestComputeXmodemEmptyInput(t *testing.T) {
	m := catalog.Named("xmodem").Model
	got, err := crcgen.Compute(m, []kernel.Algorithm{kernel.BitByBit, kernel.TableDriven}, nil)
	require.NoError(t, err)
	require.True(t, got.IsZero())
}

func TestComputeCRC32HexInput(t *testing.T) {
	data, err := hex.DecodeString("313233343536373839")
	require.NoError(t, err)

	m := catalog.Named("crc-32").Model
	got, err := crcgen.Compute(m, []kernel.Algorithm{kernel.TableDriven}, data)
	require.NoError(t, err)
	require.True(t, got.Equal(model.U64(0xCBF43926)))
}

func TestEmitGenerateHContainsUnderlyingTypeAndSingleGuard(t *testing.T) {
	m := catalog.Named("crc-32").Model
	opt := symtable.Options{
		Model:        m,
		Algorithm:    kernel.TableDriven,
		CStd:         symtable.C99,
		SymbolPrefix: "crc_",
		VersionStr:   "crcgen 1.0",
	}
	out, err := crcgen.Emit(m, opt, crcgen.GenerateH)
	require.NoError(t, err)
	require.Contains(t, out, "typedef uint_fast32_t crc_t;")
	require.Equal(t, 1, strings.Count(out, "#ifndef __"))
}

func TestEmitGenerateTableCRC16StartsWithARCValues(t *testing.T) {
	m := catalog.Named("crc-16").Model
	opt := symtable.Options{
		Model:        m,
		Algorithm:    kernel.TableDriven,
		CStd:         symtable.C99,
		SymbolPrefix: "crc_",
	}
	out, err := crcgen.Emit(m, opt, crcgen.GenerateTable)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(strings.TrimSpace(out), "0x0000, 0xc0c1, 0xc181, 0x0140,"))
}

func TestEmitGenerateCMainConcatenatesTemplates(t *testing.T) {
	m := catalog.Named("crc-32").Model
	opt := symtable.Options{
		Model:        m,
		Algorithm:    kernel.TableDriven,
		CStd:         symtable.C99,
		SymbolPrefix: "crc_",
	}
	out, err := crcgen.Emit(m, opt, crcgen.GenerateCMain)
	require.NoError(t, err)
	require.Contains(t, out, "\n\n")
	require.True(t, len(out) > 0)
}

func TestActionString(t *testing.T) {
	require.Equal(t, "GenerateH", crcgen.GenerateH.String())
	require.Equal(t, "GenerateTable", crcgen.GenerateTable.String())
}
