package macro_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crcgen/crcgen/macro"
)

type mapSymbols map[string]string

func (m mapSymbols) GetTerminal(id string) (string, error) {
	v, ok := m[id]
	if !ok {
		return "", macro.ErrSymbolLookup
	}
	return v, nil
}

func TestParsePlainGibberish(t *testing.T) {
	p := macro.New(mapSymbols{})
	got, err := p.Parse("hello, world")
	require.NoError(t, err)
	require.Equal(t, "hello, world", got)
}

func TestParseIdentifierExpansion(t *testing.T) {
	p := macro.New(mapSymbols{"name": "CRC-32"})
	got, err := p.Parse("algorithm: $name done")
	require.NoError(t, err)
	require.Equal(t, "algorithm: CRC-32 done", got)
}

func TestParseIdentifierExpansionIsRescanned(t *testing.T) {
	// Expansion values are pushed back onto the input for rescanning, so
	// one identifier can expand to text containing another identifier.
	p := macro.New(mapSymbols{"a": "$b", "b": "final"})
	got, err := p.Parse("$a")
	require.NoError(t, err)
	require.Equal(t, "final", got)
}

func TestParseUnknownIdentifier(t *testing.T) {
	p := macro.New(mapSymbols{})
	_, err := p.Parse("$missing")
	require.Error(t, err)
	require.ErrorIs(t, err, macro.ErrSymbolLookup)
}

func TestParseIfTrueBranch(t *testing.T) {
	p := macro.New(mapSymbols{"width": "32"})
	got, err := p.Parse(`$if ($width == 32) {:wide:} $else {:narrow:}`)
	require.NoError(t, err)
	require.Equal(t, "wide", got)
}

func TestParseIfFalseBranchUsesElse(t *testing.T) {
	p := macro.New(mapSymbols{"width": "16"})
	got, err := p.Parse(`$if ($width == 32) {:wide:} $else {:narrow:}`)
	require.NoError(t, err)
	require.Equal(t, "narrow", got)
}

func TestParseElifChain(t *testing.T) {
	p := macro.New(mapSymbols{"width": "16"})
	got, err := p.Parse(`$if ($width == 8) {:a:} $elif ($width == 16) {:b:} $else {:c:}`)
	require.NoError(t, err)
	require.Equal(t, "b", got)
}

func TestParseAndOr(t *testing.T) {
	p := macro.New(mapSymbols{"a": "True", "b": "False"})
	got, err := p.Parse(`$if ($a == True and $b == False) {:yes:} $else {:no:}`)
	require.NoError(t, err)
	require.Equal(t, "yes", got)

	got, err = p.Parse(`$if ($a == False or $b == False) {:yes:} $else {:no:}`)
	require.NoError(t, err)
	require.Equal(t, "yes", got)
}

func TestParseNestedDataBlocks(t *testing.T) {
	p := macro.New(mapSymbols{"x": "1"})
	got, err := p.Parse(`$if ($x == 1) {:outer {:inner:} end:}`)
	require.NoError(t, err)
	require.Equal(t, "outer inner end", got)
}

func TestParseNumericComparisonIgnoresLeadingZerosLikeIntegers(t *testing.T) {
	p := macro.New(mapSymbols{"w": "008"})
	got, err := p.Parse(`$if ($w == 8) {:eq:} $else {:neq:}`)
	require.NoError(t, err)
	require.Equal(t, "eq", got)
}

func TestParseMisalignedClosingBlockIsError(t *testing.T) {
	p := macro.New(mapSymbols{})
	_, err := p.Parse("text :} more")
	require.Error(t, err)
}

func TestParseMissingOpenParenIsError(t *testing.T) {
	p := macro.New(mapSymbols{})
	_, err := p.Parse("$if x) {:a:}")
	require.Error(t, err)
}
