package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crcgen/crcgen/model"
)

func TestNewMasksPolyAndXorValues(t *testing.T) {
	// A poly wider than width must come back masked to width bits.
	m, err := model.New(8, model.U64(0x107), model.U64(0x1ff), model.U64(0x1ff), false, false, 8)
	require.NoError(t, err)
	require.True(t, m.Poly.Equal(model.U64(0x07)))
	require.True(t, m.XorIn.Equal(model.U64(0xff)))
	require.True(t, m.XorOut.Equal(model.U64(0xff)))
	require.True(t, m.Defined())
}

func TestNewRejectsBadWidth(t *testing.T) {
	_, err := model.New(0, model.U64(0), model.U64(0), model.U64(0), false, false, 8)
	require.Error(t, err)

	_, err = model.New(129, model.U64(0), model.U64(0), model.U64(0), false, false, 8)
	require.Error(t, err)
}

func TestNewRejectsBadTableIdxWidth(t *testing.T) {
	_, err := model.New(8, model.U64(0), model.U64(0), model.U64(0), false, false, 3)
	require.Error(t, err)
}

func TestPartialUndefinedFieldsStayNil(t *testing.T) {
	width := 16
	m, err := model.Partial(&width, nil, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	require.False(t, m.Defined())
	require.Nil(t, m.Poly)
	require.Equal(t, 8, m.TableIdxWidthOrDefault())
	require.Equal(t, 256, m.TableWidthOrDefault())
}

func TestPartialMasksDefinedValuesToWidth(t *testing.T) {
	width := 8
	poly := model.U64(0x1ff)
	m, err := model.Partial(&width, &poly, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	require.True(t, m.Poly.Equal(model.U64(0xff)))
}

func TestMSBMaskAndMask(t *testing.T) {
	m, err := model.New(8, model.U64(0x07), model.U64(0), model.U64(0), false, false, 8)
	require.NoError(t, err)
	require.True(t, m.MSBMask().Equal(model.U64(0x80)))
	require.True(t, m.Mask().Equal(model.U64(0xff)))
}

func TestShift(t *testing.T) {
	m, err := model.New(4, model.U64(0x3), model.U64(0), model.U64(0), false, false, 4)
	require.NoError(t, err)
	shift, ok := m.Shift()
	require.True(t, ok)
	require.Equal(t, 4, shift)

	wide, err := model.New(16, model.U64(0x1021), model.U64(0), model.U64(0), false, false, 8)
	require.NoError(t, err)
	shift, ok = wide.Shift()
	require.True(t, ok)
	require.Equal(t, 0, shift)

	undefined := &model.Model{}
	_, ok = undefined.Shift()
	require.False(t, ok)
}

func TestMustFullPanicsOnUndefined(t *testing.T) {
	require.Panics(t, func() {
		(&model.Model{}).MustFull()
	})
}
