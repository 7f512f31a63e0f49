package register

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/circsim/pkg/circerr"
	"github.com/oisee/circsim/pkg/circuit"
	"github.com/oisee/circsim/pkg/components"
	"github.com/oisee/circsim/pkg/level"
)

func newBoundRegister(t *testing.T, width int) *Register {
	t.Helper()
	store := circuit.New()
	ids := make([]components.WireID, width)
	for i := 0; i < width; i++ {
		ids[i] = components.WireID(i + 1)
		require.NoError(t, store.InsertWire(components.NewWire(ids[i], "bit", level.PullNone, nil, nil)))
	}
	reg, err := New("R", ids)
	require.NoError(t, err)
	reg.Bind(store)
	return reg
}

func TestNewRegisterWidthBounds(t *testing.T) {
	_, err := New("empty", nil)
	require.ErrorIs(t, err, circerr.OutOfRange)

	wide := make([]components.WireID, 65)
	_, err = New("wide", wide)
	require.ErrorIs(t, err, circerr.OutOfRange)
}

func TestUnboundOperationsFail(t *testing.T) {
	reg, err := New("R", []components.WireID{1, 2})
	require.NoError(t, err)

	_, err = reg.ReadUnsigned()
	require.ErrorIs(t, err, circerr.UninitializedComponent)

	err = reg.WriteUnsigned(1)
	require.ErrorIs(t, err, circerr.UninitializedComponent)
}

func TestUnsignedRoundTrip(t *testing.T) {
	reg := newBoundRegister(t, 8)
	for v := uint64(0); v < 256; v++ {
		require.NoError(t, reg.WriteUnsigned(v))
		got, err := reg.ReadUnsigned()
		require.NoError(t, err)
		require.Equal(t, v, got, "value %d", v)
	}
}

func TestUnsignedWriteOutOfRange(t *testing.T) {
	reg := newBoundRegister(t, 4)
	err := reg.WriteUnsigned(16)
	require.ErrorIs(t, err, circerr.OutOfRange)
}

func TestSignedRoundTrip(t *testing.T) {
	reg := newBoundRegister(t, 8)
	for v := int64(-128); v < 128; v++ {
		require.NoError(t, reg.WriteSigned(v))
		got, err := reg.ReadSigned()
		require.NoError(t, err)
		require.Equal(t, v, got, "value %d", v)
	}
}

func TestSignedWriteOutOfRange(t *testing.T) {
	reg := newBoundRegister(t, 4)
	require.ErrorIs(t, reg.WriteSigned(8), circerr.OutOfRange)
	require.ErrorIs(t, reg.WriteSigned(-9), circerr.OutOfRange)
	require.NoError(t, reg.WriteSigned(7))
	require.NoError(t, reg.WriteSigned(-8))
}

func TestUnbindRejectsSubsequentOperations(t *testing.T) {
	reg := newBoundRegister(t, 4)
	require.NoError(t, reg.WriteUnsigned(5))
	reg.Unbind()
	require.False(t, reg.Bound())
	_, err := reg.ReadUnsigned()
	require.True(t, errors.Is(err, circerr.UninitializedComponent))
}

func TestWireIDsIsACopy(t *testing.T) {
	reg := newBoundRegister(t, 2)
	ids := reg.WireIDs()
	ids[0] = 999
	require.NotEqual(t, ids[0], reg.WireIDs()[0])
}
