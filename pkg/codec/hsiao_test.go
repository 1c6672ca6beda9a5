package codec

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

func TestHsiaoRoundTripNoError(t *testing.T) {
	h := NewHsiaoSECDED(64)
	data := bitblock.New(64)
	data.SetBit(5, true)
	data.SetBit(40, true)

	cw := h.Encode(data)
	result, decoded, positions := h.Decode(cw)

	require.Equal(t, errtype.NE, result)
	require.Nil(t, positions)
	require.True(t, decoded.Equal(data))
}

func TestHsiaoCorrectsSingleBit(t *testing.T) {
	h := NewHsiaoSECDED(64)
	data := bitblock.New(64)
	data.SetBit(12, true)

	cw := h.Encode(data)
	cw.InvBit(30)

	result, decoded, positions := h.Decode(cw)

	require.Equal(t, errtype.CE, result)
	require.Len(t, positions, 1)
	require.True(t, decoded.Equal(data))
}

func TestHsiaoDetectsDoubleBitAsDUE(t *testing.T) {
	h := NewHsiaoSECDED(64)
	data := bitblock.New(64)

	cw := h.Encode(data)
	cw.InvBit(0)
	cw.InvBit(1)

	result, _, _ := h.Decode(cw)
	require.Equal(t, errtype.DUE, result)
}

func TestHsiaoColumnsAreDistinctAndOddWeight(t *testing.T) {
	h := NewHsiaoSECDED(32)
	seen := make(map[uint64]bool)
	for _, col := range h.dataColumns {
		require.False(t, seen[col], "duplicate column %d", col)
		require.Equal(t, 1, bits.OnesCount64(col)%2, "column %d has even weight", col)
		seen[col] = true
	}
}
