package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

func TestReedSolomonRoundTripNoError(t *testing.T) {
	rs := NewReedSolomon(8, 15, 4)
	data := bitblock.New(rs.BitK())
	data.SetBit(3, true)
	data.SetBit(40, true)

	cw := rs.Encode(data)
	result, decoded, positions := rs.Decode(cw)

	require.Equal(t, errtype.NE, result)
	require.Nil(t, positions)
	require.True(t, decoded.Equal(data))
}

func TestReedSolomonCorrectsUpToT(t *testing.T) {
	rs := NewReedSolomon(8, 15, 4)
	data := bitblock.New(rs.BitK())
	data.SetBit(1, true)
	data.SetBit(17, true)

	cw := rs.Encode(data)
	corrupted := cw.Clone()
	corrupted.InvBit(0)
	corrupted.InvBit(8 * rs.m)

	result, decoded, positions := rs.Decode(corrupted)

	require.Equal(t, errtype.CE, result)
	require.Len(t, positions, 2)
	require.True(t, decoded.Equal(data))
}

func TestReedSolomonBeyondTIsDUE(t *testing.T) {
	rs := NewReedSolomon(8, 15, 4)
	data := bitblock.New(rs.BitK())

	cw := rs.Encode(data)
	corrupted := cw.Clone()
	for s := 0; s < rs.t+1; s++ {
		corrupted.InvBit(s * rs.m)
	}

	result, _, _ := rs.Decode(corrupted)
	require.Equal(t, errtype.DUE, result)
}
