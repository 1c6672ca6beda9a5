package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

func TestCRC8ATMCleanCodewordIsNE(t *testing.T) {
	c := NewCRC8ATM(136)
	data := bitblock.New(c.BitK())
	data.SetBit(9, true)
	data.SetBit(100, true)

	cw := c.Encode(data)
	result, decoded, positions := c.Decode(cw)

	require.Equal(t, errtype.NE, result)
	require.Nil(t, positions)
	require.True(t, decoded.Equal(data))
}

func TestCRC8ATMCorrectsSingleDataBit(t *testing.T) {
	c := NewCRC8ATM(136)
	data := bitblock.New(c.BitK())
	data.SetBit(55, true)

	cw := c.Encode(data)
	cw.InvBit(7)

	result, decoded, positions := c.Decode(cw)

	require.Equal(t, errtype.CE, result)
	require.Equal(t, []int{7}, positions)
	require.True(t, decoded.Equal(data))
}

func TestCRC8ATMChecksumOnlyErrorIsCE(t *testing.T) {
	c := NewCRC8ATM(136)
	data := bitblock.New(c.BitK())

	cw := c.Encode(data)
	cw.InvBit(c.BitK())

	result, decoded, _ := c.Decode(cw)

	require.Equal(t, errtype.CE, result)
	require.True(t, decoded.IsZero())
}
