package codec

import (
	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

// crc8Update advances an 8-bit CRC-8-ATM (x^8+x^2+x+1) shift register by one
// input bit, MSB-first.
func crc8Update(state uint8, bit bool) uint8 {
	var in uint8
	if bit {
		in = 1
	}
	feedback := (state>>7)&1 ^ in
	next := state << 1
	if feedback == 1 {
		next ^= 0x07 // taps at x^2, x^1, x^0
	}
	return next
}

// CRC8ATM is the on-die detector: a systematic CRC-8-ATM code with a
// precomputed syndrome-to-bit-position correction table, built once at
// construction by simulating every single data-bit error against a clean
// all-zero codeword.
type CRC8ATM struct {
	bitK            int // data bits
	correctionTable map[uint8]int
}

// NewCRC8ATM builds a CRC-8-ATM codec protecting a bitN-bit codeword
// (bitN-8 data bits plus an 8-bit check field).
func NewCRC8ATM(bitN int) *CRC8ATM {
	c := &CRC8ATM{bitK: bitN - 8, correctionTable: make(map[uint8]int, bitN-8)}
	zeroCheck := bitblock.New(8)
	for i := 0; i < c.bitK; i++ {
		probe := bitblock.New(c.bitK)
		probe.SetBit(i, true)
		syn := c.syndrome(probe, zeroCheck)
		c.correctionTable[syn] = i
	}
	return c
}

func (c *CRC8ATM) Name() string { return "CRC-8-ATM" }
func (c *CRC8ATM) BitN() int    { return c.bitK + 8 }
func (c *CRC8ATM) BitK() int    { return c.bitK }

// syndrome processes data then check through the shift register starting
// from a zero state. By the CRC's GF(2) linearity, this depends only on the
// difference between the received word and the nearest valid codeword, not
// on which valid codeword was actually sent.
func (c *CRC8ATM) syndrome(data, check *bitblock.Block) uint8 {
	var state uint8
	for i := 0; i < c.bitK; i++ {
		state = crc8Update(state, data.GetBit(i))
	}
	for j := 0; j < 8; j++ {
		state = crc8Update(state, check.GetBit(j))
	}
	return state
}

// Encode computes the check field by running data through the register.
// crc8Update feeds each input bit into the feedback tap, so the register
// already holds data*x^8 mod g after the last data bit: the remainder of
// the "append r zeros, divide" systematic CRC construction.
func (c *CRC8ATM) Encode(data *bitblock.Block) *bitblock.Block {
	var state uint8
	for i := 0; i < c.bitK; i++ {
		state = crc8Update(state, data.GetBit(i))
	}
	out := bitblock.New(c.bitK + 8)
	for i := 0; i < c.bitK; i++ {
		out.SetBit(i, data.GetBit(i))
	}
	for j := 0; j < 8; j++ {
		out.SetBit(c.bitK+j, state>>(7-uint(j))&1 == 1)
	}
	return out
}

// Decode classifies the received word: a checksum-only discrepancy against
// clean data is trivially correctable, a zero syndrome is clean, a syndrome
// present in the correction table is a locatable single data-bit error, and
// anything else is an uncorrectable detection.
func (c *CRC8ATM) Decode(received *bitblock.Block) (errtype.ErrorType, *bitblock.Block, []int) {
	data := extractData(received, c.bitK)
	check := bitblock.New(8)
	for j := 0; j < 8; j++ {
		check.SetBit(j, received.GetBit(c.bitK+j))
	}

	if data.IsZero() && !check.IsZero() {
		return errtype.CE, data, nil
	}

	syn := c.syndrome(data, check)
	if syn == 0 {
		return errtype.NE, data, nil
	}

	if pos, ok := c.correctionTable[syn]; ok {
		corrected := data.Clone()
		corrected.InvBit(pos)
		return errtype.CE, corrected, []int{pos}
	}

	return errtype.DUE, nil, nil
}
