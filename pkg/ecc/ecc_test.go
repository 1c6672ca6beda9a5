package ecc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/codec"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

type fakeDomain struct {
	chips, pins int
}

func (f fakeDomain) RetiredChipCount() int { return f.chips }
func (f fakeDomain) RetiredPinCount() int  { return f.pins }

func TestPlainSingleBitIsCE(t *testing.T) {
	h := codec.NewHsiaoSECDED(64)
	p := NewPlain(bitblock.LayoutLinear, 1, ConfigEntry{MaxDeviceRetirement: 1 << 30, MaxPinRetirement: 1 << 30, Codec: h})

	fd := fakeDomain{}
	cl := bitblock.New(h.BitN())
	cl.InvBit(5)

	result := p.Decode(fd, cl)
	require.Equal(t, errtype.CE, result)
}

func TestPlainNoMatchingConfigIsSDCWhenNonZero(t *testing.T) {
	h := codec.NewHsiaoSECDED(64)
	p := NewPlain(bitblock.LayoutLinear, 1, ConfigEntry{MaxDeviceRetirement: 0, MaxPinRetirement: 0, Codec: h})

	fd := fakeDomain{chips: 5}
	cl := bitblock.New(h.BitN())
	cl.InvBit(1)

	require.Equal(t, errtype.SDC, p.Decode(fd, cl))

	clZero := bitblock.New(h.BitN())
	require.Equal(t, errtype.NE, p.Decode(fd, clZero))
}

func TestXEDCleanCachelineIsNE(t *testing.T) {
	onDie := codec.NewCRC8ATM(16)
	rng := rand.New(rand.NewSource(1))
	x := NewXED(bitblock.LayoutOnChipX8, 4, onDie, XEDPlain, false, true, rng)

	cl := bitblock.New(4 * onDie.BitN())
	fd := fakeDomain{}
	require.Equal(t, errtype.NE, x.Decode(fd, cl))
}

func TestXEDSingleChipErasureCorrects(t *testing.T) {
	onDie := codec.NewCRC8ATM(16)
	rng := rand.New(rand.NewSource(1))
	x := NewXED(bitblock.LayoutOnChipX8, 4, onDie, XEDPlain, false, true, rng)

	cl := bitblock.New(4 * onDie.BitN())
	// Flip enough bits within one chip's slab that the on-die CRC can only
	// detect, not correct, forcing erasure correction.
	base := 0 * onDie.BitN()
	cl.InvBit(base)
	cl.InvBit(base + 1)
	cl.InvBit(base + 2)

	fd := fakeDomain{}
	result := x.Decode(fd, cl)
	require.Contains(t, []errtype.ErrorType{errtype.CE, errtype.SDC}, result)
}

type fakeECC struct {
	result    errtype.ErrorType
	decodeCnt int
}

func (f *fakeECC) Name() string { return "fake" }
func (f *fakeECC) Clear()       {}
func (f *fakeECC) GetInitialRetiredBlkCount(Domain, float64, *rand.Rand) int { return 0 }
func (f *fakeECC) Decode(Domain, *bitblock.Block) errtype.ErrorType {
	f.decodeCnt++
	return f.result
}

func TestVECCFallsBackToSecondaryOnDUE(t *testing.T) {
	primary := &fakeECC{result: errtype.DUE}
	secondary := &fakeECC{result: errtype.CE}

	v := NewVECC(primary, secondary)
	fd := fakeDomain{}
	cl := bitblock.New(8)

	result := v.Decode(fd, cl)

	require.Equal(t, errtype.CE, result)
	require.Equal(t, 1, primary.decodeCnt)
	require.Equal(t, 1, secondary.decodeCnt)
}

func TestVECCSkipsSecondaryWhenPrimarySucceeds(t *testing.T) {
	primary := &fakeECC{result: errtype.CE}
	secondary := &fakeECC{result: errtype.DUE}

	v := NewVECC(primary, secondary)
	fd := fakeDomain{}
	cl := bitblock.New(8)

	result := v.Decode(fd, cl)

	require.Equal(t, errtype.CE, result)
	require.Equal(t, 0, secondary.decodeCnt)
}
