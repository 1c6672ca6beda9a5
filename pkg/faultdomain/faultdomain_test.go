package faultdomain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/codec"
	"github.com/jihwankim/dram-fault-sim/pkg/ecc"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
)

func testGeom() fault.Geometry {
	return fault.Geometry{RanksPerDomain: 1, DevicesPerRank: 18, PinsPerDevice: 4, BeatHeight: 1}
}

func allSBitRates() *fault.RateInfo {
	return fault.NewRateInfo(map[fault.Kind]float64{fault.SBIT: 1.0})
}

func TestGenSystemRandomFaultAndTestAccumulates(t *testing.T) {
	geom := testGeom()
	fd := New(geom, allSBitRates())

	h := codec.NewHsiaoSECDED(geom.CachelineWidth())
	plain := ecc.NewPlain(bitblock.LayoutLinear, 1, ecc.ConfigEntry{MaxDeviceRetirement: 1 << 30, MaxPinRetirement: 1 << 30, Codec: h})

	rng := rand.New(rand.NewSource(7))
	outcome, kind := fd.GenSystemRandomFaultAndTest(plain, rng, 1.0)

	require.Equal(t, errtype.CE, outcome)
	require.Equal(t, fault.SBIT, kind)
	require.Equal(t, 1, fd.RetiredBlkCount())
}

func TestScrubDropsOnlyTransientFaults(t *testing.T) {
	geom := testGeom()
	fd := New(geom, allSBitRates())

	transient := fault.New(fault.SBIT, geom, rand.New(rand.NewSource(1)), 0)
	permanent := fault.New(fault.SBANK, geom, rand.New(rand.NewSource(2)), 0)
	fd.operationalFaults = append(fd.operationalFaults, transient, permanent)

	fd.Scrub()

	require.Len(t, fd.operationalFaults, 1)
	require.False(t, fd.operationalFaults[0].Transient)
}

func TestDiagnoseFaultZeroesAChip(t *testing.T) {
	geom := testGeom()
	fd := New(geom, allSBitRates())

	rng := rand.New(rand.NewSource(3))
	f := fault.New(fault.SBANK, geom, rng, 0)
	fd.operationalFaults = append(fd.operationalFaults, f)

	cl := bitblock.New(geom.CachelineWidth())
	f.Materialize(cl, geom)
	require.False(t, cl.IsZero())

	ok := fd.DiagnoseFault(cl, rng)
	require.True(t, ok)

	// Every bit belonging to f.ChipID must now be clear.
	channelWidth := geom.ChannelWidth()
	for beat := 0; beat < geom.BeatHeight; beat++ {
		for pin := 0; pin < geom.PinsPerDevice; pin++ {
			pos := beat*channelWidth + f.ChipID*geom.PinsPerDevice + pin
			require.False(t, cl.GetBit(pos))
		}
	}
}

func TestRetirePinAndChipUpdateCounts(t *testing.T) {
	geom := testGeom()
	fd := New(geom, allSBitRates())

	require.Equal(t, 0, fd.RetiredChipCount())
	fd.RetireChip(2)
	fd.RetireChip(5)
	require.Equal(t, 2, fd.RetiredChipCount())

	fd.RetirePin(1)
	require.Equal(t, 1, fd.RetiredPinCount())
}
