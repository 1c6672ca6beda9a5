package scrubber

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/dram-fault-sim/pkg/domaingroup"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
)

func testGroup() *domaingroup.DomainGroup {
	return domaingroup.New(1, fault.Geometry{RanksPerDomain: 1, DevicesPerRank: 4, PinsPerDevice: 4, BeatHeight: 1},
		func() *fault.RateInfo { return fault.NewRateInfo(map[fault.Kind]float64{fault.SBIT: 1.0}) }, 8)
}

func TestNoScrubberNeverFires(t *testing.T) {
	var s NoScrubber
	s.Scrub(testGroup(), 1e9) // must not panic
}

func TestPeriodicFiresOnSectionCrossing(t *testing.T) {
	p := NewPeriodic(100)
	dg := testGroup()

	p.Scrub(dg, 50) // section 0, no prior section -> fires
	require.Equal(t, 0, p.lastScrubSection)

	p.Scrub(dg, 99) // still section 0 -> no refire
	require.Equal(t, 0, p.lastScrubSection)

	p.Scrub(dg, 150) // section 1 -> fires
	require.Equal(t, 1, p.lastScrubSection)
}

func TestPeriodicZeroPeriodIsNoOp(t *testing.T) {
	p := NewPeriodic(0)
	dg := testGroup()
	p.Scrub(dg, 1000)
	require.Equal(t, -1, p.lastScrubSection)
}
