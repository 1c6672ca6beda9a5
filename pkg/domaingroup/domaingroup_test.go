package domaingroup

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
)

func testGeom() fault.Geometry {
	return fault.Geometry{RanksPerDomain: 1, DevicesPerRank: 4, PinsPerDevice: 4, BeatHeight: 1}
}

func TestGetFaultRateSumsChildren(t *testing.T) {
	dg := New(3, testGeom(), func() *fault.RateInfo {
		return fault.NewRateInfo(map[fault.Kind]float64{fault.SBIT: 2.0})
	}, MaxYear)

	require.InDelta(t, 6.0, dg.GetFaultRate(), 1e-9)
}

const MaxYear = 8

func TestPickRandomFDWeightsByRate(t *testing.T) {
	rates := []float64{1.0, 1000.0}
	i := 0
	dg := New(2, testGeom(), func() *fault.RateInfo {
		rate := rates[i]
		i++
		return fault.NewRateInfo(map[fault.Kind]float64{fault.SBIT: rate})
	}, MaxYear)

	rng := rand.New(rand.NewSource(42))
	heavy := dg.Domains()[1]

	hits := 0
	for n := 0; n < 500; n++ {
		if dg.PickRandomFD(rng) == heavy {
			hits++
		}
	}
	require.Greater(t, hits, 450)
}

func TestRecordOutcomeAndFaultStats(t *testing.T) {
	dg := New(1, testGeom(), func() *fault.RateInfo {
		return fault.NewRateInfo(map[fault.Kind]float64{fault.SBIT: 1.0})
	}, MaxYear)

	dg.RecordOutcome(0, fault.SBIT, errtype.DUE)
	dg.RecordOutcome(0, fault.SCOL, errtype.SDC)

	stats := dg.PrintFaultStats(0)
	require.InDelta(t, 50.0, stats.DUEPercent[fault.SBIT], 1e-9)
	require.InDelta(t, 50.0, stats.SDCPercent[fault.SCOL], 1e-9)
}

func TestClearAndScrubForwardToChildren(t *testing.T) {
	dg := New(2, testGeom(), func() *fault.RateInfo {
		return fault.NewRateInfo(map[fault.Kind]float64{fault.SBIT: 1.0})
	}, MaxYear)

	// Nothing should panic forwarding to an empty fault population.
	dg.Scrub()
	dg.Clear()
}
