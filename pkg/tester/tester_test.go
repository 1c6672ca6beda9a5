package tester

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/codec"
	"github.com/jihwankim/dram-fault-sim/pkg/domaingroup"
	"github.com/jihwankim/dram-fault-sim/pkg/ecc"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
	"github.com/jihwankim/dram-fault-sim/pkg/scrubber"
)

func smallGeom() fault.Geometry {
	return fault.Geometry{RanksPerDomain: 1, DevicesPerRank: 4, PinsPerDevice: 4, BeatHeight: 1}
}

func TestTesterSystemRunsToHorizonWithoutPanicking(t *testing.T) {
	dg := domaingroup.New(2, smallGeom(), func() *fault.RateInfo {
		return fault.NewRateInfo(map[fault.Kind]float64{fault.SBIT: 0.0005})
	}, MaxYear)

	h := codec.NewHsiaoSECDED(smallGeom().CachelineWidth())
	plain := ecc.NewPlain(bitblock.LayoutLinear, 1, ecc.ConfigEntry{MaxDeviceRetirement: 1 << 30, MaxPinRetirement: 1 << 30, Codec: h})

	rng := rand.New(rand.NewSource(11))
	system := NewTesterSystem(rng, nil)

	result := system.Test(dg, plain, scrubber.NoScrubber{}, 20, 0)

	require.Equal(t, 20, result.RunCnt)
	for y := 0; y < MaxYear; y++ {
		require.GreaterOrEqual(t, result.DUEProbability[y], 0.0)
		require.LessOrEqual(t, result.DUEProbability[y], 1.0)
	}
}

func TestInherentPlanDualWeakCellRespectsInactiveDraw(t *testing.T) {
	system := NewTesterSystem(rand.New(rand.NewSource(3)), nil)
	system.SetInherentConfig(TesterConfig{
		Mode:          ModeDualWeakCell,
		RatioWC:       1.0, // always draw the weak-cell group
		ActiveProbWC:  0,   // never active
		RatioFWC:      0,
		ActiveProbFWC: 0,
	})

	_, ok := system.inherentPlan(6, 0)
	require.False(t, ok, "zero activation probability must never arm an inherent fault")
}

func TestInherentPlanDualWeakCellArmsWhenAlwaysActive(t *testing.T) {
	system := NewTesterSystem(rand.New(rand.NewSource(3)), nil)
	system.SetInherentConfig(TesterConfig{
		Mode:          ModeDualWeakCell,
		RatioWC:       1.0,
		ActiveProbWC:  1.0,
		RatioFWC:      0,
		ActiveProbFWC: 0,
	})

	kind, ok := system.inherentPlan(6, 0)
	require.True(t, ok)
	require.True(t, kind.IsInherent())
}

func TestTesterScenarioReportsAbsoluteProbabilities(t *testing.T) {
	dg := domaingroup.New(1, smallGeom(), func() *fault.RateInfo {
		return fault.NewRateInfo(map[fault.Kind]float64{fault.SBIT: 1.0})
	}, MaxYear)

	h := codec.NewHsiaoSECDED(smallGeom().CachelineWidth())
	plain := ecc.NewPlain(bitblock.LayoutLinear, 1, ecc.ConfigEntry{MaxDeviceRetirement: 1 << 30, MaxPinRetirement: 1 << 30, Codec: h})

	rng := rand.New(rand.NewSource(5))
	scenario := NewTesterScenario(rng)

	result := scenario.Test(dg, plain, 50, 1, []string{"SBIT"}, false)

	require.Equal(t, 50, result.RunCnt)
	var total float64
	for _, p := range result.Probability {
		total += p
	}
	require.InDelta(t, 1.0, total, 1e-9)
}
