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
	"github.com/jihwankim/dram-fault-sim/pkg/fuzz"
	"github.com/jihwankim/dram-fault-sim/pkg/scrubber"
)

// TestSystemRunNeverPanicsAcrossRandomGeometries runs a short sweep over many
// randomly sampled geometries and fault-rate tables, checking the property
// spec.md §8 calls for: every year's DUE/SDC/Retire probability stays within
// [0, 1] and the run never panics, regardless of how the cacheline is shaped.
func TestSystemRunNeverPanicsAcrossRandomGeometries(t *testing.T) {
	sampler := fuzz.NewSampler(99)

	for trial := 0; trial < 20; trial++ {
		geom := sampler.SampleGeometry()
		kinds := fault.OperationalKinds()

		dg := domaingroup.New(1, geom, func() *fault.RateInfo {
			return sampler.SampleRateInfo(kinds)
		}, MaxYear)

		h := codec.NewHsiaoSECDED(geom.CachelineWidth())
		plain := ecc.NewPlain(bitblock.LayoutLinear, 1, ecc.ConfigEntry{
			MaxDeviceRetirement: 1 << 30,
			MaxPinRetirement:    1 << 30,
			Codec:               h,
		})

		rng := rand.New(rand.NewSource(sampler.SampleSeed()))
		system := NewTesterSystem(rng, nil)

		result := system.Test(dg, plain, scrubber.NoScrubber{}, 5, 0)

		require.Equal(t, 5, result.RunCnt)
		for y := 0; y < MaxYear; y++ {
			require.GreaterOrEqual(t, result.DUEProbability[y], 0.0)
			require.LessOrEqual(t, result.DUEProbability[y], 1.0)
			require.GreaterOrEqual(t, result.SDCProbability[y], 0.0)
			require.LessOrEqual(t, result.SDCProbability[y], 1.0)
			require.GreaterOrEqual(t, result.RetireProbability[y], 0.0)
			require.LessOrEqual(t, result.RetireProbability[y], 1.0)
		}
	}
}
