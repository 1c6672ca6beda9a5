package fault

import (
	"math/rand"
	"testing"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/stretchr/testify/require"
)

var testGeom = Geometry{RanksPerDomain: 1, DevicesPerRank: 18, PinsPerDevice: 4, BeatHeight: 8}

func TestOverlapSymmetryAndReflexivity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	kinds := OperationalKinds()
	for i := 0; i < 200; i++ {
		k1 := kinds[rng.Intn(len(kinds))]
		k2 := kinds[rng.Intn(len(kinds))]
		f1 := New(k1, testGeom, rng, 0)
		f2 := New(k2, testGeom, rng, 0)

		require.Equal(t, f1.Overlap(f2), f2.Overlap(f1))
		require.True(t, f1.Overlap(f1))
		require.True(t, f2.Overlap(f2))
	}
}

func TestSingleBitMaterializeFlipsExactlyOneBit(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	f := New(SBIT, testGeom, rng, 0)
	cl := bitblock.New(testGeom.CachelineWidth())
	f.Materialize(cl, testGeom)
	require.Equal(t, 1, cl.PopCount())
}

func TestMRankMaterializeFlipsEveryBit(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	f := New(MRANK, testGeom, rng, 0)
	cl := bitblock.New(testGeom.CachelineWidth())
	f.Materialize(cl, testGeom)
	require.Equal(t, testGeom.CachelineWidth(), cl.PopCount())
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, name := range Names {
		k, ok := ParseKind(name)
		require.True(t, ok)
		require.Equal(t, name, k.String())
	}
	_, ok := ParseKind("NOT_A_KIND")
	require.False(t, ok)
}

func TestRateInfoSampleWeighting(t *testing.T) {
	r := NewRateInfo(map[Kind]float64{SBIT: 0.9, SWORD: 0.1})
	rng := rand.New(rand.NewSource(4))
	counts := map[Kind]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[r.Sample(rng)]++
	}
	ratio := float64(counts[SBIT]) / float64(n)
	require.InDelta(t, 0.9, ratio, 0.03)
}
