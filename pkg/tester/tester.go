// Package tester implements the outer Monte Carlo loop: many independent
// runs, each advancing simulated time by exponential inter-arrival draws
// until the rank is retired, suffers a DUE/SDC, or crosses the simulated
// horizon, accumulating per-year histograms across runs.
package tester

import (
	"math"
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/domaingroup"
	"github.com/jihwankim/dram-fault-sim/pkg/ecc"
	"github.com/jihwankim/dram-fault-sim/pkg/emergency"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
	"github.com/jihwankim/dram-fault-sim/pkg/faultdomain"
	"github.com/jihwankim/dram-fault-sim/pkg/scrubber"
)

// MaxYear bounds the per-year histograms: years 0 through MaxYear-1.
const MaxYear = 8

const hoursPerYear = 8760
const runawayLimit = 100000

// SystemResult is TesterSystem.Test's output: per-year probabilities plus
// the per-fault-kind breakdown DomainGroup accumulated along the way.
type SystemResult struct {
	RunCnt            int
	DUECntYear        [MaxYear]int
	SDCCntYear        [MaxYear]int
	RetireCntYear     [MaxYear]int
	DUEProbability    [MaxYear]float64
	SDCProbability    [MaxYear]float64
	RetireProbability [MaxYear]float64
	FaultStats        []domaingroup.FaultStats
	Interrupted       bool
}

// InherentMode selects how TesterSystem.Test arms each run's inherent
// weak-cell population, mirroring the original's faultCount==2 (single)
// versus faultCount==6 (weak-cell/frequent-weak-cell pair) branches.
type InherentMode int

const (
	// ModeSingleInherent arms one untiered inherent population per run.
	ModeSingleInherent InherentMode = iota
	// ModeDualWeakCell splits the inherent kinds into a "weak cell" and a
	// "frequent weak cell" group, each present at its own ratio and
	// independently active or not for a given run at its own probability.
	ModeDualWeakCell
)

// TesterConfig configures a TesterSystem's inherent-fault arming. The zero
// value is ModeSingleInherent, matching the original's faultCount==2 path.
type TesterConfig struct {
	Mode InherentMode
	// RatioFWC is the chance a run draws its inherent kind from the
	// frequent-weak-cell group instead of the weak-cell group; RatioWC is
	// not read by the draw.
	RatioWC, RatioFWC float64
	// ActiveProbWC/ActiveProbFWC are the chance a run's inherent
	// population, once its group is chosen, is actually active.
	ActiveProbWC, ActiveProbFWC float64
}

// TesterSystem drives the full per-year DUE/SDC/Retire Monte Carlo loop.
type TesterSystem struct {
	rng        *rand.Rand
	killSwitch *emergency.Controller
	config     TesterConfig
}

// NewTesterSystem builds a tester over the given PRNG. killSwitch may be
// nil, in which case SIGTERM is never polled.
func NewTesterSystem(rng *rand.Rand, killSwitch *emergency.Controller) *TesterSystem {
	return &TesterSystem{rng: rng, killSwitch: killSwitch}
}

// SetInherentConfig installs the inherent-fault arming mode a Test run
// should use; call before Test.
func (t *TesterSystem) SetInherentConfig(cfg TesterConfig) {
	t.config = cfg
}

// inherentPlan decides, from faultCount, which inherent weak-cell kind (if
// any) to arm for run i: faultCount==2 arms a single untiered kind,
// faultCount==6 dispatches on t.config.Mode (round-robin across all six
// inherent populations for ModeSingleInherent, or the weak-cell/
// frequent-weak-cell draw for ModeDualWeakCell), and any other faultCount
// leaves the domain group's inherent fault unset.
func (t *TesterSystem) inherentPlan(faultCount, runIndex int) (fault.Kind, bool) {
	switch faultCount {
	case 2:
		return fault.INHERENT1, true
	case 6:
		if t.config.Mode == ModeDualWeakCell {
			return t.pickDualWeakCell(runIndex)
		}
		kinds := fault.InherentKinds()
		return kinds[runIndex%len(kinds)], true
	default:
		return 0, false
	}
}

// pickDualWeakCell splits the inherent kinds into a weak-cell half and a
// frequent-weak-cell half, draws which group this run belongs to by
// RatioFWC, then checks that group's activation probability: an inactive
// draw leaves the run with no inherent fault armed at all, matching the
// original's per-population activation-probability gate.
func (t *TesterSystem) pickDualWeakCell(runIndex int) (fault.Kind, bool) {
	kinds := fault.InherentKinds()
	half := len(kinds) / 2
	wcKinds, fwcKinds := kinds[:half], kinds[half:]

	group, activeProb := wcKinds, t.config.ActiveProbWC
	if t.rng.Float64() < t.config.RatioFWC {
		group, activeProb = fwcKinds, t.config.ActiveProbFWC
	}
	if t.rng.Float64() >= activeProb {
		return 0, false
	}
	return group[runIndex%len(group)], true
}

// Test runs runCnt independent iterations over dg using e to decode and
// scrub to periodically scrub, returning the aggregated per-year result.
func (t *TesterSystem) Test(dg *domaingroup.DomainGroup, e ecc.ECC, scrub scrubber.Scrubber, runCnt, faultCount int) SystemResult {
	var result SystemResult

	for i := 0; i < runCnt; i++ {
		if t.killSwitch != nil && t.killSwitch.IsStopped() {
			result.Interrupted = true
			break
		}
		result.RunCnt++
		scrub.Reset()

		if kind, ok := t.inherentPlan(faultCount, i); ok {
			dg.ResetInherentFault()
			dg.SetInherentFault(kind, t.rng)
			dg.SetInitialRetiredBlkCount(e, t.rng)
		}

		t.runOneIteration(dg, e, scrub, &result)

		dg.Clear()
		e.Clear()
	}

	for y := 0; y < MaxYear; y++ {
		if result.RunCnt == 0 {
			continue
		}
		result.DUEProbability[y] = float64(result.DUECntYear[y]) / float64(result.RunCnt)
		result.SDCProbability[y] = float64(result.SDCCntYear[y]) / float64(result.RunCnt)
		result.RetireProbability[y] = float64(result.RetireCntYear[y]) / float64(result.RunCnt)
	}
	result.FaultStats = dg.PrintFaultStatsAll()
	return result
}

func (t *TesterSystem) runOneIteration(dg *domaingroup.DomainGroup, e ecc.ECC, scrub scrubber.Scrubber, result *SystemResult) {
	var hours float64
	errorCounter := 0

	for {
		rate := dg.GetFaultRate()
		if rate <= 0 {
			return
		}
		u := t.rng.Float64()
		delta := -math.Log(1-u) / rate
		hours += delta

		if hours > float64(MaxYear-1)*hoursPerYear {
			return
		}

		errorCounter++
		if errorCounter > runawayLimit {
			return
		}

		fd := dg.PickRandomFD(t.rng)
		scrub.Scrub(dg, hours)
		outcome, kind := fd.GenSystemRandomFaultAndTest(e, t.rng, hours)
		dg.UpdateInherentFault(e, t.rng)

		year := yearOf(hours)

		if fd.RetiredBlkCount() >= faultdomain.RetirementThreshold && outcome != errtype.CE {
			for y := year + 1; y < MaxYear; y++ {
				result.RetireCntYear[y]++
			}
			return
		}

		switch outcome {
		case errtype.DUE:
			for y := year + 1; y < MaxYear; y++ {
				result.DUECntYear[y]++
				dg.RecordOutcome(y, kind, outcome)
			}
			return
		case errtype.SDC:
			for y := year + 1; y < MaxYear; y++ {
				result.SDCCntYear[y]++
				dg.RecordOutcome(y, kind, outcome)
			}
			return
		}
		// NE or CE: keep advancing time within this iteration.
	}
}

func yearOf(hours float64) int {
	y := int(hours / hoursPerYear)
	if y >= MaxYear {
		y = MaxYear - 1
	}
	return y
}
