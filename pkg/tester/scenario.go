package tester

import (
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/domaingroup"
	"github.com/jihwankim/dram-fault-sim/pkg/ecc"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

// ScenarioResult is TesterScenario.Test's output: an absolute probability
// per outcome across runCnt single-step trials of a fixed fault set.
type ScenarioResult struct {
	RunCnt      int
	Counts      map[errtype.ErrorType]int
	Probability map[errtype.ErrorType]float64
	// Histogram is the ECC scheme's accumulated correction-distance
	// histogram (nil if the scheme doesn't implement ecc.Histogrammer).
	Histogram map[int]int
}

// TesterScenario runs a single deterministic fault-count decode per
// iteration, rather than advancing through simulated time: each trial
// injects faultCount simultaneous faults of the given kinds (fewer when
// chip-overlap rejection gives up on a draw; see
// FaultDomain.GenScenarioRandomFaultAndTest) and records the resulting
// classification.
type TesterScenario struct {
	rng *rand.Rand
}

// NewTesterScenario builds a scenario tester over the given PRNG.
func NewTesterScenario(rng *rand.Rand) *TesterScenario {
	return &TesterScenario{rng: rng}
}

// Test runs runCnt independent scenario trials against the first domain in
// dg (scenario mode targets one domain's geometry, not a weighted pick
// across a population).
func (t *TesterScenario) Test(dg *domaingroup.DomainGroup, e ecc.ECC, runCnt, faultCount int, faultKindNames []string, chipOverlapCheck bool) ScenarioResult {
	result := ScenarioResult{Counts: make(map[errtype.ErrorType]int), Probability: make(map[errtype.ErrorType]float64)}
	domains := dg.Domains()
	if len(domains) == 0 {
		panic("tester: scenario run requires at least one fault domain")
	}
	fd := domains[0]

	for i := 0; i < runCnt; i++ {
		outcome := fd.GenScenarioRandomFaultAndTest(e, t.rng, faultCount, faultKindNames, chipOverlapCheck)
		result.Counts[outcome]++
		result.RunCnt++
	}

	for outcome, cnt := range result.Counts {
		result.Probability[outcome] = float64(cnt) / float64(result.RunCnt)
	}
	if h, ok := e.(ecc.Histogrammer); ok {
		result.Histogram = h.Histogram()
	}
	return result
}
