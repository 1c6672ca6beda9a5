// Package faultdomain implements the mutable fault-domain state machine: a
// DRAM rank's geometry, its accumulating operational fault population, an
// optional inherent (pre-existing weak-cell) fault, and retirement
// bookkeeping. It is the only package that implements ecc.Domain and
// ecc.Diagnoser, so pkg/ecc never needs to import this package.
package faultdomain

import (
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/ecc"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
)

// RetirementThreshold is the block-retirement ceiling: a domain whose
// retiredBlkCount reaches this value, and whose most recent decode was not a
// correction, is retired by the tester.
const RetirementThreshold = 25 * 1024

// FaultDomain holds one rank's geometry, fault-rate table, accumulating
// operational fault list, optional inherent fault, and retirement counters.
type FaultDomain struct {
	geometry fault.Geometry
	rateInfo *fault.RateInfo
	hbmMode  bool

	inherentFault *fault.Fault

	operationalFaults []*fault.Fault

	retiredBlkCount int
	retiredPinIDs   map[int]bool
	retiredChipIDs  map[int]bool
}

// New builds an empty fault domain over geom, rating operational fault
// kinds per rateInfo.
func New(geom fault.Geometry, rateInfo *fault.RateInfo) *FaultDomain {
	return &FaultDomain{
		geometry:       geom,
		rateInfo:       rateInfo,
		retiredPinIDs:  make(map[int]bool),
		retiredChipIDs: make(map[int]bool),
	}
}

// Geometry returns the domain's rank organization.
func (fd *FaultDomain) Geometry() fault.Geometry { return fd.geometry }

// GetFaultRate is the domain's operational fault arrival rate, used by
// DomainGroup to weight which domain a new system-level fault lands in.
func (fd *FaultDomain) GetFaultRate() float64 { return fd.rateInfo.TotalRate() }

// RetiredChipCount and RetiredPinCount satisfy ecc.Domain.
func (fd *FaultDomain) RetiredChipCount() int { return len(fd.retiredChipIDs) }
func (fd *FaultDomain) RetiredPinCount() int  { return len(fd.retiredPinIDs) }

// RetiredBlkCount is the cumulative count of blocks the configured ECC has
// had to correct and this domain's retirement policy has marked as spent.
func (fd *FaultDomain) RetiredBlkCount() int { return fd.retiredBlkCount }

// SetHBM records whether this domain is built over an HBM stack. The flag is
// stored and reported by HBM; no other FaultDomain behaviour depends on it.
func (fd *FaultDomain) SetHBM(v bool) { fd.hbmMode = v }

// HBM reports whether this domain was configured as an HBM stack.
func (fd *FaultDomain) HBM() bool { return fd.hbmMode }

// SetInherentFault installs a pre-existing (t=0) weak-cell condition of the
// given kind, sampled once at setup; it persists across scrubs until
// ResetInherentFault is called.
func (fd *FaultDomain) SetInherentFault(kind fault.Kind, rng *rand.Rand) {
	fd.inherentFault = fault.NewInherent(kind, fd.geometry, rng, fd.rateInfo.InherentRate(kind))
}

// ResetInherentFault clears the domain's inherent fault, if any.
func (fd *FaultDomain) ResetInherentFault() { fd.inherentFault = nil }

// SetInitialRetiredBlkCount seeds retiredBlkCount from the configured ECC's
// estimate of how many blocks already exceed the correctable cell-fault
// threshold, given the domain's inherent per-cell fault rate.
func (fd *FaultDomain) SetInitialRetiredBlkCount(e ecc.ECC, rng *rand.Rand) {
	rate := 0.0
	if fd.inherentFault != nil {
		rate = fd.inherentFault.CellFaultRate
	}
	fd.retiredBlkCount = e.GetInitialRetiredBlkCount(fd, rate, rng)
}

// UpdateInherentFault gives the weak-cell population one more chance, each
// time the tester advances past a fault event, to push one additional block
// over the correctable threshold: a per-event Bernoulli trial at the
// inherent kind's configured rate, keeping retiredBlkCount monotonically
// non-decreasing within a run.
func (fd *FaultDomain) UpdateInherentFault(e ecc.ECC, rng *rand.Rand) {
	if fd.inherentFault == nil {
		return
	}
	if rng.Float64() < fd.rateInfo.InherentRate(fd.inherentFault.Kind) {
		fd.retiredBlkCount++
	}
}

// RetirePin and RetireChip permanently map out a pin or chip; later decodes
// see the updated counts through RetiredPinCount/RetiredChipCount and the
// ECC scheme's configList may select a tighter codec as a result.
func (fd *FaultDomain) RetirePin(pinID int)   { fd.retiredPinIDs[pinID] = true }
func (fd *FaultDomain) RetireChip(chipID int) { fd.retiredChipIDs[chipID] = true }

// buildCacheline composes newFault plus every earlier operational fault
// whose address overlaps it (indistinguishable given either fault's
// don't-care bits) into a fresh cacheline-sized block, plus any inherent
// fault. Non-overlapping history is independent of newFault's decode: a
// fault confined to its own address doesn't perturb bits outside it.
func (fd *FaultDomain) buildCacheline(newFault *fault.Fault) *bitblock.Block {
	cl := bitblock.New(fd.geometry.CachelineWidth())
	for _, f := range fd.operationalFaults {
		if f == newFault || f.Overlap(newFault) {
			f.Materialize(cl, fd.geometry)
		}
	}
	if fd.inherentFault != nil {
		fd.inherentFault.Materialize(cl, fd.geometry)
	}
	return cl
}

// GenSystemRandomFaultAndTest samples one new operational fault weighted by
// the domain's fault-rate table, adds it to the accumulating population,
// composes the full cacheline, and decodes it. Every correction bumps
// retiredBlkCount: a block that needed correcting once is treated as spent
// capacity even though the data came back clean.
func (fd *FaultDomain) GenSystemRandomFaultAndTest(e ecc.ECC, rng *rand.Rand, hour float64) (errtype.ErrorType, fault.Kind) {
	kind := fd.rateInfo.Sample(rng)
	f := fault.New(kind, fd.geometry, rng, hour)
	fd.operationalFaults = append(fd.operationalFaults, f)

	cl := fd.buildCacheline(f)
	result := e.Decode(fd, cl)
	if result == errtype.CE {
		fd.retiredBlkCount++
	}
	return result, kind
}

// GenScenarioRandomFaultAndTest materializes up to faultCount simultaneous
// faults of the given kinds (cycling through kindNames as needed) without
// touching the accumulating operational population, optionally rejecting
// chip-overlapping draws, and decodes the result. With chipOverlapCheck set,
// a fault whose 64 draws all land on an already-used chip is left out, so
// fewer than faultCount faults are materialized. Used by scenario-mode
// testing where the fault set is fixed rather than drawn from a rate table.
func (fd *FaultDomain) GenScenarioRandomFaultAndTest(e ecc.ECC, rng *rand.Rand, faultCount int, kindNames []string, chipOverlapCheck bool) errtype.ErrorType {
	faults := make([]*fault.Fault, 0, faultCount)
	for i := 0; i < faultCount; i++ {
		name := kindNames[i%len(kindNames)]
		kind, ok := fault.ParseKind(name)
		if !ok {
			panic("faultdomain: unknown fault kind " + name)
		}
		for attempt := 0; attempt < 64; attempt++ {
			candidate := fault.New(kind, fd.geometry, rng, 0)
			if chipOverlapCheck && overlapsAnyChip(faults, candidate) {
				continue
			}
			faults = append(faults, candidate)
			break
		}
	}

	cl := bitblock.New(fd.geometry.CachelineWidth())
	for _, f := range faults {
		f.Materialize(cl, fd.geometry)
	}
	return e.Decode(fd, cl)
}

func overlapsAnyChip(existing []*fault.Fault, candidate *fault.Fault) bool {
	for _, f := range existing {
		if f.ChipID == candidate.ChipID {
			return true
		}
	}
	return false
}

// Scrub drops every transient operational fault; permanent faults, the
// inherent fault, and retirement counters are untouched.
func (fd *FaultDomain) Scrub() {
	kept := fd.operationalFaults[:0]
	for _, f := range fd.operationalFaults {
		if !f.Transient {
			kept = append(kept, f)
		}
	}
	fd.operationalFaults = kept
}

// Clear drops the entire accumulated operational fault population, run to
// run; retirement counters and the inherent fault persist across Clear.
func (fd *FaultDomain) Clear() {
	fd.operationalFaults = nil
}

// zeroChipBits clears every bit belonging to chipID across every beat and
// pin, mirroring the addressing fault.Fault.Materialize uses.
func (fd *FaultDomain) zeroChipBits(cl *bitblock.Block, chipID int) {
	channelWidth := fd.geometry.ChannelWidth()
	for beat := 0; beat < fd.geometry.BeatHeight; beat++ {
		for pin := 0; pin < fd.geometry.PinsPerDevice; pin++ {
			pos := beat*channelWidth + chipID*fd.geometry.PinsPerDevice + pin
			cl.SetBit(pos, false)
		}
	}
}

// DiagnoseFault implements ecc.Diagnoser: pick a random operational fault
// that is neither a lone single bit nor a transient single word (faults too
// small to justify sacrificing a whole chip to erasure), and zero that
// fault's chip. Reports whether a chip was actually zeroed.
func (fd *FaultDomain) DiagnoseFault(cl *bitblock.Block, rng *rand.Rand) bool {
	var candidates []*fault.Fault
	for _, f := range fd.operationalFaults {
		if f.Kind.IsSingleBit() {
			continue
		}
		if f.Transient && f.Kind.IsSingleWord() {
			continue
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return false
	}
	pick := candidates[rng.Intn(len(candidates))]
	fd.zeroChipBits(cl, pick.ChipID)
	return true
}

// Diagnostics reports the domain's current fault-population health: the
// total operational fault count, how many of those are permanent, and how
// many pairs overlap (share an address modulo their don't-care masks).
// Folds the original getBadCount/overlapTest/permFaults helpers into one
// call.
type Diagnostics struct {
	TotalFaults      int
	PermanentFaults  int
	OverlappingPairs int
}

func (fd *FaultDomain) GetDiagnostics() Diagnostics {
	var d Diagnostics
	d.TotalFaults = len(fd.operationalFaults)
	for i, f := range fd.operationalFaults {
		if !f.Transient {
			d.PermanentFaults++
		}
		for j := i + 1; j < len(fd.operationalFaults); j++ {
			if f.Overlap(fd.operationalFaults[j]) {
				d.OverlappingPairs++
			}
		}
	}
	return d
}

var (
	_ ecc.Domain    = (*FaultDomain)(nil)
	_ ecc.Diagnoser = (*FaultDomain)(nil)
)
