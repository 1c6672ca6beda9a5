// Package domaingroup holds a collection of identically-shaped fault
// domains and fans lifecycle calls out across all of them, weighting
// per-domain fault selection by each domain's current fault rate.
package domaingroup

import (
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/ecc"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
	"github.com/jihwankim/dram-fault-sim/pkg/faultdomain"
)

// DomainGroup owns every fault domain of one rank configuration and
// accumulates per-year, per-fault-kind DUE/SDC statistics across them.
type DomainGroup struct {
	domains []*faultdomain.FaultDomain

	dueByYearKind [][numKinds]int
	sdcByYearKind [][numKinds]int
}

const numKinds = int(fault.MWL) + 1 // operational kinds only, for stats purposes

// New builds a domain group with n identically-configured fault domains.
func New(n int, geom fault.Geometry, rateInfo func() *fault.RateInfo, maxYear int) *DomainGroup {
	dg := &DomainGroup{
		domains:       make([]*faultdomain.FaultDomain, n),
		dueByYearKind: make([][numKinds]int, maxYear),
		sdcByYearKind: make([][numKinds]int, maxYear),
	}
	for i := range dg.domains {
		dg.domains[i] = faultdomain.New(geom, rateInfo())
	}
	return dg
}

// Domains exposes the underlying fault domains for callers (the tester) that
// need direct access beyond the group-level fan-outs below.
func (dg *DomainGroup) Domains() []*faultdomain.FaultDomain { return dg.domains }

// GetFaultRate is the sum of every child domain's fault rate.
func (dg *DomainGroup) GetFaultRate() float64 {
	var total float64
	for _, d := range dg.domains {
		total += d.GetFaultRate()
	}
	return total
}

// PickRandomFD draws a domain weighted by its fault rate: draw u in
// [0,total), walk the list accumulating normalized rate, return the first
// domain whose cumulative share crosses u.
func (dg *DomainGroup) PickRandomFD(rng *rand.Rand) *faultdomain.FaultDomain {
	total := dg.GetFaultRate()
	if total <= 0 {
		panic("domaingroup: PickRandomFD called with zero total fault rate")
	}
	draw := rng.Float64() * total
	var sum float64
	for _, d := range dg.domains {
		sum += d.GetFaultRate()
		if draw < sum {
			return d
		}
	}
	return dg.domains[len(dg.domains)-1]
}

// SetHBM forwards HBM-mode to every child domain.
func (dg *DomainGroup) SetHBM(v bool) {
	for _, d := range dg.domains {
		d.SetHBM(v)
	}
}

// SetInherentFault installs the same inherent-fault kind on every child
// domain, each sampled independently at its own configured rate.
func (dg *DomainGroup) SetInherentFault(kind fault.Kind, rng *rand.Rand) {
	for _, d := range dg.domains {
		d.SetInherentFault(kind, rng)
	}
}

// ResetInherentFault forwards to every child domain.
func (dg *DomainGroup) ResetInherentFault() {
	for _, d := range dg.domains {
		d.ResetInherentFault()
	}
}

// UpdateInherentFault forwards to every child domain.
func (dg *DomainGroup) UpdateInherentFault(e ecc.ECC, rng *rand.Rand) {
	for _, d := range dg.domains {
		d.UpdateInherentFault(e, rng)
	}
}

// SetInitialRetiredBlkCount forwards to every child domain.
func (dg *DomainGroup) SetInitialRetiredBlkCount(e ecc.ECC, rng *rand.Rand) {
	for _, d := range dg.domains {
		d.SetInitialRetiredBlkCount(e, rng)
	}
}

// Scrub forwards to every child domain.
func (dg *DomainGroup) Scrub() {
	for _, d := range dg.domains {
		d.Scrub()
	}
}

// Clear forwards to every child domain.
func (dg *DomainGroup) Clear() {
	for _, d := range dg.domains {
		d.Clear()
	}
}

// RecordOutcome folds one decode outcome into the group's per-year,
// per-kind DUE/SDC histograms.
func (dg *DomainGroup) RecordOutcome(year int, kind fault.Kind, result errtype.ErrorType) {
	if year < 0 || year >= len(dg.dueByYearKind) || int(kind) >= numKinds {
		return
	}
	switch result {
	case errtype.DUE:
		dg.dueByYearKind[year][kind]++
	case errtype.SDC:
		dg.sdcByYearKind[year][kind]++
	}
}

// FaultStats is one year's percentage breakdown of DUE/SDC events by
// fault kind, normalized by that year's total DUE+SDC count.
type FaultStats struct {
	Year       int
	DUEPercent map[fault.Kind]float64
	SDCPercent map[fault.Kind]float64
}

// PrintFaultStats computes the normalized per-kind breakdown for one year.
func (dg *DomainGroup) PrintFaultStats(year int) FaultStats {
	stats := FaultStats{Year: year, DUEPercent: make(map[fault.Kind]float64), SDCPercent: make(map[fault.Kind]float64)}
	if year < 0 || year >= len(dg.dueByYearKind) {
		return stats
	}
	var total float64
	for k := 0; k < numKinds; k++ {
		total += float64(dg.dueByYearKind[year][k] + dg.sdcByYearKind[year][k])
	}
	if total == 0 {
		return stats
	}
	for k := 0; k < numKinds; k++ {
		stats.DUEPercent[fault.Kind(k)] = float64(dg.dueByYearKind[year][k]) / total * 100
		stats.SDCPercent[fault.Kind(k)] = float64(dg.sdcByYearKind[year][k]) / total * 100
	}
	return stats
}

// PrintFaultStatsAll computes the year x kind breakdown for every
// configured year.
func (dg *DomainGroup) PrintFaultStatsAll() []FaultStats {
	out := make([]FaultStats, len(dg.dueByYearKind))
	for y := range out {
		out[y] = dg.PrintFaultStats(y)
	}
	return out
}
