// Package scrubber implements the periodic memory-scrubbing policies that
// the tester consults on every advance of simulated time.
package scrubber

import "github.com/jihwankim/dram-fault-sim/pkg/domaingroup"

// Scrubber is consulted once per simulated fault event, given the
// cumulative simulated hours, and decides whether to trigger a scrub.
// Reset clears any high-water-mark state the scrubber keeps, so a single
// instance can be reused across independent runs.
type Scrubber interface {
	Scrub(dg *domaingroup.DomainGroup, hours float64)
	Reset()
}

// NoScrubber never scrubs.
type NoScrubber struct{}

func (NoScrubber) Scrub(*domaingroup.DomainGroup, float64) {}
func (NoScrubber) Reset()                                  {}

// Periodic triggers dg.Scrub whenever simulated time crosses into a new
// period section: floor(hours/period) strictly greater than the last
// section scrubbed. The section counter resets at the start of every run
// (construct a fresh Periodic per iteration, or call Reset).
type Periodic struct {
	period           float64
	lastScrubSection int
}

// NewPeriodic builds a scrubber that fires every period simulated hours.
// A non-positive period behaves like NoScrubber.
func NewPeriodic(period float64) *Periodic {
	return &Periodic{period: period, lastScrubSection: -1}
}

// Reset clears the section counter between independent runs.
func (p *Periodic) Reset() { p.lastScrubSection = -1 }

func (p *Periodic) Scrub(dg *domaingroup.DomainGroup, hours float64) {
	if p.period <= 0 {
		return
	}
	section := int(hours / p.period)
	if section > p.lastScrubSection {
		dg.Scrub()
		p.lastScrubSection = section
	}
}

var (
	_ Scrubber = NoScrubber{}
	_ Scrubber = (*Periodic)(nil)
)
