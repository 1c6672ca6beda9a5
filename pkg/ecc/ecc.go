// Package ecc implements the ECC schemes laid over a fault domain's
// cacheline: plain per-chunk codec decoding, the layered XED on-die+channel
// scheme, and VECC's two-tier retry. None of these types import the
// faultdomain package directly; they see it only through the narrow Domain
// interface below, keeping the dependency graph from bitblock up through
// tester acyclic.
package ecc

import (
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

// Domain is the narrow view an ECC scheme needs of a fault domain: its
// retirement counters, which gate which configList entry applies.
type Domain interface {
	RetiredChipCount() int
	RetiredPinCount() int
}

// ECC is the common contract: clear any per-iteration scratch state, then
// decode a cacheline against a fault domain's current retirement state.
type ECC interface {
	Name() string
	Clear()
	Decode(fd Domain, cl *bitblock.Block) errtype.ErrorType
	GetInitialRetiredBlkCount(fd Domain, cellFaultRate float64, rng *rand.Rand) int
}

// Histogrammer is implemented by a scheme that tracks how many bit/chip
// positions each correction touched, keyed by that count (a correction
// distance of 1 is the common case; higher distances indicate the scheme
// is working harder per decode). It accumulates across every Decode call
// for the scheme's lifetime; Clear does not reset it.
type Histogrammer interface {
	Histogram() map[int]int
}

var (
	_ ECC = (*Plain)(nil)
	_ ECC = (*XED)(nil)
	_ ECC = (*VECC)(nil)

	_ Histogrammer = (*Plain)(nil)
	_ Histogrammer = (*XED)(nil)
)
