package ecc

import (
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

// VECC is a two-tier variable-strength scheme: the primary (cheaper) scheme
// attempts decode first, and only on DUE does VECC retry the same cacheline
// against the secondary (stronger) scheme.
type VECC struct {
	primary, secondary ECC
}

// NewVECC pairs a primary scheme with a stronger secondary fallback.
func NewVECC(primary, secondary ECC) *VECC {
	return &VECC{primary: primary, secondary: secondary}
}

func (v *VECC) Name() string { return "VECC" }

func (v *VECC) Clear() {
	v.primary.Clear()
	v.secondary.Clear()
}

func (v *VECC) GetInitialRetiredBlkCount(fd Domain, cellFaultRate float64, rng *rand.Rand) int {
	return v.primary.GetInitialRetiredBlkCount(fd, cellFaultRate, rng)
}

func (v *VECC) Decode(fd Domain, cl *bitblock.Block) errtype.ErrorType {
	result := v.primary.Decode(fd, cl)
	if result != errtype.DUE {
		return result
	}
	return v.secondary.Decode(fd, cl)
}
