package fault

import "math/rand"

// RateInfo owns the per-fault-kind rate tables (operational and inherent)
// for one fault domain and samples a kind in proportion to its rate.
type RateInfo struct {
	operational map[Kind]float64
	inherent    map[Kind]float64
	total       float64
}

// NewRateInfo builds a RateInfo from per-kind operational rates; inherent
// rates are added separately via SetInherentRate since they describe a
// fixed t=0 population rather than an ongoing process.
func NewRateInfo(operational map[Kind]float64) *RateInfo {
	r := &RateInfo{
		operational: make(map[Kind]float64, len(operational)),
		inherent:    make(map[Kind]float64),
	}
	for k, v := range operational {
		r.operational[k] = v
		r.total += v
	}
	return r
}

// SetInherentRate records the rate of an inherent weak-cell population.
// Inherent rates do not contribute to TotalRate/Sample: they are consumed
// once at setup, not resampled every iteration.
func (r *RateInfo) SetInherentRate(k Kind, rate float64) {
	r.inherent[k] = rate
}

// InherentRate returns the configured rate for an inherent kind.
func (r *RateInfo) InherentRate(k Kind) float64 {
	return r.inherent[k]
}

// TotalRate is the sum of operational fault rates.
func (r *RateInfo) TotalRate() float64 {
	return r.total
}

// Sample draws an operational fault kind weighted by its configured rate.
// Panics if TotalRate is zero; callers must guard against an empty table
// per spec.md §7's "sampling impossibilities" error class.
func (r *RateInfo) Sample(rng *rand.Rand) Kind {
	if r.total <= 0 {
		panic("fault: Sample called with zero total rate")
	}
	draw := rng.Float64() * r.total
	var sum float64
	var last Kind
	for _, k := range OperationalKinds() {
		rate, ok := r.operational[k]
		if !ok {
			continue
		}
		sum += rate
		last = k
		if draw < sum {
			return k
		}
	}
	return last
}

// Rate returns the configured operational rate for kind k.
func (r *RateInfo) Rate(k Kind) float64 {
	return r.operational[k]
}
