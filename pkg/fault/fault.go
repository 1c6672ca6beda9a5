package fault

import (
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
)

// Fault is one injected event: its kind, the coordinates it was sampled at,
// whether it self-heals on scrub, and (for inherent faults) the per-cell
// fault rate that drove its initial retired-block estimate.
type Fault struct {
	Kind           Kind
	ChipID         int
	PinID          int
	BeatID         int
	Chip2ID        int // second chip for MBANK/RDEC-style two-chip footprints, -1 otherwise
	Scatter        [][3]int // extra (chip,pin,beat) triples for DISTBIT
	Transient      bool
	CellFaultRate  float64
	InjectedAtHour float64

	baseAddress  uint64
	variableMask uint64
}

// New samples a fault of the given kind at a uniformly random coordinate
// within geom, per spec.md §4.3: the kind's constructor fills the variable
// bits of its mask with uniform randomness.
func New(kind Kind, geom Geometry, rng *rand.Rand, hour float64) *Fault {
	ext := extents[kind]
	al := geom.addressLayout()

	chip := rng.Intn(geom.DevicesPerRank)
	pin := rng.Intn(geom.PinsPerDevice)
	beat := rng.Intn(geom.BeatHeight)
	chip2 := -1

	if ext.secondChip && geom.DevicesPerRank > 1 {
		chip2 = (chip + 1 + rng.Intn(geom.DevicesPerRank-1)) % geom.DevicesPerRank
	}

	var scatter [][3]int
	if ext.scattered {
		n := 2 + rng.Intn(3)
		scatter = make([][3]int, n)
		for i := range scatter {
			scatter[i] = [3]int{rng.Intn(geom.DevicesPerRank), rng.Intn(geom.PinsPerDevice), rng.Intn(geom.BeatHeight)}
		}
	}

	base := al.pack(pin, chip, beat)
	variable := al.fieldMask(ext.pinFree, ext.chipFree, ext.beatFree)
	if ext.localBeats > 0 {
		// Local-wordline footprints only free a handful of beat bits, not the
		// whole beat field; approximate with the full beat field when the
		// burst is already that short.
		if geom.BeatHeight <= ext.localBeats {
			variable |= al.fieldMask(false, false, true)
		}
	}

	return &Fault{
		Kind:           kind,
		ChipID:         chip,
		PinID:          pin,
		BeatID:         beat,
		Chip2ID:        chip2,
		Scatter:        scatter,
		Transient:      ext.transient,
		InjectedAtHour: hour,
		baseAddress:    base,
		variableMask:   variable,
	}
}

// NewInherent samples an inherent (t=0) weak-cell fault; it never expires on
// scrub and carries the per-cell fault rate used to size initial retirement.
func NewInherent(kind Kind, geom Geometry, rng *rand.Rand, cellFaultRate float64) *Fault {
	f := New(kind, geom, rng, 0)
	f.Transient = false
	f.CellFaultRate = cellFaultRate
	return f
}

// Overlap reports whether f and other occupy addresses that cannot be told
// apart given either fault's don't-care bits: every bit where their base
// addresses differ must be "don't care" in at least one of the two masks.
func (f *Fault) Overlap(other *Fault) bool {
	return (f.baseAddress^other.baseAddress)&^(f.variableMask|other.variableMask) == 0
}

// Materialize flips the bits of cl that fall inside f's spatial extent,
// given the owning domain's geometry.
func (f *Fault) Materialize(cl *bitblock.Block, geom Geometry) {
	channelWidth := geom.ChannelWidth()
	ext := extents[f.Kind]

	flip := func(chip, pin, beat int) {
		pos := beat*channelWidth + chip*geom.PinsPerDevice + pin
		cl.InvBit(pos)
	}

	chips := []int{f.ChipID}
	if f.Chip2ID >= 0 {
		chips = append(chips, f.Chip2ID)
	}
	if ext.chipFree {
		chips = make([]int, geom.DevicesPerRank)
		for i := range chips {
			chips[i] = i
		}
	}

	pins := []int{f.PinID}
	if ext.pinFree {
		pins = make([]int, geom.PinsPerDevice)
		for i := range pins {
			pins[i] = i
		}
	}

	beats := []int{f.BeatID}
	switch {
	case ext.beatFree:
		beats = make([]int, geom.BeatHeight)
		for i := range beats {
			beats[i] = i
		}
	case ext.localBeats > 0:
		n := ext.localBeats
		if n > geom.BeatHeight {
			n = geom.BeatHeight
		}
		beats = make([]int, n)
		for i := range beats {
			beats[i] = (f.BeatID + i) % geom.BeatHeight
		}
	}

	for _, chip := range chips {
		for _, pin := range pins {
			for _, beat := range beats {
				flip(chip, pin, beat)
			}
		}
	}

	for _, s := range f.Scatter {
		flip(s[0], s[1], s[2])
	}
}
