package ecc

import (
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/codec"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

// Variant selects how XED erasure-corrects once two chips are flagged: DDDC
// corrects two erasures directly off independent even/odd parity lanes,
// SDDC falls through to serial per-chip correction instead.
type Variant int

const (
	XEDPlain Variant = iota
	XEDDDDC
	XEDSDDC
)

// catchwordCollisionDenominator models the XED catch-word collision: a real
// on-die detection is silently missed with probability 1/2^32, simulated by
// drawing a uniform 32-bit value and comparing it to a fixed sentinel.
const catchwordCollisionDenominator = 1 << 32

// Diagnoser is implemented by a fault domain that can attempt erasure
// correction by picking a random overlapping multi-bit operational fault and
// zeroing the chip it lives on. XED depends on this interface rather than on
// the faultdomain package directly, to keep the dependency graph acyclic.
type Diagnoser interface {
	DiagnoseFault(cl *bitblock.Block, rng *rand.Rand) bool
}

// XED layers on-die CRC-8 detection, catch-word collision modeling, erasure
// correction off channel parity, and (for 3+ simultaneously detected chips,
// or 2 under every variant except DDDC) serial per-chip on-die correction.
type XED struct {
	layout           bitblock.Layout
	channelWidth     int // chip count
	onDie            *codec.CRC8ATM
	variant          Variant
	doFaultDiagnosis bool
	disableCollision bool
	rng              *rand.Rand
	histogram        map[int]int
}

// NewXED builds an XED scheme. chipWidth is implied by onDie.BitN().
func NewXED(layout bitblock.Layout, channelWidth int, onDie *codec.CRC8ATM, variant Variant, doFaultDiagnosis, disableCollision bool, rng *rand.Rand) *XED {
	return &XED{layout: layout, channelWidth: channelWidth, onDie: onDie, variant: variant, doFaultDiagnosis: doFaultDiagnosis, disableCollision: disableCollision, rng: rng, histogram: make(map[int]int)}
}

func (x *XED) Name() string { return "XED" }
func (x *XED) Clear()       {}

// Histogram returns the correction-distance counts accumulated across every
// Decode call: histogram[n] is the number of corrections that touched n
// chips (1 for a single-chip erasure correction, 2 for a DDDC double-chip
// correction, and so on for serial correction of 3+ detected chips).
func (x *XED) Histogram() map[int]int {
	out := make(map[int]int, len(x.histogram))
	for k, v := range x.histogram {
		out[k] = v
	}
	return out
}

func (x *XED) GetInitialRetiredBlkCount(fd Domain, cellFaultRate float64, rng *rand.Rand) int {
	blocksPerRank := x.channelWidth * x.onDie.BitN() / x.onDie.BitK()
	return initialRetiredBlkCount(rng, blocksPerRank, cellFaultRate)
}

func (x *XED) chipWidth() int { return x.onDie.BitN() }

func (x *XED) extractChip(cl *bitblock.Block, chip int) *bitblock.Block {
	return bitblock.Extract(cl, x.layout, chip, x.chipWidth(), x.channelWidth)
}

func (x *XED) writeChip(cl *bitblock.Block, chip int, word *bitblock.Block) {
	current := x.extractChip(cl, chip)
	diff := current.Clone()
	diff.Xor(word)
	bitblock.EmbedXor(cl, diff, x.layout, chip, x.chipWidth(), x.channelWidth)
}

func (x *XED) zeroChip(cl *bitblock.Block, chip int) {
	x.writeChip(cl, chip, bitblock.New(x.chipWidth()))
}

func (x *XED) parityClean(cl *bitblock.Block) bool {
	if x.variant == XEDDDDC {
		return x.parityLaneClean(cl, 0) && x.parityLaneClean(cl, 1)
	}
	parity := bitblock.New(x.chipWidth())
	for chip := 0; chip < x.channelWidth; chip++ {
		parity.Xor(x.extractChip(cl, chip))
	}
	return parity.IsZero()
}

func (x *XED) parityLaneClean(cl *bitblock.Block, phase int) bool {
	lane := bitblock.New(x.chipWidth())
	for chip := phase; chip < x.channelWidth; chip += 2 {
		lane.Xor(x.extractChip(cl, chip))
	}
	return lane.IsZero()
}

func (x *XED) Decode(fd Domain, cl *bitblock.Block) errtype.ErrorType {
	if cl.IsZero() {
		return errtype.NE
	}

	var detected []chipDetection

	for chip := 0; chip < x.channelWidth; chip++ {
		result, corrected, _ := x.onDie.Decode(x.extractChip(cl, chip))
		flagged := result == errtype.CE || result == errtype.DUE
		if flagged && !x.disableCollision {
			if x.rng.Intn(catchwordCollisionDenominator) == 0 {
				flagged = false
			}
		}
		if flagged {
			detected = append(detected, chipDetection{chip: chip, result: result, corrected: corrected})
		}
	}

	diagnose := func() errtype.ErrorType {
		if !x.doFaultDiagnosis {
			return errtype.DUE
		}
		diagnoser, ok := fd.(Diagnoser)
		if !ok {
			return errtype.DUE
		}
		if diagnoser.DiagnoseFault(cl, x.rng) && cl.IsZero() {
			return errtype.CE
		}
		return errtype.DUE
	}

	switch len(detected) {
	case 0:
		if x.parityClean(cl) {
			return errtype.SDC
		}
		return diagnose()

	case 1:
		x.zeroChip(cl, detected[0].chip)
		if cl.IsZero() {
			x.histogram[1]++
			return errtype.CE
		}
		return errtype.SDC

	case 2:
		if x.variant == XEDDDDC {
			x.zeroChip(cl, detected[0].chip)
			x.zeroChip(cl, detected[1].chip)
			if cl.IsZero() {
				x.histogram[2]++
				return errtype.CE
			}
			return errtype.SDC
		}
		return x.serialCorrect(cl, detected, diagnose)

	default:
		return x.serialCorrect(cl, detected, diagnose)
	}
}

type chipDetection struct {
	chip      int
	result    errtype.ErrorType
	corrected *bitblock.Block
}

func (x *XED) serialCorrect(cl *bitblock.Block, detected []chipDetection, diagnose func() errtype.ErrorType) errtype.ErrorType {
	corrected := 0
	for _, d := range detected {
		if d.result == errtype.CE {
			x.writeChip(cl, d.chip, d.corrected)
			corrected++
		}
	}
	if x.parityClean(cl) {
		if corrected > 0 {
			x.histogram[corrected]++
		}
		return errtype.CE
	}
	return diagnose()
}
