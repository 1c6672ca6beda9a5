package ecc

import (
	"math/rand"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/codec"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

// Plain iterates a cacheline in codec-sized chunks via the layout's extract,
// decodes each chunk independently, and folds the results with Worse2. It
// selects its codec per decode from a configList, so a single Plain scheme
// can tighten from RS(n,1) to RS(n,2) as chips/pins retire.
type Plain struct {
	layout       bitblock.Layout
	channelWidth int // number of chunks (chips) spanning the cacheline
	configs      configList
	histogram    map[int]int
}

// ConfigEntry is the public form of a configList entry: a codec gated
// behind a pair of retirement thresholds.
type ConfigEntry struct {
	MaxDeviceRetirement int
	MaxPinRetirement    int
	Codec               codec.Codec
}

// NewPlain builds a plain codec-chunked ECC scheme. Each decode uses the
// last entry in configs whose thresholds are at or above the domain's
// retired chip and pin counts, so an entry listed later takes precedence
// for as long as its thresholds still hold; earlier entries with wider
// thresholds apply once the domain has retired past the later ones.
func NewPlain(layout bitblock.Layout, channelWidth int, configs ...ConfigEntry) *Plain {
	entries := make([]configEntry, len(configs))
	for i, c := range configs {
		entries[i] = configEntry{maxDeviceRetirement: c.MaxDeviceRetirement, maxPinRetirement: c.MaxPinRetirement, codec: c.Codec}
	}
	return &Plain{layout: layout, channelWidth: channelWidth, configs: newConfigList(entries...), histogram: make(map[int]int)}
}

func (p *Plain) Name() string { return "Plain" }
func (p *Plain) Clear()       {}

// Histogram returns the correction-distance counts accumulated across every
// Decode call: histogram[n] is the number of chunks corrected at n
// positions.
func (p *Plain) Histogram() map[int]int {
	out := make(map[int]int, len(p.histogram))
	for k, v := range p.histogram {
		out[k] = v
	}
	return out
}

func (p *Plain) GetInitialRetiredBlkCount(fd Domain, cellFaultRate float64, rng *rand.Rand) int {
	c, ok := p.configs.select_(fd)
	if !ok {
		return 0
	}
	blocksPerRank := p.channelWidth * c.BitN() / c.BitK()
	return initialRetiredBlkCount(rng, blocksPerRank, cellFaultRate)
}

func (p *Plain) Decode(fd Domain, cl *bitblock.Block) errtype.ErrorType {
	c, ok := p.configs.select_(fd)
	if !ok {
		if cl.IsZero() {
			return errtype.NE
		}
		return errtype.SDC
	}

	chipWidth := c.BitN()
	// Codec words that reach past the end of the cacheline (a codec whose
	// data bits alone cover the whole line) read their out-of-line bits as
	// zero: no fault is materialized there.
	if need := chipWidth * p.channelWidth; cl.Width() < need {
		padded := bitblock.New(need)
		for i := 0; i < cl.Width(); i++ {
			padded.SetBit(i, cl.GetBit(i))
		}
		cl = padded
	}
	result := errtype.NE
	for chip := 0; chip < p.channelWidth; chip++ {
		word := bitblock.Extract(cl, p.layout, chip, chipWidth, p.channelWidth)
		outcome, _, positions := c.Decode(word)
		if outcome == errtype.CE {
			p.histogram[len(positions)]++
		}
		result = errtype.Worse2(result, outcome)
	}
	return result
}
