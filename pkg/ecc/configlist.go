package ecc

import "github.com/jihwankim/dram-fault-sim/pkg/codec"

// configEntry gates a codec behind a pair of retirement thresholds: the
// codec applies once the domain's retired chip/pin counts are both within
// (at or below) the entry's limits.
type configEntry struct {
	maxDeviceRetirement int
	maxPinRetirement    int
	codec               codec.Codec
}

// configList is an ordered sequence of (thresholds, codec) entries. select
// walks the list in order and returns the LAST entry whose thresholds both
// dominate the domain's current retired counts -- a domain that has retired
// more chips/pins than every entry allows matches nothing.
type configList []configEntry

func newConfigList(entries ...configEntry) configList {
	return configList(entries)
}

func (cl configList) select_(fd Domain) (codec.Codec, bool) {
	var chosen codec.Codec
	matched := false
	chips, pins := fd.RetiredChipCount(), fd.RetiredPinCount()
	for _, e := range cl {
		if chips <= e.maxDeviceRetirement && pins <= e.maxPinRetirement {
			chosen = e.codec
			matched = true
		}
	}
	return chosen, matched
}
