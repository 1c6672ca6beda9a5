package codec

import (
	"math/bits"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

// Hsiao implements a single-error-correct, double-error-detect (SEC-DED)
// code: an odd-weight-column parity-check matrix where every column is
// distinct and has odd weight, guaranteeing every single-bit error produces
// a unique nonzero syndrome and every double-bit error produces an
// even-weight (hence non-matching) syndrome.
type Hsiao struct {
	k, r int
	// dataColumns[i] is the r-bit check-matrix column for data bit i.
	dataColumns []uint64
	// column -> bit index in the (k+r)-bit codeword, for syndrome lookup.
	columnIndex map[uint64]int
}

// NewHsiaoSECDED builds a SEC-DED code protecting k data bits.
func NewHsiaoSECDED(k int) *Hsiao {
	r := 2
	for {
		oddVectors := 1 << uint(r-1)
		if oddVectors-r >= k {
			break
		}
		r++
	}

	h := &Hsiao{k: k, r: r, dataColumns: make([]uint64, k), columnIndex: make(map[uint64]int, k+r)}

	for j := 0; j < r; j++ {
		unit := uint64(1) << uint(j)
		h.columnIndex[unit] = k + j
	}

	assigned := 0
	for v := uint64(1); assigned < k; v++ {
		if bits.OnesCount64(v) < 3 || bits.OnesCount64(v)%2 == 0 {
			continue
		}
		if v >= uint64(1)<<uint(r) {
			panic("codec: Hsiao column search exceeded field width")
		}
		h.dataColumns[assigned] = v
		h.columnIndex[v] = assigned
		assigned++
	}
	return h
}

func (h *Hsiao) Name() string { return "Hsiao-SECDED" }
func (h *Hsiao) BitN() int    { return h.k + h.r }
func (h *Hsiao) BitK() int    { return h.k }

// Encode appends r check bits computed as the XOR of the data columns
// selected by the set data bits.
func (h *Hsiao) Encode(data *bitblock.Block) *bitblock.Block {
	var syndrome uint64
	for i := 0; i < h.k; i++ {
		if data.GetBit(i) {
			syndrome ^= h.dataColumns[i]
		}
	}
	out := bitblock.New(h.k + h.r)
	for i := 0; i < h.k; i++ {
		out.SetBit(i, data.GetBit(i))
	}
	for j := 0; j < h.r; j++ {
		out.SetBit(h.k+j, syndrome&(1<<uint(j)) != 0)
	}
	return out
}

// Decode computes the full syndrome and classifies it: zero is NE, a
// syndrome matching a known column is a locatable single-bit error (CE),
// anything else nonzero is an uncorrectable double-bit error (DUE).
func (h *Hsiao) Decode(received *bitblock.Block) (errtype.ErrorType, *bitblock.Block, []int) {
	var syndrome uint64
	for i := 0; i < h.k; i++ {
		if received.GetBit(i) {
			syndrome ^= h.dataColumns[i]
		}
	}
	for j := 0; j < h.r; j++ {
		if received.GetBit(h.k + j) {
			syndrome ^= 1 << uint(j)
		}
	}

	if syndrome == 0 {
		return errtype.NE, extractData(received, h.k), nil
	}

	if pos, ok := h.columnIndex[syndrome]; ok {
		corrected := received.Clone()
		corrected.InvBit(pos)
		return errtype.CE, extractData(corrected, h.k), []int{pos}
	}

	return errtype.DUE, nil, nil
}

func extractData(b *bitblock.Block, k int) *bitblock.Block {
	out := bitblock.New(k)
	for i := 0; i < k; i++ {
		out.SetBit(i, b.GetBit(i))
	}
	return out
}
