// Package codec implements the pure encode/decode codecs shared by every ECC
// scheme: Reed-Solomon symbol codes over GF(2^m), Hsiao SEC-DED, and the
// CRC-8-ATM on-die detector. Every codec builds its field/generator/
// correction tables once at construction and shares them by value across
// every codeword it processes.
package codec

import (
	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

// Codec is the common contract every codec in this package satisfies:
// encode data into a codeword, decode a received codeword back into data
// plus an error classification and the set of corrected bit/symbol
// positions (nil when nothing was corrected).
type Codec interface {
	Name() string
	BitN() int
	BitK() int
	Encode(data *bitblock.Block) *bitblock.Block
	Decode(received *bitblock.Block) (errtype.ErrorType, *bitblock.Block, []int)
}

var (
	_ Codec = (*ReedSolomon)(nil)
	_ Codec = (*Hsiao)(nil)
	_ Codec = (*CRC8ATM)(nil)
)
