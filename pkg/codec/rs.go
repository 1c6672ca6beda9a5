package codec

import (
	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
)

// ReedSolomon implements RS(n,r,t) over GF(2^m): syndrome computation,
// Berlekamp-Massey for the error locator, Chien search for error positions,
// and Forney's algorithm for error magnitudes. The generator polynomial and
// field tables are built once at construction and shared by value.
type ReedSolomon struct {
	gf        *galoisField
	m         int
	n, k, r   int
	t         int
	generator []int // high-degree-first, monic, degree r
}

// NewReedSolomon builds RS<GF(2^m)>(n,r) with correction capability t=r/2.
func NewReedSolomon(m, n, r int) *ReedSolomon {
	if r >= n {
		panic("codec: RS parity count must be smaller than codeword length")
	}
	gf := newGaloisField(m)
	rs := &ReedSolomon{gf: gf, m: m, n: n, k: n - r, r: r, t: r / 2}
	rs.generator = rs.buildGenerator()
	return rs
}

func (rs *ReedSolomon) buildGenerator() []int {
	gf := rs.gf
	g := []int{1}
	for i := 0; i < rs.r; i++ {
		g = polyMulHi(gf, g, []int{1, gf.pow(2, i)})
	}
	return g
}

func (rs *ReedSolomon) Name() string { return "ReedSolomon" }
func (rs *ReedSolomon) BitN() int    { return rs.n * rs.m }
func (rs *ReedSolomon) BitK() int    { return rs.k * rs.m }

// T returns the codec's guaranteed symbol-error correction capability.
func (rs *ReedSolomon) T() int { return rs.t }

// Encode produces a systematic codeword: the first k symbols are the
// message, the last r are parity computed by synthetic division against
// the generator polynomial.
func (rs *ReedSolomon) Encode(data *bitblock.Block) *bitblock.Block {
	msg := blockToSymbols(data, rs.m, rs.k)
	dividend := make([]int, rs.n)
	copy(dividend, msg)
	remainder := polyDivRemainder(rs.gf, dividend, rs.generator)

	codeword := make([]int, rs.n)
	copy(codeword, msg)
	copy(codeword[rs.k:], remainder)
	return symbolsToBlock(codeword, rs.m, rs.n)
}

// Decode recovers the message, correcting up to t symbol errors.
func (rs *ReedSolomon) Decode(received *bitblock.Block) (errtype.ErrorType, *bitblock.Block, []int) {
	gf := rs.gf
	recv := blockToSymbols(received, rs.m, rs.n)

	syn := make([]int, rs.r)
	hasError := false
	for j := 0; j < rs.r; j++ {
		syn[j] = polyEvalHi(gf, recv, gf.pow(2, j))
		if syn[j] != 0 {
			hasError = true
		}
	}

	if !hasError {
		return errtype.NE, symbolsToBlock(recv[:rs.k], rs.m, rs.k), nil
	}

	sigma := berlekampMassey(gf, syn)
	errDegree := len(sigma) - 1
	if errDegree == 0 || errDegree > rs.t {
		return errtype.DUE, nil, nil
	}

	var errPowers []int
	for power := 0; power < rs.n; power++ {
		xinv := gf.pow(2, -power)
		if polyEvalAsc(gf, sigma, xinv) == 0 {
			errPowers = append(errPowers, power)
		}
	}
	if len(errPowers) != errDegree {
		return errtype.DUE, nil, nil
	}

	omega := polyMulAscGF(gf, syn, sigma)
	if len(omega) > rs.r {
		omega = omega[:rs.r]
	}
	sigmaDeriv := formalDerivative(gf, sigma)

	corrected := make([]int, len(recv))
	copy(corrected, recv)
	var positions []int
	for _, power := range errPowers {
		xinv := gf.pow(2, -power)
		num := polyEvalAsc(gf, omega, xinv)
		den := polyEvalAsc(gf, sigmaDeriv, xinv)
		if den == 0 {
			return errtype.DUE, nil, nil
		}
		magnitude := gf.mul(gf.pow(2, power), gf.div(num, den))
		idx := rs.n - 1 - power
		if idx < 0 || idx >= len(corrected) {
			return errtype.DUE, nil, nil
		}
		corrected[idx] = gf.add(corrected[idx], magnitude)
		positions = append(positions, idx)
	}

	// Verify: a genuine correction must zero every syndrome. This is the
	// safety net against an arithmetic slip turning into a false CE.
	for j := 0; j < rs.r; j++ {
		if polyEvalHi(gf, corrected, gf.pow(2, j)) != 0 {
			return errtype.DUE, nil, nil
		}
	}

	return errtype.CE, symbolsToBlock(corrected[:rs.k], rs.m, rs.k), positions
}

func formalDerivative(gf *galoisField, p []int) []int {
	out := make([]int, 0, len(p))
	for i := 1; i < len(p); i++ {
		if i%2 == 1 {
			out = append(out, p[i])
		} else {
			out = append(out, 0)
		}
	}
	return out
}

// --- polynomial helpers -----------------------------------------------
//
// High-degree-first ("Hi") helpers operate on codeword/generator
// polynomials the way textbook synthetic division expects. Ascending-order
// ("Asc") helpers operate on syndrome/locator polynomials the way
// Berlekamp-Massey and Forney's algorithm expect.

func polyMulHi(gf *galoisField, a, b []int) []int {
	res := make([]int, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			res[i+j] = gf.add(res[i+j], gf.mul(av, bv))
		}
	}
	return res
}

func polyEvalHi(gf *galoisField, p []int, x int) int {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gf.add(gf.mul(y, x), p[i])
	}
	return y
}

// polyDivRemainder divides dividend by a monic divisor using synthetic
// division and returns the remainder (length len(divisor)-1).
func polyDivRemainder(gf *galoisField, dividend, divisor []int) []int {
	msg := make([]int, len(dividend))
	copy(msg, dividend)
	for i := 0; i <= len(dividend)-len(divisor); i++ {
		coef := msg[i]
		if coef == 0 {
			continue
		}
		for j := 0; j < len(divisor); j++ {
			if divisor[j] != 0 {
				msg[i+j] = gf.add(msg[i+j], gf.mul(divisor[j], coef))
			}
		}
	}
	return msg[len(dividend)-(len(divisor)-1):]
}

func polyEvalAsc(gf *galoisField, p []int, x int) int {
	y := 0
	xp := 1
	for _, c := range p {
		y = gf.add(y, gf.mul(c, xp))
		xp = gf.mul(xp, x)
	}
	return y
}

// polyMulAsc multiplies two ascending-order polynomials (index i is the
// coefficient of x^i); the convolution itself is identical to polyMulHi,
// only the interpretation of index order differs.
func polyMulAscGF(gf *galoisField, a, b []int) []int {
	return polyMulHi(gf, a, b)
}

// berlekampMassey finds the shortest linear feedback shift register
// (the error locator polynomial, ascending order, sigma[0]==1) that
// generates the syndrome sequence.
func berlekampMassey(gf *galoisField, syn []int) []int {
	n := len(syn)
	C := make([]int, n+1)
	B := make([]int, n+1)
	C[0], B[0] = 1, 1
	L, m, b := 0, 1, 1

	for i := 0; i < n; i++ {
		delta := syn[i]
		for j := 1; j <= L; j++ {
			delta = gf.add(delta, gf.mul(C[j], syn[i-j]))
		}
		switch {
		case delta == 0:
			m++
		case 2*L <= i:
			T := make([]int, len(C))
			copy(T, C)
			coef := gf.div(delta, b)
			for j := 0; j < len(B); j++ {
				if j+m < len(C) {
					C[j+m] = gf.add(C[j+m], gf.mul(coef, B[j]))
				}
			}
			L = i + 1 - L
			B = T
			b = delta
			m = 1
		default:
			coef := gf.div(delta, b)
			for j := 0; j < len(B); j++ {
				if j+m < len(C) {
					C[j+m] = gf.add(C[j+m], gf.mul(coef, B[j]))
				}
			}
			m++
		}
	}
	return C[:L+1]
}

func blockToSymbols(b *bitblock.Block, m, count int) []int {
	out := make([]int, count)
	for i := 0; i < count; i++ {
		sym := 0
		for j := 0; j < m; j++ {
			bit := i*m + j
			if bit < b.Width() && b.GetBit(bit) {
				sym |= 1 << uint(j)
			}
		}
		out[i] = sym
	}
	return out
}

func symbolsToBlock(syms []int, m, count int) *bitblock.Block {
	b := bitblock.New(count * m)
	for i := 0; i < count; i++ {
		sym := syms[i]
		for j := 0; j < m; j++ {
			if sym&(1<<uint(j)) != 0 {
				b.SetBit(i*m+j, true)
			}
		}
	}
	return b
}
