package codec

// galoisField implements GF(2^m) arithmetic via log/antilog tables, built
// once per field and shared by value across every codeword the field's
// owning codec processes.
type galoisField struct {
	m    int
	size int // 2^m
	exp  []int
	log  []int
}

// primitivePoly returns a known-good primitive polynomial for the given
// field degree, used to build the field's log/antilog tables.
func primitivePoly(m int) int {
	switch m {
	case 4:
		return 0x13 // x^4+x+1
	case 8:
		return 0x11D // x^8+x^4+x^3+x^2+1
	case 16:
		return 0x1100B // x^16+x^12+x^3+x+1
	default:
		panic("codec: unsupported GF(2^m) degree")
	}
}

func newGaloisField(m int) *galoisField {
	size := 1 << uint(m)
	poly := primitivePoly(m)
	gf := &galoisField{m: m, size: size, exp: make([]int, 2*size), log: make([]int, size)}

	x := 1
	for i := 0; i < size-1; i++ {
		gf.exp[i] = x
		gf.log[x] = i
		x <<= 1
		if x&size != 0 {
			x ^= poly
		}
	}
	for i := size - 1; i < 2*size; i++ {
		gf.exp[i] = gf.exp[i-(size-1)]
	}
	return gf
}

func (gf *galoisField) add(a, b int) int { return a ^ b }

func (gf *galoisField) mul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return gf.exp[gf.log[a]+gf.log[b]]
}

func (gf *galoisField) div(a, b int) int {
	if a == 0 {
		return 0
	}
	if b == 0 {
		panic("codec: GF division by zero")
	}
	return gf.exp[gf.log[a]-gf.log[b]+gf.size-1]
}

func (gf *galoisField) pow(a, n int) int {
	if n == 0 {
		return 1
	}
	if a == 0 {
		return 0
	}
	e := (gf.log[a] * n) % (gf.size - 1)
	if e < 0 {
		e += gf.size - 1
	}
	return gf.exp[e]
}

func (gf *galoisField) inv(a int) int {
	return gf.exp[gf.size-1-gf.log[a]]
}

// evalPoly evaluates polynomial p (low-degree-first coefficients) at x.
func (gf *galoisField) evalPoly(p []int, x int) int {
	result := p[len(p)-1]
	for i := len(p) - 2; i >= 0; i-- {
		result = gf.add(gf.mul(result, x), p[i])
	}
	return result
}
