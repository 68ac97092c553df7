package gf256

// smallIrreducibles are all irreducible binary polynomials of degree 1 to 4,
// with their leading term written out. A reducible degree-8 polynomial has
// a factor of degree at most 4, so these are the only divisors to try.
var smallIrreducibles = []uint16{
	0x02, 0x03, // x, x + 1
	0x07,       // x^2 + x + 1
	0x0B, 0x0D, // x^3 + x + 1, x^3 + x^2 + 1
	0x13, 0x19, 0x1F,
}

// IsIrreducible reports whether x^8 + p is irreducible over GF(2).
func IsIrreducible(p byte) bool {
	if p&1 == 0 {
		return false
	}
	full := uint16(p) | 0x100
	for _, d := range smallIrreducibles {
		if polyMod(full, d) == 0 {
			return false
		}
	}
	return true
}

// ValidateModulus returns a *ReducibleModulusError when p cannot serve as a field modulus.
func ValidateModulus(p byte) error {
	if !IsIrreducible(p) {
		return &ReducibleModulusError{Modulus: p}
	}
	return nil
}

// FindAllIrreduciblePolynomials returns the 30 moduli that define GF(2^8),
// in ascending order.
func FindAllIrreduciblePolynomials() []byte {
	result := make([]byte, 0, 30)
	for p := 0; p < 256; p++ {
		if IsIrreducible(byte(p)) {
			result = append(result, byte(p))
		}
	}
	return result
}

func degree(p uint16) int {
	d := -1
	for p != 0 {
		p >>= 1
		d++
	}
	return d
}

func polyMod(a, b uint16) uint16 {
	db := degree(b)
	for da := degree(a); da >= db; da = degree(a) {
		a ^= b << (da - db)
	}
	return a
}
