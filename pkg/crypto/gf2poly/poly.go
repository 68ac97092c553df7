// Package gf2poly implements arithmetic on binary polynomials of any degree.
//
// A polynomial is a *big.Int whose bit i is the coefficient of x^i, so
// 0b1011 is x^3 + x + 1. Functions never modify their arguments.
package gf2poly

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

var (
	ErrZeroPolynomial = errors.New("zero polynomial")
	ErrDivisionByZero = errors.New("polynomial division by zero")
	ErrInvalidFormat  = errors.New("invalid polynomial format")
)

// X returns the polynomial x.
func X() *big.Int {
	return big.NewInt(2)
}

// One returns the constant polynomial 1.
func One() *big.Int {
	return big.NewInt(1)
}

// Degree returns the degree of p, or -1 for the zero polynomial.
func Degree(p *big.Int) int {
	return p.BitLen() - 1
}

// Add returns a + b (XOR of coefficients).
func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Xor(a, b)
}

// Mul returns the carry-less product a * b.
func Mul(a, b *big.Int) *big.Int {
	result := new(big.Int)
	shifted := new(big.Int)
	for i := 0; i < b.BitLen(); i++ {
		if b.Bit(i) == 1 {
			result.Xor(result, shifted.Lsh(a, uint(i)))
		}
	}
	return result
}

// DivMod returns the quotient and remainder of a / b. It panics with
// ErrDivisionByZero when b is zero.
func DivMod(a, b *big.Int) (*big.Int, *big.Int) {
	if b.Sign() == 0 {
		panic(ErrDivisionByZero)
	}
	q := new(big.Int)
	r := new(big.Int).Set(a)
	shifted := new(big.Int)
	db := Degree(b)
	for dr := Degree(r); dr >= db; dr = Degree(r) {
		shift := uint(dr - db)
		q.SetBit(q, int(shift), 1)
		r.Xor(r, shifted.Lsh(b, shift))
	}
	return q, r
}

// Mod returns a mod b.
func Mod(a, b *big.Int) *big.Int {
	_, r := DivMod(a, b)
	return r
}

// MulMod returns a * b mod m.
func MulMod(a, b, m *big.Int) *big.Int {
	return Mod(Mul(a, b), m)
}

// GCD returns the greatest common divisor of a and b. Over GF(2) every
// nonzero polynomial is monic, so the result is unique.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Set(a)
	y := new(big.Int).Set(b)
	for y.Sign() != 0 {
		x, y = y, Mod(x, y)
	}
	return x
}

// Derivative returns the formal derivative of p. Only odd powers survive in
// characteristic 2.
func Derivative(p *big.Int) *big.Int {
	result := new(big.Int)
	for i := 1; i < p.BitLen(); i += 2 {
		if p.Bit(i) == 1 {
			result.SetBit(result, i-1, 1)
		}
	}
	return result
}

// sqrt returns q with q^2 == p, assuming p has only even powers.
func sqrt(p *big.Int) *big.Int {
	result := new(big.Int)
	for i := 0; i < p.BitLen(); i += 2 {
		if p.Bit(i) == 1 {
			result.SetBit(result, i/2, 1)
		}
	}
	return result
}

// IsIrreducible reports whether p has no factor of positive degree other
// than itself. It checks gcd(p, x^(2^i) - x) == 1 for i up to deg(p)/2;
// an irreducible factor of degree i would divide x^(2^i) - x.
func IsIrreducible(p *big.Int) bool {
	n := Degree(p)
	if n <= 0 {
		return false
	}
	if n == 1 {
		return true
	}
	h := X()
	for i := 1; i <= n/2; i++ {
		h = MulMod(h, h, p)
		if Degree(GCD(p, Add(h, X()))) != 0 {
			return false
		}
	}
	return true
}

// Parse reads a polynomial written as terms ("x^7 + x^3 + 1"), as hex with
// a 0x prefix, or as binary digits with an optional 0b prefix.
func Parse(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		return parseBase(lower[2:], 16)
	case strings.HasPrefix(lower, "0b"):
		return parseBase(lower[2:], 2)
	case strings.Contains(lower, "x"):
		return parseTerms(lower)
	default:
		return parseBase(lower, 2)
	}
}

func parseBase(digits string, base int) (*big.Int, error) {
	p, ok := new(big.Int).SetString(strings.ReplaceAll(digits, "_", ""), base)
	if !ok || p.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q is not a base-%d number", ErrInvalidFormat, digits, base)
	}
	return p, nil
}

func parseTerms(expr string) (*big.Int, error) {
	result := new(big.Int)
	for _, term := range strings.Split(expr, "+") {
		term = strings.ReplaceAll(strings.TrimSpace(term), " ", "")
		var exp int
		switch {
		case term == "1":
			exp = 0
		case term == "0":
			continue
		case term == "x":
			exp = 1
		case strings.HasPrefix(term, "x^"):
			n, err := strconv.Atoi(term[2:])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: bad exponent in %q", ErrInvalidFormat, term)
			}
			exp = n
		default:
			return nil, fmt.Errorf("%w: unexpected term %q", ErrInvalidFormat, term)
		}
		// Repeated terms cancel in characteristic 2.
		result.SetBit(result, exp, result.Bit(exp)^1)
	}
	return result, nil
}

// Format renders p as a sum of powers of x, highest first.
func Format(p *big.Int) string {
	if p.Sign() == 0 {
		return "0"
	}
	terms := make([]string, 0, p.BitLen())
	for i := p.BitLen() - 1; i >= 0; i-- {
		if p.Bit(i) == 0 {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, "1")
		case 1:
			terms = append(terms, "x")
		default:
			terms = append(terms, "x^"+strconv.Itoa(i))
		}
	}
	return strings.Join(terms, " + ")
}
