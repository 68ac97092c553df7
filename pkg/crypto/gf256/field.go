// Package gf256 implements arithmetic in GF(2^8) over a caller-chosen modulus.
//
// Elements are bytes read as polynomials of degree at most 7 over GF(2). A
// modulus is the low 8 bits of a degree-8 polynomial; the x^8 term is
// implicit, so 0x1B stands for x^8 + x^4 + x^3 + x + 1.
package gf256

import (
	"fmt"

	"github.com/Davincible/rijndael/pkg/crypto/cryptoerr"
)

// DefaultModulus is the Rijndael polynomial x^8 + x^4 + x^3 + x + 1.
const DefaultModulus byte = 0x1B

// ReducibleModulusError is returned when a modulus does not define a field.
type ReducibleModulusError struct {
	Modulus byte
}

func (e *ReducibleModulusError) Error() string {
	return fmt.Sprintf("modulus 0x%02X (0x1%02X) is reducible over GF(2)", e.Modulus, e.Modulus)
}

func (e *ReducibleModulusError) Unwrap() error {
	return cryptoerr.ErrConfiguration
}

// Add returns a + b, which in characteristic 2 is XOR. Subtraction is the same operation.
func Add(a, b byte) byte {
	return a ^ b
}

// Multiply returns a * b reduced by modulus.
func Multiply(a, b, modulus byte) byte {
	var result byte
	for i := 0; i < 8; i++ {
		if b&1 == 1 {
			result ^= a
		}
		carry := a & 0x80
		a <<= 1
		if carry != 0 {
			a ^= modulus
		}
		b >>= 1
	}
	return result
}

// Pow returns a^e reduced by modulus. Pow(0, 0, m) is 1.
func Pow(a byte, e uint, modulus byte) byte {
	result := byte(1)
	for e > 0 {
		if e&1 == 1 {
			result = Multiply(result, a, modulus)
		}
		a = Multiply(a, a, modulus)
		e >>= 1
	}
	return result
}

// Inverse returns the multiplicative inverse of a as a^254, which holds for
// every nonzero element of a field with 256 elements. Inverse(0) is 0 so
// substitution tables stay total.
func Inverse(a, modulus byte) byte {
	if a == 0 {
		return 0
	}
	return Pow(a, 254, modulus)
}

// Divide returns a / b. It panics when b is zero.
func Divide(a, b, modulus byte) byte {
	if b == 0 {
		panic("gf256: division by zero")
	}
	return Multiply(a, Inverse(b, modulus), modulus)
}
