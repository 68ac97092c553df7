package gf256

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/Davincible/rijndael/pkg/crypto/cryptoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Degree-8 irreducible polynomials 283, 285, ..., 505 with x^8 dropped.
var referenceIrreducibles = []byte{
	0x1B, 0x1D, 0x2B, 0x2D, 0x39, 0x3F, 0x4D, 0x5F, 0x63, 0x65,
	0x69, 0x71, 0x77, 0x7B, 0x87, 0x8B, 0x8D, 0x9F, 0xA3, 0xA9,
	0xB1, 0xBD, 0xC3, 0xCF, 0xD7, 0xDD, 0xE7, 0xF3, 0xF5, 0xF9,
}

func TestAdd(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			x, y := byte(a), byte(b)
			require.Equal(t, Add(x, y), Add(y, x))
			require.Equal(t, y, Add(x, Add(x, y)))
		}
	}
}

func TestMultiplyKnownValues(t *testing.T) {
	tests := []struct {
		a, b, want byte
	}{
		// FIPS-197 section 4.2
		{0x57, 0x83, 0xC1},
		{0x57, 0x13, 0xFE},
		{0x57, 0x02, 0xAE},
		{0x57, 0x04, 0x47},
		{0x01, 0xAB, 0xAB},
		{0x00, 0xAB, 0x00},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Multiply(tt.a, tt.b, DefaultModulus), "0x%02X * 0x%02X", tt.a, tt.b)
	}
}

func TestMultiplyFieldLaws(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for _, m := range referenceIrreducibles {
		for a := 0; a < 256; a++ {
			for b := 0; b < 256; b++ {
				x, y := byte(a), byte(b)
				require.Equal(t, Multiply(x, y, m), Multiply(y, x, m))
			}
		}

		for i := 0; i < 2000; i++ {
			a, b, c := byte(rng.UintN(256)), byte(rng.UintN(256)), byte(rng.UintN(256))
			assert.Equal(t,
				Multiply(Multiply(a, b, m), c, m),
				Multiply(a, Multiply(b, c, m), m),
				"associativity, modulus 0x%02X", m)
			assert.Equal(t,
				Add(Multiply(a, b, m), Multiply(a, c, m)),
				Multiply(a, Add(b, c), m),
				"distributivity, modulus 0x%02X", m)
		}
	}
}

func TestInverse(t *testing.T) {
	for _, m := range referenceIrreducibles {
		for a := 1; a < 256; a++ {
			inv := Inverse(byte(a), m)
			require.Equal(t, byte(1), Multiply(byte(a), inv, m), "a=0x%02X modulus=0x%02X", a, m)
		}
		assert.Equal(t, byte(0), Inverse(0, m))
	}

	assert.Equal(t, byte(0xCA), Inverse(0x53, DefaultModulus))
}

func TestDivide(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 1; b < 256; b++ {
			q := Divide(byte(a), byte(b), DefaultModulus)
			require.Equal(t, byte(a), Multiply(q, byte(b), DefaultModulus))
		}
	}

	assert.Panics(t, func() { Divide(1, 0, DefaultModulus) })
}

func TestPow(t *testing.T) {
	assert.Equal(t, byte(1), Pow(0x00, 0, DefaultModulus))
	assert.Equal(t, byte(0x57), Pow(0x57, 1, DefaultModulus))
	assert.Equal(t, Multiply(0x57, 0x57, DefaultModulus), Pow(0x57, 2, DefaultModulus))
	// The multiplicative group has order 255.
	for a := 1; a < 256; a++ {
		require.Equal(t, byte(1), Pow(byte(a), 255, DefaultModulus))
	}
}

func TestFindAllIrreduciblePolynomials(t *testing.T) {
	got := FindAllIrreduciblePolynomials()
	assert.Len(t, got, 30)
	assert.Equal(t, referenceIrreducibles, got)
	assert.Contains(t, got, byte(0x1B))
	assert.Contains(t, got, byte(0x8D))
}

func TestIsIrreducible(t *testing.T) {
	tests := []struct {
		name string
		poly byte
		want bool
	}{
		{"Rijndael polynomial", 0x1B, true},
		{"0x8D", 0x8D, true},
		{"even polynomial", 0x1A, false},
		{"x^8 + 1", 0x01, false},
		{"divisible by x + 1", 0x07, false},
		{"x^8 + x^4 + x^3 + x^2 + 1", 0x1D, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIrreducible(tt.poly))
		})
	}
}

func TestValidateModulus(t *testing.T) {
	require.NoError(t, ValidateModulus(DefaultModulus))

	err := ValidateModulus(0x01)
	require.Error(t, err)

	var reducible *ReducibleModulusError
	require.True(t, errors.As(err, &reducible))
	assert.Equal(t, byte(0x01), reducible.Modulus)
	assert.ErrorIs(t, err, cryptoerr.ErrConfiguration)
	assert.Contains(t, err.Error(), "0x101")
}
