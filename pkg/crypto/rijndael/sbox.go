package rijndael

import (
	"fmt"
	"math/bits"

	"github.com/Davincible/rijndael/pkg/crypto/gf256"
)

// affineConstant is the additive constant of the S-box affine map.
const affineConstant = 0x63

// SBox holds the forward and inverse byte substitution tables for one modulus.
type SBox struct {
	modulus byte
	forward [256]byte
	inverse [256]byte
}

// NewSBox derives the substitution tables from the field defined by
// modulus. With gf256.DefaultModulus the result is the AES S-box.
func NewSBox(modulus byte) (*SBox, error) {
	if err := gf256.ValidateModulus(modulus); err != nil {
		return nil, fmt.Errorf("failed to build S-box: %w", err)
	}

	s := &SBox{modulus: modulus}
	for i := 0; i < 256; i++ {
		s.forward[i] = affine(gf256.Inverse(byte(i), modulus))
	}
	// The inverse table only relies on forward being a permutation.
	for i := 0; i < 256; i++ {
		s.inverse[s.forward[i]] = byte(i)
	}

	return s, nil
}

func affine(x byte) byte {
	return x ^
		bits.RotateLeft8(x, 1) ^
		bits.RotateLeft8(x, 2) ^
		bits.RotateLeft8(x, 3) ^
		bits.RotateLeft8(x, 4) ^
		affineConstant
}

// Forward substitutes b through the forward table.
func (s *SBox) Forward(b byte) byte {
	return s.forward[b]
}

// Inverse substitutes b through the inverse table.
func (s *SBox) Inverse(b byte) byte {
	return s.inverse[b]
}

// Modulus returns the field modulus the tables were built from.
func (s *SBox) Modulus() byte {
	return s.modulus
}
