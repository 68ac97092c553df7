package rijndael

import "github.com/Davincible/rijndael/pkg/crypto/gf256"

// Multiplication tables for the MixColumns coefficients, always over the
// Rijndael polynomial.
var mul2, mul3, mul9, mul11, mul13, mul14 [256]byte

func init() {
	for i := 0; i < 256; i++ {
		b := byte(i)
		mul2[i] = gf256.Multiply(b, 0x02, gf256.DefaultModulus)
		mul3[i] = gf256.Multiply(b, 0x03, gf256.DefaultModulus)
		mul9[i] = gf256.Multiply(b, 0x09, gf256.DefaultModulus)
		mul11[i] = gf256.Multiply(b, 0x0B, gf256.DefaultModulus)
		mul13[i] = gf256.Multiply(b, 0x0D, gf256.DefaultModulus)
		mul14[i] = gf256.Multiply(b, 0x0E, gf256.DefaultModulus)
	}
}

// state is the 4 x Nb byte matrix; s[row][col]. Only the first nb columns are used.
type state [4][8]byte

func (s *state) load(in []byte, nb int) {
	for c := 0; c < nb; c++ {
		for r := 0; r < 4; r++ {
			s[r][c] = in[4*c+r]
		}
	}
}

func (s *state) store(out []byte, nb int) {
	for c := 0; c < nb; c++ {
		for r := 0; r < 4; r++ {
			out[4*c+r] = s[r][c]
		}
	}
}

func (s *state) addRoundKey(rk []byte, nb int) {
	for c := 0; c < nb; c++ {
		for r := 0; r < 4; r++ {
			s[r][c] ^= rk[4*c+r]
		}
	}
}

func (s *state) subBytes(table *[256]byte, nb int) {
	for r := 0; r < 4; r++ {
		for c := 0; c < nb; c++ {
			s[r][c] = table[s[r][c]]
		}
	}
}

func (s *state) shiftRows(shifts [4]int, nb int) {
	var row [8]byte
	for r := 1; r < 4; r++ {
		for c := 0; c < nb; c++ {
			row[c] = s[r][(c+shifts[r])%nb]
		}
		copy(s[r][:nb], row[:nb])
	}
}

func (s *state) invShiftRows(shifts [4]int, nb int) {
	var row [8]byte
	for r := 1; r < 4; r++ {
		for c := 0; c < nb; c++ {
			row[(c+shifts[r])%nb] = s[r][c]
		}
		copy(s[r][:nb], row[:nb])
	}
}

func (s *state) mixColumns(nb int) {
	for c := 0; c < nb; c++ {
		a0, a1, a2, a3 := s[0][c], s[1][c], s[2][c], s[3][c]
		s[0][c] = mul2[a0] ^ mul3[a1] ^ a2 ^ a3
		s[1][c] = a0 ^ mul2[a1] ^ mul3[a2] ^ a3
		s[2][c] = a0 ^ a1 ^ mul2[a2] ^ mul3[a3]
		s[3][c] = mul3[a0] ^ a1 ^ a2 ^ mul2[a3]
	}
}

func (s *state) invMixColumns(nb int) {
	for c := 0; c < nb; c++ {
		a0, a1, a2, a3 := s[0][c], s[1][c], s[2][c], s[3][c]
		s[0][c] = mul14[a0] ^ mul11[a1] ^ mul13[a2] ^ mul9[a3]
		s[1][c] = mul9[a0] ^ mul14[a1] ^ mul11[a2] ^ mul13[a3]
		s[2][c] = mul13[a0] ^ mul9[a1] ^ mul14[a2] ^ mul11[a3]
		s[3][c] = mul11[a0] ^ mul13[a1] ^ mul9[a2] ^ mul14[a3]
	}
}
