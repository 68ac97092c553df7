package rijndael

import (
	"fmt"

	"github.com/Davincible/rijndael/pkg/crypto/gf256"
)

// rcon holds the round constants x^(i-1) in GF(2^8) under the Rijndael
// polynomial; rcon[0] is unused. They do not follow a custom modulus.
// The largest index needed is Nb*(Nr+1)/Nk = 8*15/4 = 30.
var rcon [31]byte

func init() {
	rcon[1] = 1
	for i := 2; i < len(rcon); i++ {
		rcon[i] = gf256.Multiply(rcon[i-1], 0x02, gf256.DefaultModulus)
	}
}

// Rounds returns the round count for nb block words and nk key words.
func Rounds(nb, nk int) int {
	switch {
	case nb <= 4 && nk <= 4:
		return 10
	case nb <= 6 && nk <= 6:
		return 12
	default:
		return 14
	}
}

// ExpandKey expands key into rounds+1 round keys of nb words each. The key
// must be 4*nk bytes long.
func ExpandKey(key []byte, nb, nk, rounds int, sbox *SBox) ([][]byte, error) {
	if len(key) != 4*nk {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, 4*nk, len(key))
	}

	total := nb * (rounds + 1)
	w := make([][4]byte, total)
	for i := 0; i < nk; i++ {
		copy(w[i][:], key[4*i:4*i+4])
	}

	for i := nk; i < total; i++ {
		temp := w[i-1]
		switch {
		case i%nk == 0:
			temp = [4]byte{temp[1], temp[2], temp[3], temp[0]}
			subWord(&temp, sbox)
			temp[0] ^= rcon[i/nk]
		case nk > 6 && i%nk == 4:
			subWord(&temp, sbox)
		}
		for j := 0; j < 4; j++ {
			w[i][j] = w[i-nk][j] ^ temp[j]
		}
	}

	roundKeys := make([][]byte, rounds+1)
	for r := range roundKeys {
		rk := make([]byte, 4*nb)
		for c := 0; c < nb; c++ {
			copy(rk[4*c:], w[r*nb+c][:])
		}
		roundKeys[r] = rk
	}

	return roundKeys, nil
}

func subWord(word *[4]byte, sbox *SBox) {
	for j := range word {
		word[j] = sbox.Forward(word[j])
	}
}
