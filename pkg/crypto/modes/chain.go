package modes

import (
	"crypto/subtle"
	"encoding/binary"
	"math/rand/v2"

	"github.com/Davincible/rijndael/pkg/secure"
)

// deltaStream is the second PCG seed word for RandomDelta masks.
const deltaStream = 0x9E3779B97F4A7C15

// chainState is the feedback carried between blocks of one operation. A
// fresh state is seeded from the IV at the start of every top-level call.
type chainState struct {
	iv       []byte
	feedback []byte // CBC, CFB, OFB
	// PCBC keeps the previous plaintext and ciphertext separately.
	prevPlain  []byte
	prevCipher []byte
	// index is the number of blocks processed so far, partial ones included.
	index uint64
}

func newChainState(iv []byte, blockSize int) *chainState {
	st := &chainState{
		iv:         iv,
		feedback:   make([]byte, blockSize),
		prevPlain:  make([]byte, blockSize),
		prevCipher: make([]byte, blockSize),
	}
	copy(st.feedback, iv)
	copy(st.prevCipher, iv)
	return st
}

func (st *chainState) wipe() {
	secure.Zero(st.feedback)
	secure.Zero(st.prevPlain)
	secure.Zero(st.prevCipher)
}

// counterBlock returns the CTR input for block index: the IV with its low
// eight bytes read as a big-endian integer and advanced by index.
func counterBlock(dst, iv []byte, index uint64) {
	copy(dst, iv)
	low := dst[len(dst)-8:]
	binary.BigEndian.PutUint64(low, binary.BigEndian.Uint64(low)+index)
}

// deltaBlock fills dst with the RandomDelta mask for block index. The
// generator is seeded by the low four IV bytes XOR the block index.
func deltaBlock(dst, iv []byte, index uint64) {
	seed := binary.BigEndian.Uint32(iv[len(iv)-4:]) ^ uint32(index)
	rng := rand.New(rand.NewPCG(uint64(seed), deltaStream))
	for i := 0; i < len(dst); i += 8 {
		binary.LittleEndian.PutUint64(dst[i:], rng.Uint64())
	}
}

func xorBytes(dst, a, b []byte) {
	subtle.XORBytes(dst, a, b)
}
