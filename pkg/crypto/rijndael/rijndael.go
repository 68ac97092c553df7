// Package rijndael implements the Rijndael block cipher with 128, 192 and
// 256-bit keys and blocks, over any irreducible GF(2^8) modulus.
//
// With a 128-bit block and the default modulus it is AES as specified in
// FIPS-197. A custom modulus only changes the S-box; MixColumns and the key
// schedule round constants stay on the Rijndael polynomial.
package rijndael

import (
	"fmt"
	"sync"

	"github.com/Davincible/rijndael/pkg/crypto/cryptoerr"
	"github.com/Davincible/rijndael/pkg/crypto/gf256"
)

// Key and block sizes in bytes.
const (
	Size128 = 16
	Size192 = 24
	Size256 = 32
)

var (
	ErrInvalidKeySize   = fmt.Errorf("%w: invalid key size", cryptoerr.ErrInvalidSize)
	ErrInvalidBlockSize = fmt.Errorf("%w: invalid block size", cryptoerr.ErrInvalidSize)
	ErrKeyNotSet        = fmt.Errorf("%w: key has not been set", cryptoerr.ErrNotConfigured)
)

// Cipher is one Rijndael configuration. Block operations only read the
// round keys, so a keyed Cipher may be used from several goroutines;
// SetKey must not run concurrently with them.
type Cipher struct {
	keySize   int
	blockSize int
	modulus   byte
	nb, nk    int
	rounds    int
	shifts    [4]int

	sboxOnce sync.Once
	sbox     *SBox
	sboxErr  error

	roundKeys [][]byte
}

// New returns a Cipher with the default modulus. Sizes are in bytes.
func New(keySize, blockSize int) (*Cipher, error) {
	return NewWithModulus(keySize, blockSize, gf256.DefaultModulus)
}

// NewWithModulus returns a Cipher whose S-box is built over modulus.
func NewWithModulus(keySize, blockSize int, modulus byte) (*Cipher, error) {
	if !validSize(keySize) {
		return nil, fmt.Errorf("%w: %d bytes (must be 16, 24 or 32)", ErrInvalidKeySize, keySize)
	}
	if !validSize(blockSize) {
		return nil, fmt.Errorf("%w: %d bytes (must be 16, 24 or 32)", ErrInvalidBlockSize, blockSize)
	}
	if err := gf256.ValidateModulus(modulus); err != nil {
		return nil, err
	}

	c := &Cipher{
		keySize:   keySize,
		blockSize: blockSize,
		modulus:   modulus,
		nb:        blockSize / 4,
		nk:        keySize / 4,
	}
	c.rounds = Rounds(c.nb, c.nk)
	c.shifts = shiftOffsets(c.nb)

	return c, nil
}

func validSize(n int) bool {
	return n == Size128 || n == Size192 || n == Size256
}

// shiftOffsets returns the left rotation of each state row for nb columns.
func shiftOffsets(nb int) [4]int {
	if nb == 8 {
		return [4]int{0, 1, 3, 4}
	}
	return [4]int{0, 1, 2, 3}
}

func (c *Cipher) BlockSize() int { return c.blockSize }

func (c *Cipher) KeySize() int { return c.keySize }

func (c *Cipher) Modulus() byte { return c.modulus }

func (c *Cipher) Rounds() int { return c.rounds }

// SBox returns the substitution tables, building them on first use.
func (c *Cipher) SBox() (*SBox, error) {
	c.sboxOnce.Do(func() {
		c.sbox, c.sboxErr = NewSBox(c.modulus)
	})
	return c.sbox, c.sboxErr
}

// SetKey expands key and replaces the round key schedule.
func (c *Cipher) SetKey(key []byte) error {
	sbox, err := c.SBox()
	if err != nil {
		return err
	}

	roundKeys, err := ExpandKey(key, c.nb, c.nk, c.rounds, sbox)
	if err != nil {
		return err
	}

	for _, rk := range c.roundKeys {
		clear(rk)
	}
	c.roundKeys = roundKeys
	return nil
}

func (c *Cipher) checkBlock(dst, src []byte) error {
	if c.roundKeys == nil {
		return ErrKeyNotSet
	}
	if len(src) != c.blockSize {
		return fmt.Errorf("%w: input is %d bytes, block is %d", ErrInvalidBlockSize, len(src), c.blockSize)
	}
	if len(dst) < c.blockSize {
		return fmt.Errorf("%w: output is %d bytes, block is %d", ErrInvalidBlockSize, len(dst), c.blockSize)
	}
	return nil
}

// EncryptBlock encrypts one block from src into dst. dst and src may overlap entirely.
func (c *Cipher) EncryptBlock(dst, src []byte) error {
	if err := c.checkBlock(dst, src); err != nil {
		return err
	}

	var s state
	s.load(src, c.nb)
	s.addRoundKey(c.roundKeys[0], c.nb)
	for round := 1; round < c.rounds; round++ {
		s.subBytes(&c.sbox.forward, c.nb)
		s.shiftRows(c.shifts, c.nb)
		s.mixColumns(c.nb)
		s.addRoundKey(c.roundKeys[round], c.nb)
	}
	s.subBytes(&c.sbox.forward, c.nb)
	s.shiftRows(c.shifts, c.nb)
	s.addRoundKey(c.roundKeys[c.rounds], c.nb)
	s.store(dst, c.nb)

	return nil
}

// DecryptBlock decrypts one block from src into dst. dst and src may overlap entirely.
func (c *Cipher) DecryptBlock(dst, src []byte) error {
	if err := c.checkBlock(dst, src); err != nil {
		return err
	}

	var s state
	s.load(src, c.nb)
	s.addRoundKey(c.roundKeys[c.rounds], c.nb)
	for round := c.rounds - 1; round > 0; round-- {
		s.invShiftRows(c.shifts, c.nb)
		s.subBytes(&c.sbox.inverse, c.nb)
		s.addRoundKey(c.roundKeys[round], c.nb)
		s.invMixColumns(c.nb)
	}
	s.invShiftRows(c.shifts, c.nb)
	s.subBytes(&c.sbox.inverse, c.nb)
	s.addRoundKey(c.roundKeys[0], c.nb)
	s.store(dst, c.nb)

	return nil
}
