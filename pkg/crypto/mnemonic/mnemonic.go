// Package mnemonic encodes cipher master keys as BIP-39 word lists so they
// can be written down and typed back in.
package mnemonic

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// Mnemonic is the word form of a 128, 192 or 256-bit master key.
type Mnemonic struct {
	words []string
}

// Generate returns a mnemonic for a fresh random key of keyBits bits.
func Generate(keyBits int) (*Mnemonic, error) {
	if _, err := WordCountForKeyBits(keyBits); err != nil {
		return nil, err
	}

	entropy, err := bip39.NewEntropy(keyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}

	return FromKey(entropy)
}

// FromKey encodes key. Its length must be a Rijndael key size.
func FromKey(key []byte) (*Mnemonic, error) {
	if _, err := WordCountForKeyBits(len(key) * 8); err != nil {
		return nil, err
	}

	phrase, err := bip39.NewMnemonic(key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode key: %w", err)
	}

	return &Mnemonic{
		words: strings.Fields(phrase),
	}, nil
}

// FromWords parses a phrase and checks its BIP-39 checksum.
func FromWords(phrase string) (*Mnemonic, error) {
	words := strings.Fields(strings.ToLower(phrase))
	if _, err := KeyBitsFromWordCount(len(words)); err != nil {
		return nil, err
	}

	normalized := strings.Join(words, " ")
	if !bip39.IsMnemonicValid(normalized) {
		return nil, fmt.Errorf("invalid mnemonic phrase")
	}

	return &Mnemonic{words: words}, nil
}

func (m *Mnemonic) Words() string {
	return strings.Join(m.words, " ")
}

func (m *Mnemonic) WordList() []string {
	result := make([]string, len(m.words))
	copy(result, m.words)
	return result
}

func (m *Mnemonic) WordCount() int {
	return len(m.words)
}

// Key decodes the master key.
func (m *Mnemonic) Key() ([]byte, error) {
	key, err := bip39.EntropyFromMnemonic(m.Words())
	if err != nil {
		return nil, fmt.Errorf("failed to decode key from mnemonic: %w", err)
	}
	return key, nil
}

// Fingerprint is a short public identifier of key: the first four bytes of
// its SHA-256, hex encoded.
func Fingerprint(key []byte) string {
	h := sha256.Sum256(key)
	return hex.EncodeToString(h[:4])
}

// WordCountForKeyBits maps a key size to its phrase length.
func WordCountForKeyBits(bits int) (int, error) {
	switch bits {
	case 128:
		return 12, nil
	case 192:
		return 18, nil
	case 256:
		return 24, nil
	default:
		return 0, fmt.Errorf("key size must be 128, 192 or 256 bits (got %d)", bits)
	}
}

// KeyBitsFromWordCount maps a phrase length back to its key size.
func KeyBitsFromWordCount(count int) (int, error) {
	switch count {
	case 12:
		return 128, nil
	case 18:
		return 192, nil
	case 24:
		return 256, nil
	default:
		return 0, fmt.Errorf("mnemonic must have 12, 18 or 24 words (got %d)", count)
	}
}
