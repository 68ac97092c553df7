package validation

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/Davincible/rijndael/pkg/crypto/gf256"
	"github.com/Davincible/rijndael/pkg/crypto/gf2poly"
)

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// MaxChunkSize caps the stream chunk size accepted from flags and config.
const MaxChunkSize = 64 << 20

func ValidateHex(input string) error {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return fmt.Errorf("hex string cannot be empty")
	}

	if len(input)%2 != 0 {
		return fmt.Errorf("hex string must have even length")
	}

	if !hexPattern.MatchString(input) {
		return fmt.Errorf("invalid hex characters")
	}

	return nil
}

// ValidateBits checks a key or block size given in bits.
func ValidateBits(what string, bits int) error {
	switch bits {
	case 128, 192, 256:
		return nil
	default:
		return fmt.Errorf("%s size must be 128, 192 or 256 bits (got %d)", what, bits)
	}
}

// ParseHexKey decodes a hex master key and checks it is keyBits long.
func ParseHexKey(input string, keyBits int) ([]byte, error) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "0x")
	if err := ValidateHex(input); err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	if err := ValidateBits("key", keyBits); err != nil {
		return nil, err
	}

	key, err := hex.DecodeString(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	if len(key)*8 != keyBits {
		return nil, fmt.Errorf("key is %d bits, expected %d", len(key)*8, keyBits)
	}
	return key, nil
}

// ParseModulus reads a GF(2^8) modulus and checks it is irreducible.
// Accepted forms: "1B" or "0x1B" (x^8 implied), "0x11B", "0b100011011" and
// "x^8 + x^4 + x^3 + x + 1". Only the hex forms may leave out x^8. An empty
// string selects the default.
func ParseModulus(input string) (byte, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return gf256.DefaultModulus, nil
	}

	lower := strings.ToLower(input)
	if !strings.HasPrefix(lower, "0b") && !strings.Contains(lower, "x") {
		lower = "0x" + lower
	}
	short := strings.HasPrefix(lower, "0x")

	p, err := gf2poly.Parse(lower)
	if err != nil {
		return 0, fmt.Errorf("invalid modulus %q: %w", input, err)
	}

	if deg := gf2poly.Degree(p); deg > 8 || (deg < 8 && !short) {
		return 0, fmt.Errorf("modulus %q has degree %d, expected 8", input, deg)
	}

	modulus := byte(p.Uint64() & 0xFF)
	if err := gf256.ValidateModulus(modulus); err != nil {
		return 0, err
	}
	return modulus, nil
}

// FormatModulus renders a modulus the way ParseModulus reads it back.
func FormatModulus(m byte) string {
	return fmt.Sprintf("0x%02X", m)
}

func ValidateMnemonic(words string) error {
	words = strings.TrimSpace(words)
	if words == "" {
		return fmt.Errorf("mnemonic cannot be empty")
	}

	wordList := strings.Fields(words)
	switch len(wordList) {
	case 12, 18, 24:
	default:
		return fmt.Errorf("mnemonic must have 12, 18 or 24 words (got %d)", len(wordList))
	}

	for i, word := range wordList {
		if len(word) < 3 || len(word) > 8 {
			return fmt.Errorf("word %d has invalid length: %s", i+1, word)
		}

		for _, ch := range strings.ToLower(word) {
			if ch < 'a' || ch > 'z' {
				return fmt.Errorf("word %d contains invalid characters: %s", i+1, word)
			}
		}
	}

	return nil
}

func ValidateSplitParams(parts, threshold int) error {
	if parts < 2 || parts > 255 {
		return fmt.Errorf("parts must be between 2 and 255 (got %d)", parts)
	}

	if threshold < 2 || threshold > parts {
		return fmt.Errorf("threshold must be between 2 and %d (got %d)", parts, threshold)
	}

	return nil
}

func ValidatePassphrase(passphrase string, minLength int) error {
	if len(passphrase) < minLength {
		return fmt.Errorf("passphrase must be at least %d characters", minLength)
	}
	if len(passphrase) > 256 {
		return fmt.Errorf("passphrase too long (max 256 characters)")
	}

	for i, ch := range passphrase {
		if ch == 0 {
			return fmt.Errorf("passphrase contains null character at position %d", i)
		}
	}

	return nil
}

func ValidateChunkSize(size int) error {
	if size < 0 || size > MaxChunkSize {
		return fmt.Errorf("chunk size must be between 0 and %d bytes (got %d)", MaxChunkSize, size)
	}
	return nil
}

func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.Join(lines, "\n")
}
