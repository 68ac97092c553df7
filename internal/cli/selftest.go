package cli

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/Davincible/rijndael/pkg/crypto/gf256"
	"github.com/Davincible/rijndael/pkg/crypto/modes"
	"github.com/Davincible/rijndael/pkg/crypto/rijndael"
	"github.com/spf13/cobra"
)

// SelfTestResult is one check run by 'rijndael selftest'.
type SelfTestResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

var knownAnswers = []struct {
	name, key, plaintext, ciphertext string
}{
	{
		"FIPS-197 C.1 AES-128",
		"000102030405060708090a0b0c0d0e0f",
		"00112233445566778899aabbccddeeff",
		"69c4e0d86a7b0430d8cdb78070b4c55a",
	},
	{
		"FIPS-197 C.2 AES-192",
		"000102030405060708090a0b0c0d0e0f1011121314151617",
		"00112233445566778899aabbccddeeff",
		"dda97ca4864cdfe06eaf70a0ec0d7191",
	},
	{
		"FIPS-197 C.3 AES-256",
		"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		"00112233445566778899aabbccddeeff",
		"8ea2b7ca516745bfeafc49904b496089",
	},
}

func checkKnownAnswer(key, plaintext, want string) error {
	k, _ := hex.DecodeString(key)
	p, _ := hex.DecodeString(plaintext)

	c, err := rijndael.New(len(k), rijndael.Size128)
	if err != nil {
		return err
	}
	if err := c.SetKey(k); err != nil {
		return err
	}

	out := make([]byte, rijndael.Size128)
	if err := c.EncryptBlock(out, p); err != nil {
		return err
	}
	if got := hex.EncodeToString(out); got != want {
		return fmt.Errorf("got %s, want %s", got, want)
	}

	back := make([]byte, rijndael.Size128)
	if err := c.DecryptBlock(back, out); err != nil {
		return err
	}
	if !bytes.Equal(back, p) {
		return fmt.Errorf("decryption does not invert encryption")
	}
	return nil
}

// checkRoundTrip encrypts and decrypts a fixed message in every mode at
// one key/block size under modulus.
func checkRoundTrip(keySize, blockSize int, modulus byte) error {
	message := make([]byte, 5*blockSize+3)
	for i := range message {
		message[i] = byte(i * 31)
	}
	key := make([]byte, keySize)
	iv := make([]byte, blockSize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	for i := range iv {
		iv[i] = byte(0xF0 - i)
	}

	for _, mode := range modes.Modes() {
		block, err := rijndael.NewWithModulus(keySize, blockSize, modulus)
		if err != nil {
			return err
		}
		ctx, err := modes.New(block, key, modes.Config{Mode: mode, Padding: modes.PKCS7, IV: iv, Workers: 2})
		if err != nil {
			return fmt.Errorf("%v: %w", mode, err)
		}

		ciphertext, err := ctx.Encrypt(message)
		if err != nil {
			return fmt.Errorf("%v: %w", mode, err)
		}
		plaintext, err := ctx.Decrypt(ciphertext)
		if err != nil {
			return fmt.Errorf("%v: %w", mode, err)
		}
		if !bytes.Equal(plaintext, message) {
			return fmt.Errorf("%v: round trip mismatch", mode)
		}
	}
	return nil
}

// RunSelfTests runs the built-in checks and returns one result per check.
func RunSelfTests() []SelfTestResult {
	var results []SelfTestResult
	record := func(name string, err error) {
		r := SelfTestResult{Name: name, Passed: err == nil}
		if err != nil {
			r.Detail = err.Error()
		}
		results = append(results, r)
	}

	for _, ka := range knownAnswers {
		record(ka.name, checkKnownAnswer(ka.key, ka.plaintext, ka.ciphertext))
	}

	moduli := gf256.FindAllIrreduciblePolynomials()
	var moduliErr error
	if len(moduli) != 30 {
		moduliErr = fmt.Errorf("found %d irreducible moduli, want 30", len(moduli))
	}
	record("GF(2^8) moduli", moduliErr)

	sizes := []int{rijndael.Size128, rijndael.Size192, rijndael.Size256}
	for _, modulus := range []byte{gf256.DefaultModulus, 0x4D} {
		for _, keySize := range sizes {
			for _, blockSize := range sizes {
				name := fmt.Sprintf("round trip key %d / block %d / modulus 0x%02X", keySize*8, blockSize*8, modulus)
				record(name, checkRoundTrip(keySize, blockSize, modulus))
			}
		}
	}

	return results
}

func NewSelfTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in known-answer and round-trip checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := RunSelfTests()

			failed := 0
			for _, r := range results {
				if !r.Passed {
					failed++
				}
			}

			w := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				if err := writeJSON(w, results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Passed {
						successColor.Fprintf(w, "✓ %s\n", r.Name)
					} else {
						failureColor.Fprintf(w, "✗ %s: %s\n", r.Name, r.Detail)
					}
				}
				fmt.Fprintln(w)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d self-tests failed", failed, len(results))
			}
			if !jsonOutput(cmd) {
				successColor.Fprintf(w, "All %d self-tests passed\n", len(results))
			}
			return nil
		},
	}
}
