// Package keyshare splits a master key into Shamir shares so that any
// threshold of them recovers it.
package keyshare

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Davincible/rijndael/pkg/secure"
	"github.com/hashicorp/vault/shamir"
)

// Share is one piece of a split key. Data is in the vault shamir layout:
// the y-values followed by a one-byte x-coordinate tag.
type Share struct {
	Index int
	Data  []byte
}

type Config struct {
	Parts     int
	Threshold int
}

func (c *Config) Validate() error {
	if c.Parts < 2 {
		return fmt.Errorf("parts must be at least 2, got %d", c.Parts)
	}
	if c.Threshold < 2 {
		return fmt.Errorf("threshold must be at least 2, got %d", c.Threshold)
	}
	if c.Threshold > c.Parts {
		return fmt.Errorf("threshold (%d) cannot be greater than parts (%d)", c.Threshold, c.Parts)
	}
	if c.Parts > 255 {
		return fmt.Errorf("parts cannot exceed 255, got %d", c.Parts)
	}
	return nil
}

// Split divides key into config.Parts shares.
func Split(key []byte, config Config) ([]Share, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("key cannot be empty")
	}

	parts, err := shamir.Split(key, config.Parts, config.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split key: %w", err)
	}

	shares := make([]Share, len(parts))
	for i, data := range parts {
		shares[i] = Share{Index: i + 1, Data: data}
	}
	return shares, nil
}

// Combine recovers the key. With fewer than threshold shares the result is
// a wrong key rather than an error; callers should check a fingerprint.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("at least 2 shares are required for reconstruction")
	}

	parts := make([][]byte, len(shares))
	for i, share := range shares {
		if len(share.Data) < 2 {
			return nil, fmt.Errorf("share %d is too short", share.Index)
		}
		if len(share.Data) != len(shares[0].Data) {
			return nil, fmt.Errorf("share %d has length %d, expected %d", share.Index, len(share.Data), len(shares[0].Data))
		}
		parts[i] = share.Data
	}

	key, err := shamir.Combine(parts)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}
	return key, nil
}

// Encode renders a share as lowercase hex.
func (s Share) Encode() string {
	return hex.EncodeToString(s.Data)
}

// Wipe zeroes the share data.
func (s Share) Wipe() {
	secure.Zero(s.Data)
}

// Parse decodes a hex share. index is only used in error messages.
func Parse(encoded string, index int) (Share, error) {
	data, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return Share{}, fmt.Errorf("share %d: invalid hex: %w", index, err)
	}
	if len(data) < 2 {
		return Share{}, fmt.Errorf("share %d is too short", index)
	}
	return Share{Index: index, Data: data}, nil
}
