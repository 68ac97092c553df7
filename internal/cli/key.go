package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Davincible/rijndael/internal/validation"
	"github.com/Davincible/rijndael/pkg/crypto/keyshare"
	"github.com/Davincible/rijndael/pkg/crypto/mnemonic"
	"github.com/Davincible/rijndael/pkg/secure"
	"github.com/spf13/cobra"
)

func NewKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Generate, split and combine master keys",
		Long: `Master keys are 128, 192 or 256 random bits. They can be written as
hex or as a BIP-39 phrase (12, 18 or 24 words) and split into Shamir shares
so that any threshold of them rebuilds the key.`,
	}

	cmd.AddCommand(
		newKeyGenerateCommand(),
		newKeySplitCommand(),
		newKeyCombineCommand(),
	)

	return cmd
}

// KeyInfo is the JSON form of a master key.
type KeyInfo struct {
	Bits        int    `json:"bits"`
	Hex         string `json:"hex"`
	Mnemonic    string `json:"mnemonic"`
	Fingerprint string `json:"fingerprint"`
}

func newKeyInfo(key []byte) (*KeyInfo, error) {
	m, err := mnemonic.FromKey(key)
	if err != nil {
		return nil, err
	}
	return &KeyInfo{
		Bits:        len(key) * 8,
		Hex:         hex.EncodeToString(key),
		Mnemonic:    m.Words(),
		Fingerprint: mnemonic.Fingerprint(key),
	}, nil
}

func printKeyInfo(cmd *cobra.Command, title string, info *KeyInfo) {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	headingColor.Fprintf(w, "=== %s ===\n", title)
	fmt.Fprintf(w, "Bits:        %d\n", info.Bits)
	fmt.Fprintf(w, "Hex:         %s\n", info.Hex)
	fmt.Fprintf(w, "Fingerprint: %s\n", info.Fingerprint)
	fmt.Fprintln(w)
	noticeColor.Fprintln(w, "Mnemonic:")
	words := strings.Fields(info.Mnemonic)
	for i := 0; i < len(words); i += 6 {
		end := min(i+6, len(words))
		fmt.Fprintf(w, "  %2d. %s\n", i+1, strings.Join(words[i:end], " "))
	}
	fmt.Fprintln(w)
}

func newKeyGenerateCommand() *cobra.Command {
	var bits int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random master key",
		Example: `  rijndael key generate
  rijndael key generate --bits 128 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if bits == 0 {
				bits = cfg.Defaults.KeyBits
			}
			if err := validation.ValidateBits("key", bits); err != nil {
				return err
			}

			m, err := mnemonic.Generate(bits)
			if err != nil {
				return fmt.Errorf("failed to generate key: %w", err)
			}
			key, err := m.Key()
			if err != nil {
				return err
			}
			defer secure.Zero(key)

			info, err := newKeyInfo(key)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			printKeyInfo(cmd, "NEW MASTER KEY", info)
			failureColor.Fprintln(cmd.OutOrStdout(), "⚠️  Anyone holding this key can decrypt your envelopes. Store it offline.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&bits, "bits", "b", 0, "Key size in bits (128, 192, 256)")

	return cmd
}

// SplitResult is the JSON form of a split key.
type SplitResult struct {
	Threshold   int      `json:"threshold"`
	Parts       int      `json:"parts"`
	Fingerprint string   `json:"fingerprint"`
	Shares      []string `json:"shares"`
}

func newKeySplitCommand() *cobra.Command {
	var (
		keys      keyFlags
		parts     int
		threshold int
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a master key into Shamir shares",
		Example: `  rijndael key split --key-hex 000102...0f --parts 5 --threshold 3
  rijndael key split --mnemonic "legal winner thank ..." --parts 3 --threshold 2 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateSplitParams(parts, threshold); err != nil {
				return err
			}

			key, err := keys.rawKey(0)
			if err != nil {
				return err
			}
			if key == nil {
				input, err := readSecret(cmd, "Enter master key (hex or mnemonic): ")
				if err != nil {
					return err
				}
				if strings.Contains(input, " ") {
					keys.words = input
				} else {
					keys.keyHex = input
				}
				if key, err = keys.rawKey(0); err != nil {
					return err
				}
			}
			defer secure.Zero(key)

			shares, err := keyshare.Split(key, keyshare.Config{Parts: parts, Threshold: threshold})
			if err != nil {
				return err
			}

			result := SplitResult{
				Threshold:   threshold,
				Parts:       parts,
				Fingerprint: mnemonic.Fingerprint(key),
				Shares:      make([]string, len(shares)),
			}
			for i, share := range shares {
				result.Shares[i] = share.Encode()
				share.Wipe()
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w)
			headingColor.Fprintln(w, "=== KEY SHARES ===")
			successColor.Fprintf(w, "Created %d shares, any %d rebuild the key (fingerprint %s)\n\n",
				parts, threshold, result.Fingerprint)
			for i, share := range result.Shares {
				fmt.Fprintf(w, "Share %d: %s\n", i+1, share)
			}
			fmt.Fprintln(w)
			failureColor.Fprintln(w, "⚠️  Keep each share in a different place.")
			return nil
		},
	}

	keys.register(cmd, false)
	cmd.Flags().IntVarP(&parts, "parts", "n", 5, "Number of shares")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 3, "Shares required to rebuild the key")

	return cmd
}

func newKeyCombineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine SHARE SHARE [SHARE...]",
		Short: "Rebuild a master key from Shamir shares",
		Long: `Rebuild a master key from hex shares produced by 'rijndael key split'.
Fewer shares than the threshold give a different key without an error, so
compare the fingerprint with the one printed at split time.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares := make([]keyshare.Share, len(args))
			for i, arg := range args {
				share, err := keyshare.Parse(arg, i+1)
				if err != nil {
					return err
				}
				shares[i] = share
			}

			key, err := keyshare.Combine(shares)
			if err != nil {
				return err
			}
			defer secure.Zero(key)

			info, err := newKeyInfo(key)
			if err != nil {
				return fmt.Errorf("combined secret is not a master key: %w", err)
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			printKeyInfo(cmd, "RECOVERED MASTER KEY", info)
			return nil
		},
	}

	return cmd
}
