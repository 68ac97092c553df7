package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the command tree. --verbose lowers level to Debug.
func NewRootCommand(version string, level *slog.LevelVar) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rijndael",
		Short: "Configurable Rijndael encryption for files and streams",
		Long: `Rijndael encrypts files and streams with the full Rijndael family:
128, 192 and 256-bit keys and blocks in any combination, a choice of
S-box field modulus, seven modes of operation and four padding schemes.

Features:
- AES-compatible at 128-bit blocks with the default modulus
- ECB, CBC, PCBC, CFB, OFB, CTR and RandomDelta modes
- Zeros, PKCS7, ANSI X9.23 and ISO 10126 padding
- Self-describing envelopes keyed by hex, BIP-39 phrase or passphrase
- Shamir splitting of master keys
- GF(2^8) and GF(2)[x] field tools`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && level != nil {
				level.Set(slog.LevelDebug)
			}
		},
	}

	rootCmd.AddCommand(
		NewEncryptCommand(),
		NewDecryptCommand(),
		NewKeyCommand(),
		NewFieldCommand(),
		NewModesCommand(),
		NewSelfTestCommand(),
	)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")

	return rootCmd
}
