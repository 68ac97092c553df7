package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Davincible/rijndael/internal/validation"
	"github.com/Davincible/rijndael/pkg/config"
	"github.com/Davincible/rijndael/pkg/crypto/mnemonic"
	"github.com/Davincible/rijndael/pkg/envelope"
	"github.com/Davincible/rijndael/pkg/secure"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// appFs is the filesystem every command reads and writes. Tests swap in a
// memory filesystem.
var appFs afero.Fs = afero.NewOsFs()

// loadConfig reads and validates the CLI configuration.
func loadConfig() (*config.Config, error) {
	cm, err := config.NewConfigManager(appFs)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cm.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cm.Path(), err)
	}

	cfg := cm.GetConfig()
	if !cfg.UI.UseColor {
		color.NoColor = true
	}
	return cfg, nil
}

// readSecret prompts on stderr and reads one line from the command's input,
// without echo when that input is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		defer secure.Zero(secret)
		return string(secret), nil
	}

	// Fallback for non-terminal
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return validation.SanitizeInput(line), nil
}

// keyFlags are the ways a master key can be given on the command line.
type keyFlags struct {
	keyHex     string
	words      string
	passphrase string
}

func (f *keyFlags) register(cmd *cobra.Command, withPassphrase bool) {
	cmd.Flags().StringVar(&f.keyHex, "key-hex", "", "Master key as hex")
	cmd.Flags().StringVar(&f.words, "mnemonic", "", "Master key as a BIP-39 phrase")
	if withPassphrase {
		cmd.Flags().StringVar(&f.passphrase, "passphrase", "", "Derive the key from a passphrase (\"-\" to prompt)")
		cmd.MarkFlagsMutuallyExclusive("key-hex", "mnemonic", "passphrase")
	} else {
		cmd.MarkFlagsMutuallyExclusive("key-hex", "mnemonic")
	}
}

// rawKey returns the key given by --key-hex or --mnemonic, or nil when
// neither was set. keyBits of zero accepts any valid size.
func (f *keyFlags) rawKey(keyBits int) ([]byte, error) {
	switch {
	case f.keyHex != "":
		hexKey := strings.TrimPrefix(validation.SanitizeInput(f.keyHex), "0x")
		bits := keyBits
		if bits == 0 {
			bits = len(hexKey) * 4
		}
		return validation.ParseHexKey(hexKey, bits)

	case f.words != "":
		words := validation.SanitizeInput(f.words)
		if err := validation.ValidateMnemonic(words); err != nil {
			return nil, fmt.Errorf("invalid mnemonic: %w", err)
		}
		m, err := mnemonic.FromWords(words)
		if err != nil {
			return nil, fmt.Errorf("invalid mnemonic: %w", err)
		}
		key, err := m.Key()
		if err != nil {
			return nil, err
		}
		if keyBits != 0 && len(key)*8 != keyBits {
			secure.Zero(key)
			return nil, fmt.Errorf("mnemonic encodes a %d-bit key, expected %d", len(key)*8, keyBits)
		}
		return key, nil
	}
	return nil, nil
}

func (f *keyFlags) readPassphrase(cmd *cobra.Command, minLength int) (string, error) {
	pass := f.passphrase
	if pass == "" || pass == "-" {
		var err error
		pass, err = readSecret(cmd, "Enter passphrase: ")
		if err != nil {
			return "", err
		}
	}
	if err := validation.ValidatePassphrase(pass, minLength); err != nil {
		return "", err
	}
	return pass, nil
}

func newSealer(cfg *config.Config, workers, chunkSize int) (*envelope.Sealer, error) {
	perm, err := cfg.FileMode()
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}
	return &envelope.Sealer{
		Fs:        appFs,
		Perm:      perm,
		Workers:   workers,
		ChunkSize: chunkSize,
		Logger:    slog.Default(),
	}, nil
}

// transform runs fileFn when both ends are paths and streamFn otherwise,
// with "-" standing for stdin or stdout.
func transform(cmd *cobra.Command, input, output string, perm os.FileMode, fileFn func() error, streamFn func(io.Writer, io.Reader) error) error {
	if input != "-" && output != "-" {
		return fileFn()
	}

	var in io.Reader = cmd.InOrStdin()
	if input != "-" {
		f, err := appFs.Open(input)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = cmd.OutOrStdout()
	if output != "-" {
		f, err := appFs.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return streamFn(out, in)
}

// statusWriter is where human-readable status goes: stdout, unless stdout
// carries the data.
func statusWriter(cmd *cobra.Command, output string) io.Writer {
	if output == "-" {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

func jsonOutput(cmd *cobra.Command) bool {
	outputJSON, _ := cmd.Flags().GetBool("json")
	return outputJSON
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	headingColor = color.New(color.FgCyan, color.Bold)
	noticeColor  = color.New(color.FgYellow)
	failureColor = color.New(color.FgRed, color.Bold)
)
