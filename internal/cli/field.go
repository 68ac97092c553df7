package cli

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/Davincible/rijndael/internal/validation"
	"github.com/Davincible/rijndael/pkg/crypto/gf256"
	"github.com/Davincible/rijndael/pkg/crypto/gf2poly"
	"github.com/spf13/cobra"
)

func NewFieldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "GF(2^8) and GF(2)[x] arithmetic",
		Long: `Inspect the finite fields the cipher is built on: list the 30 moduli
that define GF(2^8), multiply and invert bytes under a chosen modulus, and
test or factor binary polynomials of any degree.`,
	}

	cmd.AddCommand(
		newFieldListCommand(),
		newFieldMultiplyCommand(),
		newFieldInverseCommand(),
		newFieldCheckCommand(),
		newFieldFactorCommand(),
	)

	return cmd
}

// parseElement reads a field element written as hex, with or without 0x.
func parseElement(s string) (byte, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid field element %q: expected one hex byte", s)
	}
	return byte(v), nil
}

func modulusPoly(m byte) string {
	return gf2poly.Format(new(big.Int).SetUint64(0x100 | uint64(m)))
}

type modulusInfo struct {
	Modulus    string `json:"modulus"`
	Polynomial string `json:"polynomial"`
}

func newFieldListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every modulus usable for the S-box",
		RunE: func(cmd *cobra.Command, args []string) error {
			moduli := gf256.FindAllIrreduciblePolynomials()
			infos := make([]modulusInfo, len(moduli))
			for i, m := range moduli {
				infos[i] = modulusInfo{Modulus: validation.FormatModulus(m), Polynomial: modulusPoly(m)}
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), infos)
			}

			w := cmd.OutOrStdout()
			headingColor.Fprintf(w, "%d irreducible moduli of degree 8:\n", len(infos))
			for _, info := range infos {
				fmt.Fprintf(w, "  %s  %s\n", info.Modulus, info.Polynomial)
			}
			return nil
		},
	}
}

func newFieldMultiplyCommand() *cobra.Command {
	var modulus string

	cmd := &cobra.Command{
		Use:     "multiply A B",
		Short:   "Multiply two bytes in GF(2^8)",
		Example: `  rijndael field multiply 57 83          # c1
  rijndael field multiply 57 83 --modulus 0x1D`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := validation.ParseModulus(modulus)
			if err != nil {
				return err
			}
			a, err := parseElement(args[0])
			if err != nil {
				return err
			}
			b, err := parseElement(args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%02x\n", gf256.Multiply(a, b, m))
			return nil
		},
	}

	cmd.Flags().StringVar(&modulus, "modulus", "", "Field modulus (default 0x1B)")

	return cmd
}

func newFieldInverseCommand() *cobra.Command {
	var modulus string

	cmd := &cobra.Command{
		Use:   "inverse A",
		Short: "Multiplicative inverse of a byte in GF(2^8)",
		Long:  `Multiplicative inverse of a byte. Zero has no inverse and maps to zero, as in the S-box.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := validation.ParseModulus(modulus)
			if err != nil {
				return err
			}
			a, err := parseElement(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%02x\n", gf256.Inverse(a, m))
			return nil
		},
	}

	cmd.Flags().StringVar(&modulus, "modulus", "", "Field modulus (default 0x1B)")

	return cmd
}

func newFieldCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check POLYNOMIAL",
		Short: "Test whether a binary polynomial is irreducible",
		Example: `  rijndael field check "x^8 + x^4 + x^3 + x + 1"
  rijndael field check 0x11C`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gf2poly.Parse(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			irreducible := gf2poly.IsIrreducible(p)
			if jsonOutput(cmd) {
				return writeJSON(w, map[string]any{
					"polynomial":  gf2poly.Format(p),
					"degree":      gf2poly.Degree(p),
					"irreducible": irreducible,
				})
			}

			if irreducible {
				successColor.Fprintf(w, "✓ %s is irreducible\n", gf2poly.Format(p))
			} else {
				failureColor.Fprintf(w, "✗ %s is reducible\n", gf2poly.Format(p))
			}
			return nil
		},
	}
}

type factorJSON struct {
	Polynomial   string `json:"polynomial"`
	Multiplicity int    `json:"multiplicity"`
}

func newFieldFactorCommand() *cobra.Command {
	var opts gf2poly.Options

	cmd := &cobra.Command{
		Use:   "factor POLYNOMIAL",
		Short: "Factor a binary polynomial into irreducibles",
		Long: `Factor a polynomial over GF(2). Factors the randomized splitting step
could not separate within --trials attempts are marked with '?'.`,
		Example: `  rijndael field factor "x^8 + x^4 + x^3 + x^2 + 1"
  rijndael field factor 0b110000001 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gf2poly.Parse(args[0])
			if err != nil {
				return err
			}

			f, err := gf2poly.Factorize(p, &opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				convert := func(list []gf2poly.Factor) []factorJSON {
					out := make([]factorJSON, len(list))
					for i, factor := range list {
						out[i] = factorJSON{Polynomial: gf2poly.Format(factor.Poly), Multiplicity: factor.Multiplicity}
					}
					return out
				}
				return writeJSON(w, map[string]any{
					"polynomial": gf2poly.Format(p),
					"complete":   f.Complete(),
					"factors":    convert(f.Factors),
					"unresolved": convert(f.Unresolved),
				})
			}

			fmt.Fprintf(w, "%s = %s\n", gf2poly.Format(p), f)
			if !f.Complete() {
				noticeColor.Fprintln(w, "some factors are unresolved, retry with more --trials or another --seed")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.MaxTrials, "trials", gf2poly.DefaultMaxTrials, "Random splitting attempts per factor group")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Seed for the splitting PRNG")

	return cmd
}
