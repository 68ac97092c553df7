package cli

import (
	"fmt"

	"github.com/Davincible/rijndael/pkg/crypto/modes"
	"github.com/spf13/cobra"
)

type modeInfo struct {
	Name       string `json:"name"`
	Stream     bool   `json:"stream"`
	RequiresIV bool   `json:"requires_iv"`
}

type modesListing struct {
	Modes    []modeInfo `json:"modes"`
	Paddings []string   `json:"paddings"`
}

func listModes() modesListing {
	var listing modesListing
	for _, m := range modes.Modes() {
		listing.Modes = append(listing.Modes, modeInfo{
			Name:       m.String(),
			Stream:     m.IsStream(),
			RequiresIV: m.RequiresIV(),
		})
	}
	for _, p := range modes.Paddings() {
		listing.Paddings = append(listing.Paddings, p.String())
	}
	return listing
}

func NewModesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the supported modes of operation and padding schemes",
		Long: `List the supported modes of operation and padding schemes.

Stream modes keep the ciphertext the same length as the plaintext and
ignore the padding setting. Every mode except ECB needs an IV, which
'rijndael encrypt' generates and stores in the envelope header.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			listing := listModes()
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), listing)
			}

			w := cmd.OutOrStdout()
			headingColor.Fprintln(w, "Modes:")
			for _, m := range listing.Modes {
				var notes string
				if m.Stream {
					notes = "stream"
				} else {
					notes = "block, padded"
				}
				if m.RequiresIV {
					notes += ", IV"
				}
				fmt.Fprintf(w, "  %-12s %s\n", m.Name, notes)
			}
			fmt.Fprintln(w)
			headingColor.Fprintln(w, "Paddings:")
			for _, p := range listing.Paddings {
				fmt.Fprintf(w, "  %s\n", p)
			}
			return nil
		},
	}
}
