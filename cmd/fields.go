package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/plugins/parser/sdp"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the session-description field code table",
	Long: `Fields prints every field code the classifier knows, with the label it
resolves to. The two overloaded codes (i, a) show both their session-level
and media-level labels; everything else is section-independent.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tLABEL\tMEDIA-LEVEL LABEL")
		for _, fc := range sdp.FieldCodes() {
			if fc.Overloaded {
				fmt.Fprintf(w, "%c\t%s\t%s\n", fc.Code, fc.SessionLabel, fc.MediaLabel)
			} else {
				fmt.Fprintf(w, "%c\t%s\t\n", fc.Code, fc.SessionLabel)
			}
		}
		w.Flush()
	},
}
