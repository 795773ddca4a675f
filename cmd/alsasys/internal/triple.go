package internal

import (
	"fmt"

	"github.com/goplus/alsasys/internal/triple"
	"github.com/spf13/cobra"
)

var tripleCmd = &cobra.Command{
	Use:   "triple <target>...",
	Short: "Print the configure --host name for target triples",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTriple,
}

func init() {
	rootCmd.AddCommand(tripleCmd)
}

func runTriple(cmd *cobra.Command, args []string) error {
	for _, id := range args {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, triple.Translate(id))
	}
	return nil
}
