package commands

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// version needs neither config nor logger
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if a.noColor {
				color.NoColor = true
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			title := color.New(color.FgCyan, color.Bold)
			if a.noColor {
				title.DisableColor()
			}

			for _, kv := range [][2]string{
				{"testbench version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", runtime.Version()},
			} {
				title.Fprint(out, kv[0])
				fmt.Fprintln(out, kv[1])
			}
		},
	}
}
