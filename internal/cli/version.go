// Package cli: version information.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"shellgate/internal/output"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"version":    version,
			"commit":     commit,
			"build_date": date,
			"go_version": runtime.Version(),
		}

		format := output.Format(flagOutput)
		if format != "" && format != output.FormatText {
			if !format.Valid() {
				return fmt.Errorf("unknown output format %q", format)
			}
			return output.New(format).Write(payload)
		}

		fmt.Printf("shellgate %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		fmt.Printf("  go:     %s\n", runtime.Version())
		return nil
	},
}
