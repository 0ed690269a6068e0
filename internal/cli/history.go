// Package cli: the history command lists recent audit entries.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shellgate/internal/output"
)

var flagHistoryLimit int

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent gate evaluations",
	Long: `Show the most recent entries from the audit history: what was
evaluated, the decision, and how execution ended. Session approvals are
never persisted and so never appear here.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSetup()
		if err != nil {
			return err
		}
		defer s.close()

		if s.history == nil {
			return fmt.Errorf("history is disabled")
		}

		entries, err := s.history.Recent(flagHistoryLimit)
		if err != nil {
			return err
		}

		if s.out.Format() != output.FormatText {
			return s.out.Write(map[string]any{"entries": entries})
		}

		for _, e := range entries {
			status := e.Decision
			if e.Rejection != "" {
				status = e.Rejection
			}
			exit := "-"
			if e.ExitCode != nil {
				exit = fmt.Sprintf("%d", *e.ExitCode)
			}
			s.out.Textf("%s  %-10s %-18s exit=%-4s %s\n",
				e.At.Format("2006-01-02 15:04:05"), e.Mode, status, exit, e.Command)
		}
		return nil
	},
}
