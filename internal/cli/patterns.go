// Package cli: the patterns command inspects the rule catalog.
package cli

import (
	"github.com/spf13/cobra"

	"shellgate/internal/output"
)

func init() {
	rootCmd.AddCommand(patternsCmd)
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the dangerous-command pattern catalog",
	Long: `List every rule in the active catalog (builtin plus any configured
extensions) with its category, severity and pattern, together with a
content hash for drift detection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSetup()
		if err != nil {
			return err
		}
		defer s.close()

		if s.out.Format() != output.FormatText {
			return s.out.Write(s.cat.Export())
		}

		export := s.cat.Export()
		s.out.Textf("catalog: %d rules, sha256 %s\n\n", export.RuleCount, export.SHA256[:12])
		for _, r := range export.Rules {
			scope := ""
			if r.ContainerOnly {
				scope = " (container-only)"
			}
			s.out.Textf("%-24s %-24s %-8s%s\n", r.ID, r.Category, r.Severity, scope)
			s.out.Textf("    %s\n", r.Pattern)
		}
		return nil
	},
}
