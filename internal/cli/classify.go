// Package cli: the classify command is the gate's dry run.
package cli

import (
	"github.com/spf13/cobra"

	"shellgate/internal/classify"
	"shellgate/internal/output"
	"shellgate/internal/policy"
	"shellgate/internal/target"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <command>",
	Short: "Classify a command without executing it",
	Long: `Classify a command and show the decision the gate would make under the
active safety mode and target. Nothing executes and the container target is
not probed; this is a pure dry run.

Examples:
  shellgate classify "rm -rf /"
  shellgate -yy classify "sudo systemctl restart nginx"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := args[0]

		s, err := loadSetup()
		if err != nil {
			return err
		}
		defer s.close()

		resolver := target.NewResolver(s.tgt)
		tctx := resolver.Resolve(command)
		cls := classify.Classify(command, tctx, s.cat)
		decision := policy.Decide(cls, s.mode)

		payload := output.ClassifyPayload{
			Command:    command,
			Target:     s.tgt.String(),
			Mode:       s.mode.String(),
			Decision:   decision.Kind.String(),
			Reason:     decision.Reason,
			Severity:   cls.HighestSeverity.String(),
			UsesSudo:   cls.UsesSudo,
			UsesRoot:   cls.UsesRoot,
			ParseError: cls.ParseError,
		}
		for _, r := range cls.MatchedRules {
			payload.MatchedRules = append(payload.MatchedRules, output.MatchedRule{
				ID:          r.ID,
				Category:    string(r.Category),
				Severity:    r.Severity.String(),
				Description: r.Description,
			})
		}

		if s.out.Format() != output.FormatText {
			return s.out.Write(payload)
		}

		s.out.Textf("decision:  %s\n", payload.Decision)
		s.out.Textf("severity:  %s\n", payload.Severity)
		s.out.Textf("mode:      %s\n", payload.Mode)
		s.out.Textf("target:    %s\n", payload.Target)
		if payload.Reason != "" {
			s.out.Textf("reason:    %s\n", payload.Reason)
		}
		for _, r := range payload.MatchedRules {
			s.out.Textf("matched:   %s [%s/%s] %s\n", r.ID, r.Category, r.Severity, r.Description)
		}
		return nil
	},
}
