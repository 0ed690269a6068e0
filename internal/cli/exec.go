// Package cli: the exec command runs one command through the gate.
package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shellgate/internal/gate"
	"shellgate/internal/output"
)

func init() {
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec <command>",
	Short: "Evaluate a command through the safety gate and run it",
	Long: `Evaluate a single command through the safety gate and, if it passes,
execute it on the resolved target.

Flow:
1. Probe the target (a missing container rejects before anything else)
2. Classify against the pattern catalog
3. Apply the active safety mode
4. Confirm interactively when the decision requires it
5. Execute and stream output

Exit codes: 0 success, 2 rejected at the prompt, 3 blocked by policy,
4 target unavailable, 130 cancelled; a command that ran and failed exits
with its own status.

Examples:
  shellgate exec "ls -la"
  shellgate -y exec "sudo apt update"
  shellgate -d mybox exec "make install"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := args[0]

		s, err := loadSetup()
		if err != nil {
			return err
		}
		defer s.close()

		// SIGINT/SIGTERM cancel the evaluation: a pending prompt resolves
		// to rejected, a running child is killed and reported cancelled.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g := s.newGate()
		out, err := g.Evaluate(ctx, command)
		if err != nil {
			var rej *gate.RejectionError
			if errors.As(err, &rej) {
				writeRejection(s, out, rej)
				return rej
			}
			return err
		}

		payload := output.OutcomePayload{
			Status:       "executed",
			EvaluationID: out.ID,
			Command:      out.Command,
			Target:       out.Target.String(),
			Mode:         out.Mode.String(),
			Decision:     out.Decision.Kind.String(),
			Severity:     out.Classification.HighestSeverity.String(),
			Category:     string(out.Classification.Category()),
			ExitCode:     out.Result.ExitCode,
			DurationMs:   out.Result.Duration.Milliseconds(),
		}
		if s.out.Format() != output.FormatText {
			// Machine formats get the captured output too; text mode
			// already streamed it.
			payload.Stdout = out.Result.Stdout
			payload.Stderr = out.Result.Stderr
			if err := s.out.Write(payload); err != nil {
				return err
			}
		}

		if out.Result.ExitCode != 0 {
			return &childExitError{code: out.Result.ExitCode}
		}
		return nil
	},
}

// writeRejection renders a structured rejection record so the caller can
// explain exactly what was refused and why.
func writeRejection(s *setup, out *gate.Outcome, rej *gate.RejectionError) {
	if s.out.Format() == output.FormatText {
		s.out.Error(rej)
		return
	}
	payload := output.RejectionPayload{
		Status:       "rejected",
		EvaluationID: out.ID,
		Command:      out.Command,
		Target:       out.Target.String(),
		Mode:         out.Mode.String(),
		Kind:         string(rej.Kind),
		Category:     string(rej.Category),
		Severity:     rej.Severity.String(),
		Reason:       rej.Reason,
		ExitCode:     rej.ExitCode(),
	}
	if out.Result != nil {
		// Cancelled runs surface their partial output.
		payload.Stdout = out.Result.Stdout
		payload.Stderr = out.Result.Stderr
	}
	_ = s.out.Write(payload)
}
