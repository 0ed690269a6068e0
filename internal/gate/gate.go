// Package gate wires the safety pipeline together: resolve context,
// classify, decide, confirm when needed, then execute.
//
// The pipeline is the module's core invariant holder: a Block or
// TargetUnavailable decision never reaches the execution adapter, and an
// approved command reaches it exactly once.
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"shellgate/internal/catalog"
	"shellgate/internal/classify"
	"shellgate/internal/confirm"
	"shellgate/internal/executor"
	"shellgate/internal/history"
	"shellgate/internal/policy"
	"shellgate/internal/shellparse"
	"shellgate/internal/target"
)

// RejectionKind names why a command did not run (or did not finish).
type RejectionKind string

const (
	PolicyBlocked     RejectionKind = "policy_blocked"
	TargetUnavailable RejectionKind = "target_unavailable"
	UserRejected      RejectionKind = "user_rejected"
	Cancelled         RejectionKind = "cancelled"
)

// Exit codes reported to the surrounding CLI. Distinct from each other and
// from any plausible child exit so automation can tell "policy refused"
// apart from "command failed".
const (
	ExitRejected    = 2
	ExitBlocked     = 3
	ExitUnavailable = 4
	ExitCancelled   = 130
)

// RejectionError is a terminal non-execution outcome. It always carries
// enough context for the caller to render a specific explanation.
type RejectionError struct {
	Kind     RejectionKind
	Category catalog.Category
	Severity catalog.Severity
	Reason   string
}

func (e *RejectionError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// ExitCode maps the rejection to its process exit code.
func (e *RejectionError) ExitCode() int {
	switch e.Kind {
	case PolicyBlocked:
		return ExitBlocked
	case TargetUnavailable:
		return ExitUnavailable
	case Cancelled:
		return ExitCancelled
	default:
		return ExitRejected
	}
}

// Runner abstracts the execution adapter so tests can assert that rejected
// commands never reach it.
type Runner interface {
	Run(ctx context.Context, cmd string, t target.Target, opts executor.Options) (*executor.Result, error)
}

// Recorder receives audit entries; nil-safe via the noop in history.
type Recorder interface {
	Record(e history.Entry) error
}

// Gate is the evaluation context: everything is fixed at construction, no
// package-level mutable state.
type Gate struct {
	Mode     policy.Mode
	Catalog  *catalog.Catalog
	Resolver *target.Resolver
	Prompter confirm.Prompter
	Session  *confirm.Session
	Runner   Runner
	Recorder Recorder
	Logger   *log.Logger
	// ExecOpts are passed through to the adapter on every run.
	ExecOpts executor.Options
}

// Outcome is the record of one gate evaluation.
type Outcome struct {
	ID             string
	Command        string
	Target         target.Target
	Mode           policy.Mode
	Classification classify.Classification
	Decision       policy.Decision
	// Resolution is set when the confirmation subsystem was consulted.
	Resolution *confirm.Resolution
	// Result is set when the command executed (even if it failed).
	Result *executor.Result
}

// Evaluate runs the full pipeline for one command. On a terminal rejection
// the returned error is a *RejectionError and Result stays nil, except for
// Cancelled where partial output is surfaced.
func (g *Gate) Evaluate(ctx context.Context, cmd string) (*Outcome, error) {
	out := &Outcome{
		ID:      uuid.NewString(),
		Command: cmd,
		Target:  g.Resolver.Target(),
		Mode:    g.Mode,
	}
	logger := g.Logger.With("evaluation", out.ID, "target", out.Target.String())

	// Unreachable targets fail before any classification: no command text
	// leaks toward a nonexistent backend.
	if err := g.Resolver.Probe(ctx); err != nil {
		rej := &RejectionError{Kind: TargetUnavailable, Reason: err.Error()}
		g.record(out, rej, time.Now())
		return out, rej
	}

	tctx := g.Resolver.Resolve(cmd)
	out.Classification = classify.Classify(cmd, tctx, g.Catalog)
	out.Decision = policy.Decide(out.Classification, g.Mode)
	logger.Debug("decided",
		"decision", out.Decision.Kind.String(),
		"severity", out.Classification.HighestSeverity.String(),
		"sudo", tctx.UsesSudo, "root", tctx.UsesRoot)

	switch out.Decision.Kind {
	case policy.Block:
		rej := &RejectionError{
			Kind:     PolicyBlocked,
			Category: out.Classification.Category(),
			Severity: out.Classification.HighestSeverity,
			Reason:   out.Decision.Reason,
		}
		g.record(out, rej, time.Now())
		return out, rej

	case policy.PromptUser:
		fingerprint := shellparse.Fingerprint(cmd, out.Target.String())
		if g.Session.Approved(fingerprint) {
			logger.Debug("session override hit; skipping prompt")
			break
		}
		res, err := g.Prompter.Resolve(ctx, confirm.Request{
			Command:        cmd,
			Target:         out.Target.String(),
			Classification: out.Classification,
			Decision:       out.Decision,
		})
		if err != nil {
			// A broken prompt is indistinguishable from no answer: closed.
			logger.Warn("confirmation failed; rejecting", "err", err)
			res = confirm.Rejected
		}
		out.Resolution = &res
		if res == confirm.Rejected {
			rej := &RejectionError{
				Kind:     UserRejected,
				Category: out.Classification.Category(),
				Severity: out.Classification.HighestSeverity,
				Reason:   "rejected at confirmation prompt",
			}
			g.record(out, rej, time.Now())
			return out, rej
		}
		if res == confirm.ApprovedForSession {
			g.Session.Remember(fingerprint)
		}

	case policy.AllowWithWarning:
		logger.Warn(out.Decision.Reason, "command", cmd)
	}

	// Exactly one execution per approved evaluation.
	result, err := g.Runner.Run(ctx, cmd, out.Target, g.ExecOpts)
	out.Result = result
	if err != nil {
		if errors.Is(err, executor.ErrCancelled) {
			rej := &RejectionError{Kind: Cancelled, Reason: "execution interrupted"}
			g.record(out, rej, time.Now())
			return out, rej
		}
		g.record(out, nil, time.Now())
		return out, fmt.Errorf("executing command: %w", err)
	}

	g.record(out, nil, time.Now())
	return out, nil
}

// record writes the audit entry, best effort.
func (g *Gate) record(out *Outcome, rej *RejectionError, at time.Time) {
	if g.Recorder == nil {
		return
	}
	entry := history.Entry{
		EvaluationID: out.ID,
		At:           at.UTC(),
		Command:      out.Command,
		Target:       out.Target.String(),
		Mode:         out.Mode.String(),
		Decision:     out.Decision.Kind.String(),
		Severity:     out.Classification.HighestSeverity.String(),
		Category:     string(out.Classification.Category()),
	}
	if rej != nil {
		entry.Rejection = string(rej.Kind)
	}
	if out.Resolution != nil {
		entry.Resolution = out.Resolution.String()
	}
	if out.Result != nil {
		code := out.Result.ExitCode
		entry.ExitCode = &code
	}
	if err := g.Recorder.Record(entry); err != nil {
		g.Logger.Warn("failed to record history entry", "err", err)
	}
}
