// Package policy turns a risk classification and the active safety mode
// into a gate decision.
//
// The decision table below is the single source of truth: new modes or
// severities are added as a row or column here, never as scattered
// conditionals elsewhere.
package policy

import (
	"fmt"

	"shellgate/internal/catalog"
	"shellgate/internal/classify"
)

// Mode is the safety mode, set once per invocation from the count of -y
// flags and monotonically increasing in permissiveness.
type Mode int

const (
	ModeConfirm  Mode = iota // default: prompt on anything risky
	ModeSafeYolo             // -y
	ModeRootYolo             // -yy
	ModeFullYolo             // -yyy: explicit opt-out of all checks
)

// String returns the mode name used in output and the audit history.
func (m Mode) String() string {
	switch m {
	case ModeSafeYolo:
		return "safe-yolo"
	case ModeRootYolo:
		return "root-yolo"
	case ModeFullYolo:
		return "full-yolo"
	default:
		return "confirm"
	}
}

// FromYoloCount maps the number of stacked -y flags to a mode.
func FromYoloCount(n int) (Mode, error) {
	switch {
	case n < 0:
		return ModeConfirm, fmt.Errorf("invalid yolo count %d", n)
	case n == 0:
		return ModeConfirm, nil
	case n == 1:
		return ModeSafeYolo, nil
	case n == 2:
		return ModeRootYolo, nil
	case n == 3:
		return ModeFullYolo, nil
	default:
		return ModeConfirm, fmt.Errorf("too many -y flags (max 3)")
	}
}

// DecisionKind is the gate's verdict.
type DecisionKind int

const (
	Allow DecisionKind = iota
	AllowWithWarning
	PromptUser
	Block
)

// String returns the kind name used in output and the audit history.
func (k DecisionKind) String() string {
	switch k {
	case AllowWithWarning:
		return "allow-with-warning"
	case PromptUser:
		return "prompt"
	case Block:
		return "block"
	default:
		return "allow"
	}
}

// Decision is the gate's verdict plus the reason behind it.
type Decision struct {
	Kind   DecisionKind
	Reason string
	// Urgent marks prompts for High-severity matches under SafeYolo, which
	// the confirmation UI renders more loudly.
	Urgent bool
}

// decisionTable maps severity rows to per-mode verdicts. Indexed as
// [severityRow][mode].
//
// Critical at RootYolo deliberately prompts rather than warn-allowing:
// FullYolo is the only mode that lets a Critical match through unattended.
var decisionTable = map[catalog.Severity][4]DecisionKind{
	catalog.SeverityNone:     {Allow, Allow, Allow, Allow},
	catalog.SeverityLow:      {PromptUser, PromptUser, AllowWithWarning, Allow},
	catalog.SeverityMedium:   {PromptUser, PromptUser, AllowWithWarning, Allow},
	catalog.SeverityHigh:     {PromptUser, PromptUser, AllowWithWarning, Allow},
	catalog.SeverityCritical: {PromptUser, PromptUser, PromptUser, Allow},
}

// Decide applies the decision table plus the privilege overlay.
//
// Privilege-escalation matches do not feed the severity row; sudo/root use
// is handled by the overlay so that `sudo apt update` warns under SafeYolo
// instead of prompting like a genuinely destructive match would.
func Decide(cls classify.Classification, mode Mode) Decision {
	severity := effectiveSeverity(cls)
	kind := decisionTable[severity][mode]

	// Critical at SafeYolo blocks outright when running as root: a root
	// critical mistake has no undo.
	if severity == catalog.SeverityCritical && mode == ModeSafeYolo && cls.UsesRoot {
		kind = Block
	}

	// Privilege overlay: sudo/root use is surfaced even when no pattern
	// matched. Confirm asks; SafeYolo warns; RootYolo and above opted in.
	if cls.UsesSudo || cls.UsesRoot {
		switch mode {
		case ModeConfirm:
			kind = atLeast(kind, PromptUser)
		case ModeSafeYolo:
			kind = atLeast(kind, AllowWithWarning)
		}
	}

	// FullYolo never prompts and never blocks. Documented opt-out of all
	// checks; anything the table or overlay escalated is downgraded to a
	// warning at most.
	if mode == ModeFullYolo && kind > AllowWithWarning {
		kind = AllowWithWarning
	}

	d := Decision{Kind: kind, Reason: reasonFor(cls, kind)}
	if kind == PromptUser && mode == ModeSafeYolo && severity >= catalog.SeverityHigh {
		d.Urgent = true
	}
	return d
}

// effectiveSeverity is the max severity over matched rules, excluding
// privilege-escalation matches (those go through the overlay). The parse
// error upgrade from classification still applies.
func effectiveSeverity(cls classify.Classification) catalog.Severity {
	severity := catalog.SeverityNone
	for _, r := range cls.MatchedRules {
		if r.Category == catalog.CategoryPrivilegeEscalation {
			continue
		}
		if r.Severity > severity {
			severity = r.Severity
		}
	}
	if cls.ParseError && severity < catalog.SeverityCritical {
		severity++
	}
	return severity
}

// atLeast returns the more restrictive of two kinds.
func atLeast(a, b DecisionKind) DecisionKind {
	if b > a {
		return b
	}
	return a
}

func reasonFor(cls classify.Classification, kind DecisionKind) string {
	if kind == Allow {
		return ""
	}
	if rule := cls.TopRule(); rule != nil {
		return fmt.Sprintf("%s (%s): %s", rule.Category, cls.HighestSeverity, rule.Description)
	}
	if cls.ParseError {
		return "command could not be fully parsed; treating it conservatively"
	}
	switch {
	case cls.UsesSudo:
		return "command uses privilege escalation"
	case cls.UsesRoot:
		return "running with root privileges"
	}
	return fmt.Sprintf("severity %s", cls.HighestSeverity)
}
