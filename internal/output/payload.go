package output

// OutcomePayload is the machine-readable record of an executed command.
type OutcomePayload struct {
	Status       string `json:"status"` // "executed"
	EvaluationID string `json:"evaluation_id"`
	Command      string `json:"command"`
	Target       string `json:"target"`
	Mode         string `json:"mode"`
	Decision     string `json:"decision"`
	Severity     string `json:"severity,omitempty"`
	Category     string `json:"category,omitempty"`
	ExitCode     int    `json:"exit_code"`
	Stdout       string `json:"stdout,omitempty"`
	Stderr       string `json:"stderr,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
}

// RejectionPayload is the machine-readable record of a command that did not
// run (or did not finish). Category and severity are always carried so the
// caller can render a specific explanation, never a bare "denied".
type RejectionPayload struct {
	Status       string `json:"status"` // "rejected"
	EvaluationID string `json:"evaluation_id"`
	Command      string `json:"command"`
	Target       string `json:"target"`
	Mode         string `json:"mode"`
	Kind         string `json:"kind"`
	Category     string `json:"category,omitempty"`
	Severity     string `json:"severity,omitempty"`
	Reason       string `json:"reason"`
	ExitCode     int    `json:"exit_code"`
	// Partial output from a cancelled execution, surfaced rather than
	// dropped.
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
}

// ClassifyPayload is the dry-run classification record.
type ClassifyPayload struct {
	Command      string        `json:"command"`
	Target       string        `json:"target"`
	Mode         string        `json:"mode"`
	Decision     string        `json:"decision"`
	Reason       string        `json:"reason,omitempty"`
	Severity     string        `json:"severity"`
	UsesSudo     bool          `json:"uses_sudo"`
	UsesRoot     bool          `json:"uses_root"`
	ParseError   bool          `json:"parse_error,omitempty"`
	MatchedRules []MatchedRule `json:"matched_rules,omitempty"`
}

// MatchedRule is one catalog hit in a classification payload.
type MatchedRule struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
}
