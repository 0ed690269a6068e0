// Package confirm implements the interactive confirmation subsystem: the
// suspension point between a PromptUser decision and execution.
//
// The prompt fails closed. End-of-input, a missing TTY, an interrupt, or a
// torn-down bubbletea program all resolve to Rejected; nothing in here can
// approve a command on its own.
package confirm

import (
	"context"
	"sync"

	"shellgate/internal/classify"
	"shellgate/internal/policy"
)

// Resolution is the outcome of one confirmation round.
type Resolution int

const (
	Rejected Resolution = iota
	Approved
	ApprovedForSession
)

// String returns the resolution name used in logs and the audit history.
func (r Resolution) String() string {
	switch r {
	case Approved:
		return "approved"
	case ApprovedForSession:
		return "approved-for-session"
	default:
		return "rejected"
	}
}

// Request carries everything the prompt renders.
type Request struct {
	Command        string
	Target         string
	Classification classify.Classification
	Decision       policy.Decision
}

// Prompter obtains an accept/reject decision from the user. Implementations
// block until a response arrives or ctx is cancelled; cancellation resolves
// to Rejected.
type Prompter interface {
	Resolve(ctx context.Context, req Request) (Resolution, error)
}

// Session is the in-memory set of fingerprints approved for the lifetime of
// this process. It is never persisted and dies with the process.
type Session struct {
	mu       sync.Mutex
	approved map[string]bool
}

// NewSession returns an empty session override cache.
func NewSession() *Session {
	return &Session{approved: make(map[string]bool)}
}

// Approved reports whether a fingerprint was previously approved for the
// session. Fingerprints cover the normalized command text and target, so a
// command differing even slightly misses the cache and re-prompts.
func (s *Session) Approved(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.approved[fingerprint]
}

// Remember records a session-scoped approval.
func (s *Session) Remember(fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approved[fingerprint] = true
}

// Len reports how many fingerprints are cached.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.approved)
}
