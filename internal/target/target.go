// Package target resolves where a command will run (host or a named
// container) and under what privilege context.
package target

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"shellgate/internal/shellparse"
	"shellgate/internal/testutil"
)

// Backend identifies a container runtime.
type Backend string

const (
	BackendDistrobox Backend = "distrobox"
	BackendDocker    Backend = "docker"
	BackendPodman    Backend = "podman"
)

// Kind distinguishes host execution from container execution.
type Kind int

const (
	KindHost Kind = iota
	KindContainer
)

// Target is where a command executes. Built once per invocation from CLI
// flags and immutable afterwards.
type Target struct {
	Kind    Kind
	Backend Backend
	Name    string
}

// Host returns the host target.
func Host() Target {
	return Target{Kind: KindHost}
}

// Container returns a container target for the given backend and name.
func Container(backend Backend, name string) Target {
	return Target{Kind: KindContainer, Backend: backend, Name: name}
}

// String renders the target for logs, fingerprints and the audit history.
func (t Target) String() string {
	if t.Kind == KindHost {
		return "host"
	}
	return fmt.Sprintf("%s:%s", t.Backend, t.Name)
}

// IsContainer reports whether the target is a container backend.
func (t Target) IsContainer() bool { return t.Kind == KindContainer }

// Context is the privilege and placement annotation attached to a command
// before classification.
type Context struct {
	Target Target
	// UsesSudo is true when any segment starts with a privilege-escalation
	// invocation (sudo, doas, su).
	UsesSudo bool
	// UsesRoot is true when the resolved execution identity is root,
	// independent of whether sudo appears in the text.
	UsesRoot bool
}

// ErrUnreachable reports that a named container does not exist or its
// runtime cannot be queried.
var ErrUnreachable = errors.New("execution target unavailable")

var privilegeCommands = map[string]bool{
	"sudo": true,
	"doas": true,
	"su":   true,
}

// Resolver annotates commands with target and privilege context and probes
// container reachability.
type Resolver struct {
	target Target
	// exec runs probe commands; injectable so tests never touch a runtime.
	exec testutil.CommandExecutor
	// euid is injectable for root-detection tests.
	euid func() int
}

// NewResolver creates a resolver for a fixed target.
func NewResolver(t Target) *Resolver {
	return &Resolver{
		target: t,
		exec:   testutil.RealExecutor{},
		euid:   os.Geteuid,
	}
}

// WithExecutor overrides the probe executor.
func (r *Resolver) WithExecutor(exec testutil.CommandExecutor) *Resolver {
	r.exec = exec
	return r
}

// WithEUID overrides effective-UID detection.
func (r *Resolver) WithEUID(fn func() int) *Resolver {
	r.euid = fn
	return r
}

// Target returns the resolver's fixed target.
func (r *Resolver) Target() Target { return r.target }

// Resolve annotates a command with the execution context.
func (r *Resolver) Resolve(cmd string) Context {
	segments, _ := shellparse.Split(cmd)
	usesSudo := false
	for _, seg := range segments {
		if privilegeCommands[shellparse.FirstToken(seg)] {
			usesSudo = true
			break
		}
	}
	return Context{
		Target:   r.target,
		UsesSudo: usesSudo,
		UsesRoot: r.euid() == 0,
	}
}

// Probe verifies a container target exists and is reachable. Host targets
// always probe clean. An unreachable target must short-circuit the gate
// before any classification runs.
func (r *Resolver) Probe(ctx context.Context) error {
	t := r.target
	if !t.IsContainer() {
		return nil
	}
	if t.Name == "" {
		return fmt.Errorf("%w: no container name given for %s", ErrUnreachable, t.Backend)
	}

	switch t.Backend {
	case BackendDocker:
		if _, err := r.exec.Run("docker", "container", "inspect", t.Name); err != nil {
			return fmt.Errorf("%w: docker container %q: %v", ErrUnreachable, t.Name, err)
		}
	case BackendPodman:
		if _, err := r.exec.Run("podman", "container", "exists", t.Name); err != nil {
			return fmt.Errorf("%w: podman container %q: %v", ErrUnreachable, t.Name, err)
		}
	case BackendDistrobox:
		out, err := r.exec.Run("distrobox", "list", "--no-color")
		if err != nil {
			return fmt.Errorf("%w: distrobox list failed: %v", ErrUnreachable, err)
		}
		if !distroboxListed(string(out), t.Name) {
			return fmt.Errorf("%w: distrobox %q not found", ErrUnreachable, t.Name)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrUnreachable, t.Backend)
	}
	return nil
}

// distroboxListed scans `distrobox list` output for an exact name match in
// the NAME column (second pipe-separated field).
func distroboxListed(out, name string) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(fields[1]), name) {
			return true
		}
	}
	return false
}
