// Package executor dispatches approved commands to their execution target:
// the host shell or a container backend wrapper.
//
// The adapter receives only commands the policy gate has already let
// through; it performs no classification of its own.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"shellgate/internal/target"
)

// ErrCancelled reports that execution was interrupted before completion.
// Partial output is still surfaced on the Result.
var ErrCancelled = errors.New("execution cancelled")

// Result is the outcome of one command execution.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Options configures a single run.
type Options struct {
	// Stdout/Stderr receive streamed output as it is produced. Nil writers
	// mean capture-only.
	Stdout io.Writer
	Stderr io.Writer
	// Stdin is connected to the child for interactive commands.
	Stdin io.Reader
	// Dir is the working directory; empty inherits the caller's.
	Dir string
}

// Adapter runs commands against a fixed target.
type Adapter struct {
	logger *log.Logger
}

// New creates an adapter.
func New(logger *log.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// BuildArgv returns the argv used to run a command on a target. The raw
// command text is always passed through as a single argv element so no
// re-quoting can alter its semantics.
func BuildArgv(cmd string, t target.Target) []string {
	if t.Kind == target.KindHost {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		return []string{shell, "-c", cmd}
	}
	switch t.Backend {
	case target.BackendDistrobox:
		return []string{"distrobox", "enter", t.Name, "--", "sh", "-c", cmd}
	case target.BackendDocker:
		return []string{"docker", "exec", t.Name, "sh", "-c", cmd}
	case target.BackendPodman:
		return []string{"podman", "exec", t.Name, "sh", "-c", cmd}
	}
	// Unknown backends cannot happen past flag validation; fall back to the
	// host shell shape so the zero value stays runnable.
	return []string{"/bin/sh", "-c", cmd}
}

// Run executes a command on the target, streaming output incrementally while
// capturing it. Context cancellation kills the child's whole process group
// and returns ErrCancelled together with whatever output was captured.
// A non-zero exit is not an error here; callers read Result.ExitCode.
func (a *Adapter) Run(ctx context.Context, cmdText string, t target.Target, opts Options) (*Result, error) {
	argv := BuildArgv(cmdText, t)
	start := time.Now()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	cmd.Dir = opts.Dir

	// Child gets its own process group so cancellation can take down any
	// grandchildren the shell spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = teeWriter(&stdoutBuf, opts.Stdout)
	cmd.Stderr = teeWriter(&stderrBuf, opts.Stderr)
	cmd.Stdin = opts.Stdin

	a.logger.Debug("spawning", "target", t.String(), "argv0", argv[0])

	err := cmd.Run()
	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("running command: %w", err)
	}
	return result, nil
}

func teeWriter(capture *bytes.Buffer, stream io.Writer) io.Writer {
	if stream == nil {
		return capture
	}
	return io.MultiWriter(capture, stream)
}
