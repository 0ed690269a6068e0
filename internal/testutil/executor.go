package testutil

import (
	"os/exec"
	"sync"
)

// CommandExecutor abstracts process invocation for probing container
// runtimes. Production code uses RealExecutor; tests use MockExecutor so no
// runtime is ever touched.
type CommandExecutor interface {
	// Run executes a command and returns its combined output.
	Run(name string, args ...string) ([]byte, error)
}

// RealExecutor uses actual exec.Command for production use.
type RealExecutor struct{}

// Run executes a command and returns combined stdout/stderr.
func (r RealExecutor) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// CommandCall records a single command invocation.
type CommandCall struct {
	Name string
	Args []string
}

// MockExecutor records and simulates command execution for testing.
type MockExecutor struct {
	mu sync.Mutex

	// RecordedCalls contains all commands that were invoked.
	RecordedCalls []CommandCall

	// MockOutput is returned by Run.
	MockOutput []byte

	// MockError is returned by Run.
	MockError error

	// OutputFunc allows dynamic output based on the command.
	// If set, this is called instead of returning MockOutput.
	OutputFunc func(name string, args []string) ([]byte, error)
}

// NewMockExecutor creates a mock with configurable static behavior.
func NewMockExecutor(output []byte, err error) *MockExecutor {
	return &MockExecutor{MockOutput: output, MockError: err}
}

// NewMockExecutorFunc creates a mock with dynamic behavior based on command.
func NewMockExecutorFunc(fn func(name string, args []string) ([]byte, error)) *MockExecutor {
	return &MockExecutor{OutputFunc: fn}
}

// Run records the call and returns configured output/error.
func (m *MockExecutor) Run(name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	m.RecordedCalls = append(m.RecordedCalls, CommandCall{Name: name, Args: args})
	m.mu.Unlock()

	if m.OutputFunc != nil {
		return m.OutputFunc(name, args)
	}
	return m.MockOutput, m.MockError
}

// Calls returns a snapshot of recorded calls.
func (m *MockExecutor) Calls() []CommandCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CommandCall, len(m.RecordedCalls))
	copy(out, m.RecordedCalls)
	return out
}
