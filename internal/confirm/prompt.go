package confirm

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// TerminalPrompter renders the confirmation prompt as a bubbletea program
// on the controlling terminal.
type TerminalPrompter struct {
	logger *log.Logger
	// isTerminal is injectable for tests.
	isTerminal func() bool
}

// NewTerminalPrompter creates a prompter bound to stdin/stderr.
func NewTerminalPrompter(logger *log.Logger) *TerminalPrompter {
	return &TerminalPrompter{
		logger: logger,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Resolve blocks until the user answers or ctx is cancelled. A missing TTY,
// EOF, interrupt, or program failure all resolve to Rejected.
func (p *TerminalPrompter) Resolve(ctx context.Context, req Request) (Resolution, error) {
	if !p.isTerminal() {
		// No one is there to answer; fail closed rather than hang or
		// auto-approve.
		p.logger.Warn("confirmation required but stdin is not a terminal; rejecting",
			"command", req.Command)
		return Rejected, nil
	}

	model := newPromptModel(req)
	prog := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(os.Stdin),
		tea.WithOutput(os.Stderr),
	)

	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			p.logger.Info("confirmation interrupted; rejecting", "command", req.Command)
			return Rejected, nil
		}
		return Rejected, fmt.Errorf("running confirmation prompt: %w", err)
	}

	m, ok := final.(promptModel)
	if !ok || !m.answered {
		// Program ended without an explicit answer (EOF, quit).
		return Rejected, nil
	}
	return m.resolution, nil
}

// promptModel is the bubbletea model for one confirmation round.
type promptModel struct {
	req        Request
	answered   bool
	resolution Resolution
	width      int
}

func newPromptModel(req Request) promptModel {
	return promptModel{req: req, width: 80}
}

func (m promptModel) Init() tea.Cmd { return nil }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y", "enter":
			m.answered = true
			m.resolution = Approved
			return m, tea.Quit
		case "a", "A":
			m.answered = true
			m.resolution = ApprovedForSession
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c", "ctrl+d":
			m.answered = true
			m.resolution = Rejected
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m promptModel) View() string {
	if m.answered {
		return ""
	}
	return renderPrompt(m.req, m.width)
}
