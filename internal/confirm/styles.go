package confirm

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shellgate/internal/catalog"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Bold(true)

	urgentTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Bold(true).
				Blink(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	reasonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)

	severityStyles = map[catalog.Severity]lipgloss.Style{
		catalog.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		catalog.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		catalog.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		catalog.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Reverse(true),
	}
)

func renderPrompt(req Request, width int) string {
	var b strings.Builder

	title := titleStyle.Render("Command requires confirmation")
	if req.Decision.Urgent {
		title = urgentTitleStyle.Render("Command requires confirmation (high risk)")
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	cmd := sanitize(req.Command)
	if width > 8 && len(cmd) > width-8 {
		cmd = cmd[:width-11] + "..."
	}
	b.WriteString(boxStyle.Render(commandStyle.Render(cmd)))
	b.WriteString("\n")

	if sev := req.Classification.HighestSeverity; sev > catalog.SeverityNone {
		badge := severityStyles[sev].Render(" " + strings.ToUpper(sev.String()) + " ")
		b.WriteString(fmt.Sprintf("%s %s\n", badge, reasonStyle.Render(req.Decision.Reason)))
	} else if req.Decision.Reason != "" {
		b.WriteString(reasonStyle.Render(req.Decision.Reason))
		b.WriteString("\n")
	}

	if req.Target != "" && req.Target != "host" {
		b.WriteString(hintStyle.Render("target: " + req.Target))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("[y] run once  [a] always this session  [n] reject"))
	b.WriteString("\n")
	return b.String()
}

// sanitize strips control characters so model-produced command text cannot
// corrupt the terminal during review.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}
