package handlers

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	statusColorGreen = lipgloss.Color("#22c55e")
	statusColorAmber = lipgloss.Color("#f59e0b")
	statusColorDim   = lipgloss.Color("#6b7280")
	statusColorWhite = lipgloss.Color("#f9fafb")
)

var (
	statusTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(statusColorWhite)

	statusReadyStyle = lipgloss.NewStyle().
				Foreground(statusColorGreen)

	statusPendingStyle = lipgloss.NewStyle().
				Foreground(statusColorAmber)

	statusDimStyle = lipgloss.NewStyle().
			Foreground(statusColorDim)
)

// stdoutIsTerminal reports whether stdout is attached to a terminal.
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// renderStatus produces the status report. When styled is false (piped
// output) the same layout is emitted without color codes.
func renderStatus(report *EnvironmentStatus, styled bool) string {
	var b strings.Builder

	title := fmt.Sprintf("  graphbench: %s (%s)", report.ClusterName, report.Region)
	rule := "  " + strings.Repeat("─", 40)
	if styled {
		title = statusTitleStyle.Render(title)
		rule = statusDimStyle.Render(rule)
	}
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(rule)
	b.WriteString("\n")

	for _, r := range report.Resources {
		indicator := "○"
		if r.Ready {
			indicator = "✓"
		}
		line := fmt.Sprintf("  %s %-18s %s", indicator, r.Name, r.State)
		if styled {
			if r.Ready {
				line = statusReadyStyle.Render(line)
			} else if r.State != "absent" {
				line = statusPendingStyle.Render(line)
			}
		}
		b.WriteString(line)
		if r.Detail != "" {
			detail := "  " + r.Detail
			if styled {
				detail = statusDimStyle.Render(detail)
			}
			b.WriteString(detail)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}
