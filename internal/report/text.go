package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// titleStyle for the summary header
	titleStyle = lipgloss.NewStyle().
			Bold(true)

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for written sections
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for failed sections
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// warnStyle for excluded and skipped sections
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// boxStyle for the totals box
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusWritten:
		return successStyle
	case StatusFailed:
		return errorStyle
	case StatusExcluded, StatusSkipped:
		return warnStyle
	default:
		return dimStyle
	}
}

func writeText(w io.Writer, s Summary) error {
	var sb strings.Builder

	header := "Split " + s.Input
	if s.DryRun {
		header = "Dry run: " + s.Input
	}
	sb.WriteString(titleStyle.Render(header))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("%d pages -> %s", s.Pages, s.OutputDir)))
	sb.WriteString("\n\n")

	for _, sec := range s.Sections {
		fmt.Fprintf(&sb, "%3d: %s %s  %s",
			sec.ID,
			sec.Title,
			dimStyle.Render(fmt.Sprintf("(pages %d-%d)", sec.FirstPage, sec.LastPage)),
			statusStyle(sec.Status).Render(sec.Status),
		)
		switch {
		case sec.Error != "":
			sb.WriteString(" ")
			sb.WriteString(errorStyle.Render(sec.Error))
		case sec.File != "":
			sb.WriteString(" ")
			sb.WriteString(dimStyle.Render(sec.File))
		}
		sb.WriteString("\n")
	}

	for _, warn := range s.Warnings {
		sb.WriteString(warnStyle.Render("warning: " + warn))
		sb.WriteString("\n")
	}

	totals := fmt.Sprintf("%s %d  %s %d  %s %d",
		dimStyle.Render("Written:"), s.Written,
		dimStyle.Render("Failed:"), s.Failed,
		dimStyle.Render("Excluded:"), s.Excluded,
	)
	sb.WriteString("\n")
	sb.WriteString(boxStyle.Render(totals))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
