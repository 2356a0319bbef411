package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/lattice-substrate/cryptval/report"
)

const (
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

// newStyle renders report decorations for w. Output that is not a terminal
// gets plain text.
func newStyle(w io.Writer) report.Style {
	r := lipgloss.NewRenderer(w)
	pass := r.NewStyle().Foreground(colorSuccess)
	fail := r.NewStyle().Bold(true).Foreground(colorError)
	dim := r.NewStyle().Foreground(colorMuted)
	return report.Style{
		Pass: func(s string) string { return pass.Render(s) },
		Fail: func(s string) string { return fail.Render(s) },
		Dim:  func(s string) string { return dim.Render(s) },
	}
}
