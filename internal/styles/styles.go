// Package styles holds the terminal palette shared by CLI output and the TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	ColorGray   = lipgloss.Color("241")
	ColorGreen  = lipgloss.Color("42")
	ColorRed    = lipgloss.Color("196")
	ColorYellow = lipgloss.Color("214")
	ColorBlue   = lipgloss.Color("39")
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorGray)
	passStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorYellow)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)

func RenderLabel(s string) string { return labelStyle.Render(s) }
func RenderDim(s string) string   { return dimStyle.Render(s) }
func RenderPass(s string) string  { return passStyle.Render(s) }
func RenderFail(s string) string  { return failStyle.Render(s) }
func RenderWarn(s string) string  { return warnStyle.Render(s) }

// RenderBox draws content inside a rounded border.
func RenderBox(content string) string {
	return boxStyle.Render(content)
}

// PadRight pads s with spaces to width visible cells, ignoring escape codes.
func PadRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Truncate shortens s to at most width visible cells, ending with "…".
func Truncate(s string, width int) string {
	return ansi.Truncate(s, width, "…")
}
