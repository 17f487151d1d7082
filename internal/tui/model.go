// Package tui implements the live dashboard shown by `ffimath verify --watch`.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pengelbrecht/ffimath/internal/conformance"
	"github.com/pengelbrecht/ffimath/internal/styles"
)

// RunStartedMsg signals that a conformance run began, with the reason (e.g. the changed file).
type RunStartedMsg struct {
	Reason string
}

// ReportMsg delivers the result of a finished run.
type ReportMsg struct {
	Report *conformance.Report
	At     time.Time
}

// ErrMsg delivers a run that could not complete, e.g. an invalid cases file.
type ErrMsg struct {
	Err error
}

// Model is the bubbletea model for the watch dashboard.
type Model struct {
	title   string
	spinner spinner.Model
	running bool
	reason  string
	runs    int
	report  *conformance.Report
	lastAt  time.Time
	err     error
	showAll bool
}

// NewModel creates a dashboard titled with the backend description.
func NewModel(title string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{title: title, spinner: s, running: true}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "a":
			m.showAll = !m.showAll
		}
		return m, nil

	case RunStartedMsg:
		m.running = true
		m.reason = msg.Reason
		return m, m.spinner.Tick

	case ReportMsg:
		m.running = false
		m.runs++
		m.report = msg.Report
		m.lastAt = msg.At
		m.err = nil
		return m, nil

	case ErrMsg:
		m.running = false
		m.runs++
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.RenderLabel("ffimath verify") + "  " + styles.RenderDim(m.title) + "\n\n")

	if m.running {
		line := m.spinner.View() + " running"
		if m.reason != "" {
			line += styles.RenderDim(" (" + m.reason + ")")
		}
		b.WriteString(line + "\n\n")
	}

	if m.err != nil {
		b.WriteString(styles.RenderFail("error: ") + m.err.Error() + "\n\n")
	} else if m.report != nil {
		b.WriteString(RenderReport(m.report, m.showAll) + "\n")
		b.WriteString(styles.RenderDim(fmt.Sprintf("run %d at %s", m.runs, m.lastAt.Format("15:04:05"))) + "\n\n")
	}

	b.WriteString(styles.RenderDim("a: toggle passing rows  q: quit"))
	return b.String()
}
