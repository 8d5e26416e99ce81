// Package tui is a thin terminal client for serve mode: it polls the
// generation server's status endpoint and renders run progress.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"videogen/api"
)

// Model represents the TUI client state (thin client)
type Model struct {
	Client *ServerClient

	// Request submitted when the user starts a run.
	Prompt          string
	DurationMinutes int

	// Local UI state (synced from the server)
	State     api.State
	Stage     string
	Logs      []api.LogEntry
	Video     *api.VideoInfo
	Err       error
	Connected bool

	submitted bool
}

// NewModel creates a new TUI model pointed at a serve-mode instance.
func NewModel(serverURL, prompt string, durationMinutes int) Model {
	return Model{
		Client:          NewServerClient(serverURL),
		Prompt:          prompt,
		DurationMinutes: durationMinutes,
		State:           api.StateIdle,
		Logs:            make([]api.LogEntry, 0),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		pollStatus(m.Client),
		tickCmd(),
	)
}

// getStateText returns the appropriate state message
func (m Model) getStateText() string {
	if !m.Connected {
		return errorStyle.Render("Not connected to the generation server")
	}

	switch m.State {
	case api.StateIdle:
		return highlightStyle.Render("Ready") + "\n\n" +
			infoStyle.Render("Press 'g' to generate")
	case api.StateRunning:
		stage := m.Stage
		if stage == "" {
			stage = "starting"
		}
		return statusStyle.Render(fmt.Sprintf("Generating (%s)...", stage))
	case api.StateCompleted:
		return highlightStyle.Render("COMPLETE")
	case api.StateFailed:
		msg := "unknown error"
		if m.Err != nil {
			msg = m.Err.Error()
		}
		return errorStyle.Render(fmt.Sprintf("Error: %s", msg))
	default:
		return ""
	}
}
