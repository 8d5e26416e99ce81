package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"videogen/api"
)

// pollStatus creates a command to poll server status
func pollStatus(client *ServerClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		return StatusUpdateMsg{
			Status: status,
			Err:    err,
		}
	}
}

// triggerGenerate creates a command to submit a generation run
func triggerGenerate(client *ServerClient, req api.GenerateRequest) tea.Cmd {
	return func() tea.Msg {
		return GenerateStartedMsg{Err: client.Generate(req)}
	}
}

// tickCmd creates a command that ticks every 500ms for polling
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
