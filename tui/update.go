package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"videogen/api"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		return m, tea.Batch(pollStatus(m.Client), tickCmd())
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case GenerateStartedMsg:
		return m.handleGenerateStarted(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "g", "G":
		if m.Connected && m.State != api.StateRunning && !m.submitted {
			m.submitted = true
			return m, triggerGenerate(m.Client, api.GenerateRequest{
				Prompt:          m.Prompt,
				DurationMinutes: m.DurationMinutes,
			})
		}
	}
	return m, nil
}

// handleStatusUpdate syncs server state into the model
func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		return m, nil
	}
	m.Connected = true
	m.State = msg.Status.State
	m.Stage = string(msg.Status.Stage)
	m.Logs = msg.Status.Logs
	m.Video = msg.Status.Video
	if msg.Status.Error != "" {
		m.Err = errors.New(msg.Status.Error)
	} else {
		m.Err = nil
	}
	if m.State != api.StateRunning {
		m.submitted = false
	}
	return m, nil
}

// handleGenerateStarted processes the submission result
func (m Model) handleGenerateStarted(msg GenerateStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.submitted = false
		m.State = api.StateFailed
		m.Err = msg.Err
	}
	return m, nil
}
