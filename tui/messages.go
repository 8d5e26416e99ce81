package tui

import (
	"time"

	"videogen/api"
)

// Messages for the tea program (polling-based)

// StatusUpdateMsg is sent when we receive status from the server
type StatusUpdateMsg struct {
	Status *api.StatusResponse
	Err    error
}

// TickMsg is sent periodically to trigger polling
type TickMsg struct {
	Time time.Time
}

// GenerateStartedMsg is sent after the user triggers a run
type GenerateStartedMsg struct {
	Err error
}
