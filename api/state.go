package api

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"videogen/pipeline"
	"videogen/types"
)

// State is the serve-mode run state machine.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// LogEntry is one progress line with its timestamp.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// StatusResponse is the GET /api/status payload.
type StatusResponse struct {
	State     State          `json:"state"`
	Stage     pipeline.Stage `json:"stage,omitempty"`
	Logs      []LogEntry     `json:"logs"`
	Video     *VideoInfo     `json:"video,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartedAt *time.Time     `json:"started_at,omitempty"`
}

// VideoInfo is the completed-run artifact summary.
type VideoInfo struct {
	FilePath        string  `json:"file_path"`
	DurationSeconds float64 `json:"duration_seconds"`
	SizeBytes       int64   `json:"size_bytes"`
	Resolution      string  `json:"resolution"`
}

// Manager holds the current run's state with thread-safe access. Only one
// run executes at a time; a second submission is rejected until the first
// finishes.
type Manager struct {
	mu        sync.RWMutex
	state     State
	stage     pipeline.Stage
	logs      []LogEntry
	maxLogs   int
	video     *VideoInfo
	lastErr   string
	startedAt *time.Time
}

// NewManager creates an idle Manager keeping the last 100 log lines.
func NewManager() *Manager {
	return &Manager{state: StateIdle, maxLogs: 100}
}

// TryStart flips the manager into the running state; it returns false when a
// run is already in flight.
func (m *Manager) TryStart() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateRunning {
		return false
	}
	now := time.Now()
	m.state = StateRunning
	m.stage = ""
	m.logs = nil
	m.video = nil
	m.lastErr = ""
	m.startedAt = &now
	return true
}

// SetStage records the stage currently executing.
func (m *Manager) SetStage(stage pipeline.Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stage = stage
}

// AddLog appends one progress line, trimming the ring.
func (m *Manager) AddLog(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, LogEntry{Timestamp: time.Now(), Message: message})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}

// SetCompleted records a successful run.
func (m *Manager) SetCompleted(v types.Video) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateCompleted
	m.video = &VideoInfo{
		FilePath:        v.FilePath,
		DurationSeconds: v.DurationSeconds,
		SizeBytes:       v.SizeBytes,
		Resolution:      v.Resolution.String(),
	}
}

// SetFailed records a failed run.
func (m *Manager) SetFailed(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateFailed
	if err != nil {
		m.lastErr = err.Error()
	}
}

// Status returns a snapshot of the current state.
func (m *Manager) Status() StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make([]LogEntry, len(m.logs))
	copy(logs, m.logs)
	return StatusResponse{
		State:     m.state,
		Stage:     m.stage,
		Logs:      logs,
		Video:     m.video,
		Error:     m.lastErr,
		StartedAt: m.startedAt,
	}
}

// logWriter adapts the Manager into the io.Writer the progress reporter
// expects in serve mode.
type logWriter struct {
	manager *Manager
}

func (w logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		if _, name, ok := strings.Cut(line, "▶ "); ok {
			if stage, err := parseStage(strings.TrimSpace(name)); err == nil {
				w.manager.SetStage(stage)
			}
		}
		w.manager.AddLog(line)
	}
	return len(p), nil
}

func parseStage(name string) (pipeline.Stage, error) {
	// Prefix match tolerates trailing ANSI styling from the reporter.
	for _, s := range pipeline.Stages() {
		if strings.HasPrefix(name, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", name)
}
