package api

import (
	"errors"
	"fmt"
	"testing"

	"videogen/pipeline"
	"videogen/types"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	if got := m.Status(); got.State != StateIdle {
		t.Fatalf("initial state = %q", got.State)
	}

	if !m.TryStart() {
		t.Fatalf("TryStart on idle manager failed")
	}
	if m.TryStart() {
		t.Fatalf("second TryStart succeeded while running")
	}

	m.SetStage(pipeline.StageImages)
	m.AddLog("Generating image 1 of 45")
	m.SetCompleted(types.Video{FilePath: "output/video_x.mp4", DurationSeconds: 180, SizeBytes: 9, Resolution: types.Resolution1080p})

	st := m.Status()
	if st.State != StateCompleted || st.Stage != pipeline.StageImages {
		t.Fatalf("status = %+v", st)
	}
	if st.Video == nil || st.Video.FilePath != "output/video_x.mp4" || st.Video.Resolution != "1920x1080" {
		t.Fatalf("video = %+v", st.Video)
	}
	if len(st.Logs) != 1 {
		t.Fatalf("logs = %+v", st.Logs)
	}

	// A finished run can be restarted, and restarting clears run state.
	if !m.TryStart() {
		t.Fatalf("TryStart after completion failed")
	}
	st = m.Status()
	if st.State != StateRunning || len(st.Logs) != 0 || st.Video != nil {
		t.Fatalf("restart did not clear state: %+v", st)
	}
}

func TestManagerSetFailed(t *testing.T) {
	m := NewManager()
	m.TryStart()
	m.SetFailed(errors.New("speech stage: Rate limit exceeded"))

	st := m.Status()
	if st.State != StateFailed || st.Error != "speech stage: Rate limit exceeded" {
		t.Fatalf("status = %+v", st)
	}
}

func TestManagerLogRing(t *testing.T) {
	m := NewManager()
	m.TryStart()
	for i := 0; i < 150; i++ {
		m.AddLog(fmt.Sprintf("line %d", i))
	}

	logs := m.Status().Logs
	if len(logs) != 100 {
		t.Fatalf("ring kept %d lines; want 100", len(logs))
	}
	if logs[0].Message != "line 50" || logs[99].Message != "line 149" {
		t.Fatalf("ring window wrong: first %q last %q", logs[0].Message, logs[99].Message)
	}
}

func TestManagerIgnoresBlankLogLines(t *testing.T) {
	m := NewManager()
	m.TryStart()
	m.AddLog("   ")
	m.AddLog("")
	if got := len(m.Status().Logs); got != 0 {
		t.Fatalf("blank lines stored: %d", got)
	}
}

func TestLogWriterSplitsLinesAndTracksStage(t *testing.T) {
	m := NewManager()
	m.TryStart()

	w := logWriter{manager: m}
	fmt.Fprintf(w, "▶ images\n  Generating image 1 of 45\n")

	st := m.Status()
	if st.Stage != pipeline.StageImages {
		t.Fatalf("stage = %q; want images", st.Stage)
	}
	if len(st.Logs) != 2 {
		t.Fatalf("logs = %+v", st.Logs)
	}
}
