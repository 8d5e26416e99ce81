// Package pipeline sequences the four generation stages and reports live
// progress and cumulative usage for a run.
package pipeline

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"videogen/types"
)

// Stage is the unit of progress reporting.
type Stage string

const (
	StageScript  Stage = "script"
	StageSpeech  Stage = "speech"
	StageImages  Stage = "images"
	StageCompile Stage = "compile"
)

// Stages lists the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageScript, StageSpeech, StageImages, StageCompile}
}

var imageProgressRe = regexp.MustCompile(`^(?:Generating|Processing) image (\d+) of (\d+)`)

var (
	stageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Reporter is a stage-aware progress sink. Adapters receive its Callback and
// post free-form messages; messages matching "Generating image N of M" render
// as a percent-complete line, everything else renders verbatim.
type Reporter struct {
	mu         sync.Mutex
	out        io.Writer
	runStart   time.Time
	stageStart map[Stage]time.Time
	current    Stage
}

// NewReporter writes progress to out; a nil writer discards output.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{
		out:        out,
		stageStart: make(map[Stage]time.Time),
	}
}

// StartStage marks a stage as running. The first call also starts the
// overall run clock.
func (r *Reporter) StartStage(stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if r.runStart.IsZero() {
		r.runStart = now
	}
	r.stageStart[stage] = now
	r.current = stage
	fmt.Fprintln(r.out, stageStyle.Render(fmt.Sprintf("▶ %s", stage)))
}

// CompleteStage marks a stage as finished, with its elapsed time.
func (r *Reporter) CompleteStage(stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	elapsed := ""
	if start, ok := r.stageStart[stage]; ok {
		elapsed = fmt.Sprintf(" (%.1fs)", time.Since(start).Seconds())
	}
	fmt.Fprintln(r.out, okStyle.Render(fmt.Sprintf("✓ %s%s", stage, elapsed)))
}

// FailStage marks a stage as failed with a user-safe message.
func (r *Reporter) FailStage(stage Stage, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, failStyle.Render(fmt.Sprintf("✗ %s: %s", stage, msg)))
}

// Update renders an adapter progress message.
func (r *Reporter) Update(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, dimStyle.Render("  "+FormatMessage(msg)))
}

// Callback returns the function handed to adapters and the compiler.
func (r *Reporter) Callback() func(string) {
	return r.Update
}

// Print writes a pre-rendered block, such as the usage panel.
func (r *Reporter) Print(block string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, block)
}

// RunDuration is the elapsed time since the first StartStage.
func (r *Reporter) RunDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runStart.IsZero() {
		return 0
	}
	return time.Since(r.runStart)
}

// Finish prints the end-of-run summary for a completed video.
func (r *Reporter) Finish(v types.Video) {
	dur := r.RunDuration()
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, okStyle.Render(fmt.Sprintf(
		"Done in %.1fs - %s (%.1fs, %.1f MB)",
		dur.Seconds(), v.FilePath, v.DurationSeconds, float64(v.SizeBytes)/(1024*1024))))
}

// FormatMessage rewrites per-image progress messages as a percent line and
// passes everything else through verbatim.
func FormatMessage(msg string) string {
	m := imageProgressRe.FindStringSubmatch(msg)
	if m == nil {
		return msg
	}
	n, err1 := strconv.Atoi(m[1])
	total, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || total <= 0 {
		return msg
	}
	return fmt.Sprintf("%3d%% - %s", n*100/total, msg)
}
