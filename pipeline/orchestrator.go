package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"videogen/errs"
	"videogen/types"
	"videogen/usage"
	"videogen/video"
)

// ScriptGenerator produces a narration script from a topic prompt.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, prompt, modelID string, durationMinutes int, progress, warn func(string)) (types.Script, error)
}

// SpeechGenerator synthesizes narration audio for a script.
type SpeechGenerator interface {
	GenerateSpeech(ctx context.Context, text, voiceID string, progress func(string)) (types.Audio, error)
}

// ImageGenerator produces ordered still frames keyed to the script.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, script types.Script, modelID string, targetCount int, progress, warn func(string)) ([]types.Image, error)
}

// Compiler fuses images and audio into the final video file.
type Compiler interface {
	Compile(ctx context.Context, images []types.Image, audio types.Audio, outputPath string, opts video.Options) (types.Video, error)
}

// FFmpegCompiler is the production Compiler.
type FFmpegCompiler struct{}

// Compile implements Compiler via the video package.
func (FFmpegCompiler) Compile(ctx context.Context, images []types.Image, audio types.Audio, outputPath string, opts video.Options) (types.Video, error) {
	return video.Compile(ctx, images, audio, outputPath, opts)
}

// Request holds one generation run's parameters. Zero values select adapter
// defaults; DurationMinutes must be 0 or one of the supported presets.
type Request struct {
	Prompt          string
	VoiceID         string
	TextModelID     string
	ImageModelID    string
	DurationMinutes int
	Resolution      types.Resolution
	DisableZoom     bool
}

// Generator drives the four stages in order: script, speech, images,
// compile. It owns no mutable state between runs apart from the usage
// tracker, which it resets before every run.
type Generator struct {
	scripts   ScriptGenerator
	speech    SpeechGenerator
	images    ImageGenerator
	compiler  Compiler
	tracker   *usage.Tracker
	reporter  *Reporter
	outputDir string
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithOutputDir overrides the directory the final video is written to.
func WithOutputDir(dir string) GeneratorOption {
	return func(g *Generator) { g.outputDir = dir }
}

// New assembles a Generator from its stage adapters.
func New(scripts ScriptGenerator, speech SpeechGenerator, images ImageGenerator, compiler Compiler,
	tracker *usage.Tracker, reporter *Reporter, opts ...GeneratorOption) *Generator {
	g := &Generator{
		scripts:   scripts,
		speech:    speech,
		images:    images,
		compiler:  compiler,
		tracker:   tracker,
		reporter:  reporter,
		outputDir: "output",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs the pipeline to completion and returns the finished video.
// Any stage error aborts the run with the failing stage annotated and the
// original error kind preserved; the usage panel is emitted either way.
func (g *Generator) Generate(ctx context.Context, req Request) (types.Video, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return types.Video{}, errs.NewValidationError("prompt must not be empty")
	}
	if req.DurationMinutes != 0 {
		if _, err := types.LookupDuration(req.DurationMinutes); err != nil {
			return types.Video{}, errs.NewValidationError("%s", err.Error())
		}
	}

	g.tracker.Reset()
	defer g.emitUsage()

	progress := g.reporter.Callback()
	warn := func(msg string) { g.reporter.Update("Warning: " + msg) }

	var script types.Script
	if err := g.stage(StageScript, func() (err error) {
		script, err = g.scripts.GenerateScript(ctx, req.Prompt, req.TextModelID, req.DurationMinutes, progress, warn)
		return err
	}); err != nil {
		return types.Video{}, err
	}

	var audio types.Audio
	if err := g.stage(StageSpeech, func() (err error) {
		audio, err = g.speech.GenerateSpeech(ctx, script.Content, req.VoiceID, progress)
		return err
	}); err != nil {
		return types.Video{}, err
	}

	targetImages := 0
	if req.DurationMinutes > 0 {
		targetImages = req.DurationMinutes * types.ImagesPerMinute
	}
	var images []types.Image
	if err := g.stage(StageImages, func() (err error) {
		images, err = g.images.GenerateImages(ctx, script, req.ImageModelID, targetImages, progress, warn)
		return err
	}); err != nil {
		return types.Video{}, err
	}

	outputPath, err := g.outputPath()
	if err != nil {
		g.reporter.FailStage(StageCompile, err.Error())
		return types.Video{}, fmt.Errorf("%s stage: %w", StageCompile, err)
	}

	var result types.Video
	if err := g.stage(StageCompile, func() (err error) {
		result, err = g.compiler.Compile(ctx, images, audio, outputPath, video.Options{
			Resolution: req.Resolution,
			EnableZoom: !req.DisableZoom,
			Progress:   progress,
		})
		return err
	}); err != nil {
		return types.Video{}, err
	}

	g.reporter.Finish(result)
	return result, nil
}

// stage runs one stage with start/complete/fail reporting. Errors keep their
// kind and gain the failing stage as context.
func (g *Generator) stage(s Stage, fn func() error) error {
	g.reporter.StartStage(s)
	if err := fn(); err != nil {
		g.reporter.FailStage(s, err.Error())
		log.Error().Err(err).Str("stage", string(s)).Msg("pipeline stage failed")
		return fmt.Errorf("%s stage: %w", s, err)
	}
	g.reporter.CompleteStage(s)
	return nil
}

// outputPath creates the output directory and picks a timestamped file name,
// adding a random suffix when a run lands on an existing name.
func (g *Generator) outputPath() (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", errs.NewCompilationError(fmt.Sprintf("cannot create output directory %s", g.outputDir), err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(g.outputDir, fmt.Sprintf("video_%s.mp4", stamp))
	if _, err := os.Stat(path); err == nil {
		path = filepath.Join(g.outputDir, fmt.Sprintf("video_%s_%s.mp4", stamp, uuid.NewString()[:8]))
	}
	return path, nil
}

// emitUsage renders the final usage panel when any events were recorded.
func (g *Generator) emitUsage() {
	sum := g.tracker.Summary()
	if sum.EventsCount == 0 {
		return
	}
	g.reporter.Print(RenderUsage(sum))
}
