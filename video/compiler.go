// Package video fuses an ordered image sequence and one audio track into a
// single MP4 using ffmpeg. Each image displays for an equal share of the
// audio duration, with an optional Ken-Burns zoom transform.
package video

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"videogen/errs"
	"videogen/types"
)

const (
	outputFPS    = 24
	videoCodec   = "libx264"
	audioCodec   = "aac"
	audioBitrate = "192k"
)

// Options controls a compile run.
type Options struct {
	Resolution types.Resolution
	EnableZoom bool
	Progress   func(string)
}

// Compile renders images plus audio into an H.264/AAC MP4 at outputPath.
// Scratch files live in a temporary directory that is removed on every exit
// path. Image order is preserved; each image shows for duration/len(images)
// seconds so the visual track exactly covers the narration.
func Compile(ctx context.Context, images []types.Image, audio types.Audio, outputPath string, opts Options) (types.Video, error) {
	if len(images) == 0 {
		return types.Video{}, errs.NewValidationError("at least one image is required")
	}
	if len(audio.Bytes) == 0 {
		return types.Video{}, errs.NewValidationError("audio with non-empty bytes is required")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return types.Video{}, errs.NewCompilationError("ffmpeg encoder required but not found; install ffmpeg and ensure it is on PATH", err)
	}

	res := opts.Resolution
	if res.IsZero() {
		res = types.DefaultResolution
	}

	tmpDir, err := os.MkdirTemp("", "videogen-*")
	if err != nil {
		return types.Video{}, errs.NewCompilationError("failed to create scratch directory", err)
	}
	defer os.RemoveAll(tmpDir)

	audioPath := filepath.Join(tmpDir, "narration.mp3")
	if err := os.WriteFile(audioPath, audio.Bytes, 0o644); err != nil {
		return types.Video{}, errs.NewCompilationError("failed to write scratch audio", err)
	}

	duration := audio.DurationSeconds
	if duration <= 0 {
		duration, err = probeDuration(audioPath)
		if err != nil {
			return types.Video{}, errs.NewCompilationError("failed to read audio duration", err)
		}
	}
	perImage := duration / float64(len(images))

	clips := make([]string, 0, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return types.Video{}, err
		}
		imgPath := filepath.Join(tmpDir, fmt.Sprintf("frame_%03d%s", i, img.Ext()))
		if err := os.WriteFile(imgPath, img.Bytes, 0o644); err != nil {
			return types.Video{}, errs.NewCompilationError("failed to write scratch image", err)
		}
		clipPath := filepath.Join(tmpDir, fmt.Sprintf("clip_%03d.mp4", i))
		if err := renderClip(imgPath, clipPath, i, perImage, res, opts); err != nil {
			return types.Video{}, err
		}
		clips = append(clips, clipPath)
	}

	// Mux into the scratch dir first so a failed encode never leaves a
	// partial file at outputPath.
	muxPath := filepath.Join(tmpDir, "muxed.mp4")
	if err := muxOutput(clips, audioPath, muxPath, tmpDir); err != nil {
		return types.Video{}, err
	}
	if err := moveFile(muxPath, outputPath); err != nil {
		return types.Video{}, errs.NewCompilationError("failed to place compiled video", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return types.Video{}, errs.NewCompilationError("compiled video is missing", err)
	}
	actual, err := probeDuration(outputPath)
	if err != nil {
		actual = duration
	}

	return types.Video{
		FilePath:        outputPath,
		DurationSeconds: actual,
		SizeBytes:       info.Size(),
		Codec:           "h264",
		Resolution:      res,
	}, nil
}

// renderClip encodes one still image into a silent clip of the given
// duration. When zoom is enabled and the zoom render fails, it falls back to
// a static resize and reports the fallback through the progress callback.
func renderClip(imgPath, clipPath string, index int, seconds float64, res types.Resolution, opts Options) error {
	if opts.EnableZoom {
		if err := runClip(kenBurns(clipInput(imgPath, seconds), index, seconds, res), clipPath); err == nil {
			return nil
		} else if opts.Progress != nil {
			opts.Progress(fmt.Sprintf("Warning: zoom failed for image %d, using static frame", index+1))
		}
	}
	if err := runClip(staticFrame(clipInput(imgPath, seconds), res), clipPath); err != nil {
		return wrapFfmpegErr(err, clipPath)
	}
	return nil
}

func clipInput(imgPath string, seconds float64) *ffmpeg.Stream {
	return ffmpeg.Input(imgPath, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": outputFPS,
		"t":         fmt.Sprintf("%.3f", seconds),
	})
}

func runClip(stream *ffmpeg.Stream, clipPath string) error {
	return stream.
		Output(clipPath, ffmpeg.KwArgs{
			"c:v":     videoCodec,
			"pix_fmt": "yuv420p",
			"r":       outputFPS,
			"an":      "",
		}).
		OverWriteOutput().
		Run()
}

// muxOutput concatenates the clips in order and muxes in the narration.
// Clips are already H.264 so the video stream is copied, not re-encoded.
func muxOutput(clips []string, audioPath, outputPath, tmpDir string) error {
	listPath := filepath.Join(tmpDir, "clips.txt")
	var lines []string
	for _, clip := range clips {
		lines = append(lines, fmt.Sprintf("file '%s'", filepath.ToSlash(clip)))
	}
	if err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return errs.NewCompilationError("failed to write concat list", err)
	}

	videoIn := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"})
	audioIn := ffmpeg.Input(audioPath)

	err := ffmpeg.Output([]*ffmpeg.Stream{videoIn, audioIn}, outputPath, ffmpeg.KwArgs{
		"c:v":      "copy",
		"c:a":      audioCodec,
		"b:a":      audioBitrate,
		"movflags": "+faststart",
		"shortest": "",
	}).OverWriteOutput().Run()
	if err != nil {
		return wrapFfmpegErr(err, outputPath)
	}
	return nil
}

// moveFile renames src to dst, falling back to a copy when the scratch dir
// sits on a different filesystem than the output dir.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// wrapFfmpegErr maps encoder failures to CompilationError without leaking
// ffmpeg's own formatting; permission problems surface the offending path.
func wrapFfmpegErr(err error, path string) error {
	if os.IsPermission(err) || strings.Contains(strings.ToLower(err.Error()), "permission denied") {
		return errs.NewCompilationError(fmt.Sprintf("cannot write %s: permission denied", path), err)
	}
	return errs.NewCompilationError("video encoding failed", err)
}
