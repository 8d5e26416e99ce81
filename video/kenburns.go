package video

import (
	"fmt"
	"math"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"videogen/types"
)

// zoomDelta is the total scale change across one clip: even-indexed images
// zoom in from 1.00x to 1.08x, odd-indexed images zoom out from 1.08x to
// 1.00x.
const zoomDelta = 0.08

// kenBurns applies a continuous per-frame zoom centered on the image. The
// image is first oversized to twice the target geometry so zoompan has
// headroom, then center-cropped by the zoompan output size.
func kenBurns(s *ffmpeg.Stream, index int, seconds float64, res types.Resolution) *ffmpeg.Stream {
	frames := clipFrames(seconds)
	return s.
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d:force_original_aspect_ratio=increase", res.Width*2, res.Height*2)}).
		Filter("crop", ffmpeg.Args{fmt.Sprintf("%d:%d", res.Width*2, res.Height*2)}).
		Filter("zoompan", ffmpeg.Args{}, ffmpeg.KwArgs{
			"z":   zoomExpr(index, frames),
			"d":   frames,
			"x":   "iw/2-(iw/zoom/2)",
			"y":   "ih/2-(ih/zoom/2)",
			"s":   fmt.Sprintf("%dx%d", res.Width, res.Height),
			"fps": outputFPS,
		})
}

// staticFrame is the fallback transform: fit inside the target resolution and
// pad to it, no motion.
func staticFrame(s *ffmpeg.Stream, res types.Resolution) *ffmpeg.Stream {
	return s.
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d:force_original_aspect_ratio=decrease", res.Width, res.Height)}).
		Filter("pad", ffmpeg.Args{fmt.Sprintf("%d:%d:(ow-iw)/2:(oh-ih)/2", res.Width, res.Height)}).
		Filter("setsar", ffmpeg.Args{"1"})
}

// zoomExpr builds the linear per-frame zoom expression for zoompan. The
// denominator is the last frame index so the clip ends exactly at the target
// scale.
func zoomExpr(index, frames int) string {
	span := frames - 1
	if span < 1 {
		span = 1
	}
	if index%2 == 0 {
		return fmt.Sprintf("1.00+%.2f*on/%d", zoomDelta, span)
	}
	return fmt.Sprintf("%.2f-%.2f*on/%d", 1+zoomDelta, zoomDelta, span)
}

// clipFrames converts a clip duration to a frame count, never below one.
func clipFrames(seconds float64) int {
	frames := int(math.Round(seconds * outputFPS))
	if frames < 1 {
		return 1
	}
	return frames
}

// PerImageSeconds returns how long each of n images displays for a narration
// of the given duration.
func PerImageSeconds(durationSeconds float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return durationSeconds / float64(n)
}
