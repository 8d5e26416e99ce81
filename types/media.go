package types

import (
	"fmt"
	"strings"
)

// Script is the generated narration text for a video.
type Script struct {
	Content string
}

// Audio is a synthesized narration track. Bytes holds the encoded payload
// (typically MP3). DurationSeconds is zero when the speech service did not
// report it; the compiler probes the file in that case.
type Audio struct {
	Bytes           []byte
	DurationSeconds float64
	SizeBytes       int64
}

// Image is a single still frame produced by the image service.
type Image struct {
	Bytes     []byte
	MimeType  string
	SizeBytes int64
}

// Ext returns the file extension for the image's MIME type, defaulting to
// ".png" when the type is missing or unrecognized.
func (i Image) Ext() string {
	switch strings.ToLower(i.MimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// Video describes the finished artifact on disk.
type Video struct {
	FilePath        string
	DurationSeconds float64
	SizeBytes       int64
	Codec           string
	Resolution      Resolution
}

// Resolution is an output geometry preset.
type Resolution struct {
	Name   string
	Width  int
	Height int
}

var (
	Resolution1080p    = Resolution{Name: "1080p", Width: 1920, Height: 1080}
	Resolution720p     = Resolution{Name: "720p", Width: 1280, Height: 720}
	ResolutionPortrait = Resolution{Name: "portrait", Width: 1080, Height: 1920}
	ResolutionSquare   = Resolution{Name: "square", Width: 1080, Height: 1080}
)

// DefaultResolution is 1080p landscape.
var DefaultResolution = Resolution1080p

// Resolutions lists the supported output presets.
func Resolutions() []Resolution {
	return []Resolution{Resolution1080p, Resolution720p, ResolutionPortrait, ResolutionSquare}
}

// ParseResolution resolves a preset name like "720p" or "portrait".
func ParseResolution(name string) (Resolution, error) {
	for _, r := range Resolutions() {
		if strings.EqualFold(name, r.Name) {
			return r, nil
		}
	}
	return Resolution{}, fmt.Errorf("unknown resolution %q (supported: 1080p, 720p, portrait, square)", name)
}

// IsZero reports whether the resolution is unset.
func (r Resolution) IsZero() bool {
	return r.Width == 0 || r.Height == 0
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}
