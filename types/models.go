package types

import "fmt"

// ModelKind tags what a generation model can produce.
type ModelKind string

const (
	ModelKindText  ModelKind = "text"
	ModelKindImage ModelKind = "image"
	ModelKindVoice ModelKind = "voice"
)

// ModelInfo is metadata for an externally offered model or voice.
type ModelInfo struct {
	ID          string
	DisplayName string
	Description string
	Kind        ModelKind
}

// DurationOption is a preset video length with its derived targets.
type DurationOption struct {
	Minutes    int
	WordCount  int
	ImageCount int
}

// WordsPerMinute is the assumed narration pace used to size scripts.
const WordsPerMinute = 150

// ImagesPerMinute is the number of still frames shown per minute of video.
const ImagesPerMinute = 15

// DurationOptions lists the supported video lengths.
func DurationOptions() []DurationOption {
	opts := make([]DurationOption, 0, 3)
	for _, m := range []int{3, 5, 10} {
		opts = append(opts, DurationOption{
			Minutes:    m,
			WordCount:  m * WordsPerMinute,
			ImageCount: m * ImagesPerMinute,
		})
	}
	return opts
}

// LookupDuration resolves a requested duration in minutes against the
// supported presets.
func LookupDuration(minutes int) (DurationOption, error) {
	for _, opt := range DurationOptions() {
		if opt.Minutes == minutes {
			return opt, nil
		}
	}
	return DurationOption{}, fmt.Errorf("unsupported duration %d minutes (supported: 3, 5, 10)", minutes)
}
