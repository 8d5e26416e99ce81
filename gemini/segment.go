package gemini

import (
	"regexp"
	"strings"
)

// StyleSuffix biases every image prompt toward photorealistic, cinematic
// framing at the output aspect ratio.
const StyleSuffix = ", photorealistic, cinematic lighting, high detail, 16:9 aspect ratio"

const (
	maxSegmentChars  = 200
	minSentenceChars = 10
)

var (
	blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]?`)
)

// SegmentScript splits narration text into image prompt segments. Blank-line
// paragraph boundaries win; a single paragraph falls back to line boundaries;
// a single line is one segment. Paragraphs longer than 200 characters are
// reduced to their first substantive sentence.
func SegmentScript(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	segments := splitNonEmpty(blankLineRe.Split(content, -1))
	if len(segments) <= 1 && strings.Contains(content, "\n") {
		segments = splitNonEmpty(strings.Split(content, "\n"))
	}
	if len(segments) == 0 {
		segments = []string{content}
	}

	for i, seg := range segments {
		if len(seg) > maxSegmentChars {
			segments[i] = firstSentence(seg)
		}
	}
	return segments
}

// ImagePrompts returns the script's segments with the style suffix appended.
func ImagePrompts(content string) []string {
	segments := SegmentScript(content)
	prompts := make([]string, len(segments))
	for i, seg := range segments {
		prompts[i] = seg + StyleSuffix
	}
	return prompts
}

// AdjustSegmentCount resizes segments to target: cycling from the start when
// the list is too short, truncating when too long. A non-positive target or
// an empty list returns the input unchanged.
func AdjustSegmentCount(segments []string, target int) []string {
	if target <= 0 || len(segments) == 0 || target == len(segments) {
		return segments
	}
	if target < len(segments) {
		return segments[:target]
	}
	out := make([]string, 0, target)
	for i := 0; i < target; i++ {
		out = append(out, segments[i%len(segments)])
	}
	return out
}

func splitNonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// firstSentence returns the first sentence longer than minSentenceChars, or
// failing that a hard cut at the segment budget.
func firstSentence(seg string) string {
	for _, m := range sentenceRe.FindAllString(seg, -1) {
		s := strings.TrimSpace(m)
		if len(s) > minSentenceChars {
			return s
		}
	}
	return strings.TrimSpace(seg[:maxSegmentChars])
}
