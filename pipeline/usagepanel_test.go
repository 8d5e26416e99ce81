package pipeline

import (
	"strings"
	"testing"

	"videogen/usage"
)

func TestRenderUsage(t *testing.T) {
	tr := usage.NewTracker()
	tr.Track("gemini", "gemini-2.0-flash", "input_tokens", 1200)
	tr.Track("gemini", "gemini-2.0-flash", "output_tokens", 3400)
	tr.Track("gemini", "gemini-2.0-flash", "images", 2)
	tr.Track("elevenlabs", "eleven_multilingual_v2", "characters", 5000)

	out := RenderUsage(tr.Summary())

	for _, want := range []string{
		"Usage",
		"gemini-2.0-flash",
		"input_tokens=1200",
		"output_tokens=3400",
		"images=2",
		"eleven_multilingual_v2",
		"characters=5000",
		"(4 events)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("panel missing %q:\n%s", want, out)
		}
	}

	// Subscription-metered speech shows no per-model dollar figure.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "eleven_multilingual_v2") && strings.Contains(line, "$") {
			t.Fatalf("zero-cost bucket rendered a price: %q", line)
		}
	}
}

func TestRenderUsageSortsModels(t *testing.T) {
	tr := usage.NewTracker()
	tr.Track("gemini", "zeta-model", "input_tokens", 1)
	tr.Track("gemini", "alpha-model", "input_tokens", 1)

	out := RenderUsage(tr.Summary())
	if strings.Index(out, "alpha-model") > strings.Index(out, "zeta-model") {
		t.Fatalf("models not sorted:\n%s", out)
	}
}
