package usage

import (
	"math"
	"sync"
	"testing"
)

func TestTrackAggregatesByServiceAndModel(t *testing.T) {
	tr := NewTracker()
	tr.Track("gemini", "gemini-2.0-flash", "input_tokens", 100)
	tr.Track("gemini", "gemini-2.0-flash", "output_tokens", 400)
	tr.Track("gemini", "gemini-2.0-flash", "images", 3)
	tr.Track("elevenlabs", "eleven_multilingual_v2", "characters", 5000)

	s := tr.Summary()
	if s.EventsCount != 4 {
		t.Fatalf("EventsCount = %d; want 4", s.EventsCount)
	}

	g := s.ByService["gemini"]
	if g.Metrics[MetricInputTokens] != 100 || g.Metrics[MetricOutputTokens] != 400 || g.Metrics[MetricImages] != 3 {
		t.Fatalf("gemini bucket = %+v", g.Metrics)
	}
	e := s.ByService["elevenlabs"]
	if e.Metrics[MetricCharacters] != 5000 {
		t.Fatalf("elevenlabs bucket = %+v", e.Metrics)
	}
	if _, ok := s.ByModel["gemini-2.0-flash"]; !ok {
		t.Fatalf("per-model bucket missing: %v", s.ByModel)
	}
}

func TestSummaryCostFollowsPricing(t *testing.T) {
	tr := NewTracker()
	tr.Track("gemini", "gemini-2.0-flash", "input_tokens", 1_000_000)
	tr.Track("gemini", "gemini-2.0-flash", "output_tokens", 1_000_000)
	tr.Track("gemini", "gemini-2.0-flash", "images", 2)

	s := tr.Summary()
	want := 0.10 + 0.40 + 2*0.039
	if math.Abs(s.TotalCost-want) > 1e-9 {
		t.Fatalf("TotalCost = %v; want %v", s.TotalCost, want)
	}
}

func TestTotalCostMatchesBucketSums(t *testing.T) {
	tr := NewTracker()
	tr.Track("gemini", "gemini-2.5-pro", "input_tokens", 123_456)
	tr.Track("gemini", "gemini-2.0-flash-exp-image-generation", "images", 5)
	tr.Track("cohere", "command-r", "output_tokens", 98_765)
	tr.Track("elevenlabs", "eleven_multilingual_v2", "characters", 42_000)

	s := tr.Summary()

	var byService, byModel float64
	for _, b := range s.ByService {
		byService += b.Cost
	}
	for _, b := range s.ByModel {
		byModel += b.Cost
	}
	if math.Abs(s.TotalCost-byService) > 1e-9 || math.Abs(s.TotalCost-byModel) > 1e-9 {
		t.Fatalf("TotalCost %v != service sum %v or model sum %v", s.TotalCost, byService, byModel)
	}
}

func TestTrackToleratesBadInput(t *testing.T) {
	tr := NewTracker()
	tr.Track("gemini", "gemini-2.0-flash", "flux_capacitors", 7)
	tr.Track("gemini", "gemini-2.0-flash", "input_tokens", -5)

	events := tr.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Metric != MetricInputTokens || events[0].Value != 7 {
		t.Fatalf("unknown metric not mapped to input_tokens: %+v", events[0])
	}
}

func TestResetClearsEventsButKeepsPricing(t *testing.T) {
	tr := NewTracker()
	tr.ConfigurePricing(map[string]Pricing{"custom-model": {PerImage: 1.5}})
	tr.Track("gemini", "custom-model", "images", 2)

	tr.Reset()
	if got := tr.Summary().EventsCount; got != 0 {
		t.Fatalf("EventsCount after reset = %d; want 0", got)
	}

	tr.Track("gemini", "custom-model", "images", 2)
	if got := tr.Summary().TotalCost; math.Abs(got-3.0) > 1e-9 {
		t.Fatalf("pricing override lost across reset: cost = %v", got)
	}
}

func TestResetPricingRestoresDefaults(t *testing.T) {
	tr := NewTracker()
	tr.ConfigurePricing(map[string]Pricing{"imagen-3": {PerImage: 99}})
	tr.Track("gemini", "imagen-3", "images", 1)
	if got := tr.Summary().TotalCost; math.Abs(got-99) > 1e-9 {
		t.Fatalf("override not applied: %v", got)
	}

	tr.ResetPricing()
	if got := tr.Summary().TotalCost; math.Abs(got-0.04) > 1e-9 {
		t.Fatalf("defaults not restored: %v", got)
	}
}

func TestPricingForPrefersLongestPrefix(t *testing.T) {
	cases := []struct {
		name    string
		modelID string
		wantIn  float64
	}{
		{"exact", "gemini-2.5-pro", 1.25},
		{"prefix", "gemini-2.0-flash-001", 0.10},
		{"longest prefix wins", "gemini-2.5-flash-lite", 0.30},
		{"unknown model is free", "mystery-model", 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := pricingFor(c.modelID, nil)
			if p.InputPerMillion != c.wantIn {
				t.Fatalf("pricingFor(%q).InputPerMillion = %v; want %v", c.modelID, p.InputPerMillion, c.wantIn)
			}
		})
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Track("gemini", "gemini-2.0-flash", "input_tokens", 1)
				_ = tr.Summary()
			}
		}()
	}
	wg.Wait()

	if got := tr.Summary().EventsCount; got != 800 {
		t.Fatalf("EventsCount = %d; want 800", got)
	}
}
