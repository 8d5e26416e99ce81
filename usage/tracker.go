// Package usage tallies per-service and per-model consumption for a single
// pipeline run and derives a cost summary from pluggable pricing.
package usage

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Metric identifies what a usage event counts.
type Metric string

const (
	MetricInputTokens  Metric = "input_tokens"
	MetricOutputTokens Metric = "output_tokens"
	MetricCharacters   Metric = "characters"
	MetricImages       Metric = "images"
)

// Event is one append-only record of consumption charged to a service/model.
type Event struct {
	Service   string
	ModelID   string
	Metric    Metric
	Value     int64
	Timestamp time.Time
}

// BucketSummary aggregates events for one service or one model.
type BucketSummary struct {
	Metrics map[Metric]int64
	Cost    float64
}

// Summary is a consistent snapshot of the tracker's state.
type Summary struct {
	TotalCost   float64
	ByService   map[string]BucketSummary
	ByModel     map[string]BucketSummary
	EventsCount int
}

// Tracker is a thread-safe usage accountant. The zero value is not usable;
// call NewTracker.
type Tracker struct {
	mu        sync.Mutex
	events    []Event
	overrides map[string]Pricing
	now       func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

var (
	defaultTracker     *Tracker
	defaultTrackerOnce sync.Once
)

// Default returns the process-wide tracker shared by all adapters.
func Default() *Tracker {
	defaultTrackerOnce.Do(func() {
		defaultTracker = NewTracker()
	})
	return defaultTracker
}

// Track appends one event. Unknown metric strings are tolerated and mapped to
// input_tokens; negative values are dropped. Both cases log at debug level so
// a misbehaving adapter is visible without failing the run.
func (t *Tracker) Track(service, modelID string, metric string, value int64) {
	if value < 0 {
		log.Debug().Str("service", service).Str("model", modelID).Int64("value", value).
			Msg("dropping negative usage value")
		return
	}
	m := Metric(metric)
	switch m {
	case MetricInputTokens, MetricOutputTokens, MetricCharacters, MetricImages:
	default:
		log.Debug().Str("metric", metric).Msg("unknown usage metric, counting as input_tokens")
		m = MetricInputTokens
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, Event{
		Service:   service,
		ModelID:   modelID,
		Metric:    m,
		Value:     value,
		Timestamp: t.now(),
	})
}

// Events returns a copy of the event log in append order.
func (t *Tracker) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Reset clears the event log so the next summary reflects only one run.
// Pricing overrides survive a reset.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

// ConfigurePricing replaces per-model pricing. Overrides apply on top of the
// built-in table; pass nil entries removed via ResetPricing.
func (t *Tracker) ConfigurePricing(overrides map[string]Pricing) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.overrides == nil {
		t.overrides = make(map[string]Pricing, len(overrides))
	}
	for id, p := range overrides {
		t.overrides[id] = p
	}
}

// ResetPricing drops all pricing overrides, restoring the built-in table.
func (t *Tracker) ResetPricing() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overrides = nil
}

// Summary aggregates the event log by service and by model simultaneously.
// Events are copied under the lock before aggregation so concurrent Track
// calls cannot tear the snapshot.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	events := make([]Event, len(t.events))
	copy(events, t.events)
	overrides := make(map[string]Pricing, len(t.overrides))
	for id, p := range t.overrides {
		overrides[id] = p
	}
	t.mu.Unlock()

	s := Summary{
		ByService:   make(map[string]BucketSummary),
		ByModel:     make(map[string]BucketSummary),
		EventsCount: len(events),
	}

	addTo := func(m map[string]BucketSummary, key string, ev Event, cost float64) {
		b, ok := m[key]
		if !ok {
			b = BucketSummary{Metrics: make(map[Metric]int64)}
		}
		b.Metrics[ev.Metric] += ev.Value
		b.Cost += cost
		m[key] = b
	}

	for _, ev := range events {
		cost := eventCost(ev, overrides)
		s.TotalCost += cost
		addTo(s.ByService, ev.Service, ev, cost)
		addTo(s.ByModel, ev.ModelID, ev, cost)
	}
	return s
}
