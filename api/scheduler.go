package api

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"videogen/pipeline"
	"videogen/research"
)

// Scheduler triggers feed-driven generation runs on a cron schedule:
// fetch the latest topic from the configured feed, build a prompt from it,
// and submit through the same path as API requests.
type Scheduler struct {
	cron    *cron.Cron
	server  *Server
	feedURL string
	minutes int
}

// NewScheduler wires a cron job against the server. spec is a standard
// five-field cron expression.
func NewScheduler(server *Server, spec, feedURL string, durationMinutes int) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		server:  server,
		feedURL: feedURL,
		minutes: durationMinutes,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Str("feed", s.feedURL).Msg("feed scheduler started")
}

// Stop halts the cron loop; running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) run() {
	topic, err := research.LatestTopic(s.feedURL)
	if err != nil {
		log.Error().Err(err).Str("feed", s.feedURL).Msg("fetch feed topic")
		return
	}

	prompt := research.BuildPrompt(topic)
	log.Info().Str("topic", topic.Title).Msg("scheduled generation from feed topic")

	if err := s.server.Submit(pipeline.Request{
		Prompt:          prompt,
		DurationMinutes: s.minutes,
	}); err != nil {
		log.Warn().Err(err).Msg("scheduled run skipped")
	}
}
