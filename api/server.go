// Package api exposes the generation pipeline over HTTP for serve mode:
// submit a run, poll its status, health check. Scheduled feed-driven runs
// share the same submission path.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"videogen/pipeline"
	"videogen/types"
)

// Runner executes one generation run; *pipeline.Generator satisfies it.
type Runner interface {
	Generate(ctx context.Context, req pipeline.Request) (types.Video, error)
}

// GenerateRequest is the POST /api/generate payload.
type GenerateRequest struct {
	Prompt          string `json:"prompt" binding:"required"`
	VoiceID         string `json:"voice_id"`
	TextModelID     string `json:"text_model_id"`
	ImageModelID    string `json:"image_model_id"`
	DurationMinutes int    `json:"duration_minutes"`
	Resolution      string `json:"resolution"`
	DisableZoom     bool   `json:"disable_zoom"`
}

// Server handles serve-mode HTTP requests. Runs execute on a small worker
// pool so the handler can return 202 immediately.
type Server struct {
	newRunner func(progress *pipeline.Reporter) Runner
	state     *Manager
	pool      *ants.Pool
}

// NewServer builds a Server. newRunner constructs a Runner wired to the
// given reporter, letting each run stream progress into the state manager.
func NewServer(newRunner func(progress *pipeline.Reporter) Runner) (*Server, error) {
	pool, err := ants.NewPool(2)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Server{
		newRunner: newRunner,
		state:     NewManager(),
		pool:      pool,
	}, nil
}

// Router constructs the gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/status", s.handleStatus)
	r.POST("/api/generate", s.handleGenerate)
	return r
}

// Close releases the worker pool.
func (s *Server) Close() {
	s.pool.Release()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Status())
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run := pipeline.Request{
		Prompt:          req.Prompt,
		VoiceID:         req.VoiceID,
		TextModelID:     req.TextModelID,
		ImageModelID:    req.ImageModelID,
		DurationMinutes: req.DurationMinutes,
		DisableZoom:     req.DisableZoom,
	}
	if req.Resolution != "" {
		res, err := types.ParseResolution(req.Resolution)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		run.Resolution = res
	}

	if err := s.Submit(run); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "generation started"})
}

// Submit queues one run, rejecting it when another is in flight.
func (s *Server) Submit(run pipeline.Request) error {
	if !s.state.TryStart() {
		return fmt.Errorf("a generation run is already in progress")
	}

	err := s.pool.Submit(func() {
		reporter := pipeline.NewReporter(logWriter{manager: s.state})
		runner := s.newRunner(reporter)
		video, err := runner.Generate(context.Background(), run)
		if err != nil {
			log.Error().Err(err).Msg("generation run failed")
			s.state.SetFailed(err)
			return
		}
		s.state.SetCompleted(video)
	})
	if err != nil {
		s.state.SetFailed(err)
		return fmt.Errorf("queue generation: %w", err)
	}
	return nil
}
