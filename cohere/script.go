// Package cohere is an alternate script provider on the Cohere chat API,
// selected with SCRIPT_PROVIDER=cohere. It honors the same adapter contract
// as the Gemini script service.
package cohere

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	coherecore "github.com/cohere-ai/cohere-go/v2/core"

	"videogen/errs"
	"videogen/types"
	"videogen/usage"
)

// ServiceName identifies this adapter in usage events.
const ServiceName = "cohere"

// DefaultModel is used when the caller selects no text model.
const DefaultModel = "command-r"

// ScriptService generates narration scripts via Cohere chat.
type ScriptService struct {
	client    *cohereclient.Client
	tracker   *usage.Tracker
	sanitizer *errs.Sanitizer
}

// NewScriptService builds the adapter. The API key is required.
func NewScriptService(apiKey string, tracker *usage.Tracker) (*ScriptService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errs.NewConfigurationError("cohere API key is not configured (set COHERE_API_KEY)")
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	)
	return &ScriptService{
		client:    client,
		tracker:   tracker,
		sanitizer: errs.NewSanitizer(apiKey),
	}, nil
}

// GenerateScript produces a narration script for the prompt. The SDK owns
// transport retries; upstream statuses are translated to user-safe messages.
func (s *ScriptService) GenerateScript(ctx context.Context, prompt, modelID string, durationMinutes int, progress, warn func(string)) (types.Script, error) {
	if strings.TrimSpace(prompt) == "" {
		return types.Script{}, errs.NewValidationError("prompt must not be empty")
	}
	model := modelID
	if model == "" {
		model = DefaultModel
	}

	if progress != nil {
		progress("Generating script...")
	}

	message := fmt.Sprintf("Write a narration script for a video about: %s.\n\n"+
		"Write flowing prose meant to be read aloud. Separate distinct visual scenes "+
		"with blank lines. Do not include stage directions, headings, or markdown.", prompt)
	if durationMinutes > 0 {
		message += fmt.Sprintf("\n\nThe narration should run about %d minutes when read aloud, approximately %d words.",
			durationMinutes, durationMinutes*types.WordsPerMinute)
	}

	resp, err := s.client.Chat(ctx, &cohere.ChatRequest{
		Message: message,
		Model:   &model,
	})
	if err != nil {
		return types.Script{}, errs.NewScriptServiceError(s.userMessage(err), err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return types.Script{}, errs.NewScriptServiceError("Script service returned an empty response", nil)
	}

	if resp.Meta != nil && resp.Meta.Tokens != nil {
		if resp.Meta.Tokens.InputTokens != nil {
			s.tracker.Track(ServiceName, model, string(usage.MetricInputTokens), int64(*resp.Meta.Tokens.InputTokens))
		}
		if resp.Meta.Tokens.OutputTokens != nil {
			s.tracker.Track(ServiceName, model, string(usage.MetricOutputTokens), int64(*resp.Meta.Tokens.OutputTokens))
		}
	}

	return types.Script{Content: strings.TrimSpace(resp.Text)}, nil
}

func (s *ScriptService) userMessage(err error) string {
	var apiErr *coherecore.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return "Authentication failed"
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return "Rate limit exceeded"
		case apiErr.StatusCode >= 500:
			return "Server error"
		}
	}
	return s.sanitizer.Clean("Script generation failed")
}
