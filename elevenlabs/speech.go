// Package elevenlabs fronts the ElevenLabs text-to-speech API behind the
// common adapter contract: validation first, shared retry policy, user-safe
// error translation, and character usage reporting.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"videogen/errs"
	"videogen/retry"
	"videogen/types"
	"videogen/usage"
)

// ServiceName identifies this adapter in usage events.
const ServiceName = "elevenlabs"

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.elevenlabs.io/v1"

const (
	// DefaultVoiceID is used when the caller selects no voice.
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	// voiceModelID is the speech model usage events are charged against.
	voiceModelID = "eleven_multilingual_v2"
)

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type listVoicesResponse struct {
	Voices []wireVoice `json:"voices"`
}

type wireVoice struct {
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Client calls the ElevenLabs API. The voice catalog is cached per instance
// with a 60-second TTL.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
	sanitizer  *errs.Sanitizer
	tracker    *usage.Tracker

	mu      sync.Mutex
	voices  []types.ModelInfo
	fetched time.Time
	now     func() time.Time
}

const voicesTTL = 60 * time.Second

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy overrides the adapter retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// NewClient builds a Client. The API key is required.
func NewClient(apiKey string, tracker *usage.Tracker, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errs.NewConfigurationError("elevenlabs API key is not configured (set ELEVENLABS_API_KEY)")
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		policy:     retry.DefaultPolicy,
		sanitizer:  errs.NewSanitizer(apiKey),
		tracker:    tracker,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GenerateSpeech synthesizes narration for text. An empty voiceID selects the
// default voice; an unknown voiceID surfaces as a user-safe service error
// naming the voice. Characters are recorded as raw code points.
func (c *Client) GenerateSpeech(ctx context.Context, text, voiceID string, progress func(string)) (types.Audio, error) {
	if strings.TrimSpace(text) == "" {
		return types.Audio{}, errs.NewValidationError("speech text must not be empty")
	}
	voice := voiceID
	if voice == "" {
		voice = DefaultVoiceID
	}

	if progress != nil {
		progress("Synthesizing narration...")
	}

	payload, err := json.Marshal(speechRequest{
		Text:    text,
		ModelID: voiceModelID,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return types.Audio{}, fmt.Errorf("marshal speech request: %w", err)
	}

	var audio []byte
	err = retry.Do(ctx, c.policy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech/"+voice, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("xi-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "audio/mpeg")

		res, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		raw, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		if res.StatusCode != http.StatusOK {
			return &httpError{status: res.StatusCode}
		}
		audio = raw
		return nil
	})
	if err != nil {
		return types.Audio{}, errs.NewSpeechServiceError(c.userMessage(err, voice), err)
	}
	if len(audio) == 0 {
		return types.Audio{}, errs.NewSpeechServiceError("Speech service returned empty audio", nil)
	}

	c.tracker.Track(ServiceName, voiceModelID, string(usage.MetricCharacters), int64(len([]rune(text))))

	return types.Audio{Bytes: audio, SizeBytes: int64(len(audio))}, nil
}

// ListVoices returns the available voices with a 60-second TTL cache.
func (c *Client) ListVoices(ctx context.Context) ([]types.ModelInfo, error) {
	c.mu.Lock()
	if c.voices != nil && c.now().Sub(c.fetched) < voicesTTL {
		cached := c.voices
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var res listVoicesResponse
	err := retry.Do(ctx, c.policy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/voices", nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("xi-api-key", c.apiKey)

		r, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer r.Body.Close()
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return err
		}
		if r.StatusCode != http.StatusOK {
			return &httpError{status: r.StatusCode}
		}
		return json.Unmarshal(raw, &res)
	})
	if err != nil {
		return nil, errs.NewSpeechServiceError(c.userMessage(err, "voice listing"), err)
	}

	voices := make([]types.ModelInfo, 0, len(res.Voices))
	for _, v := range res.Voices {
		voices = append(voices, types.ModelInfo{
			ID:          v.VoiceID,
			DisplayName: v.Name,
			Description: v.Description,
			Kind:        types.ModelKindVoice,
		})
	}

	c.mu.Lock()
	c.voices = voices
	c.fetched = c.now()
	c.mu.Unlock()
	return voices, nil
}

// ValidateVoiceID reports whether id is present in the cached voice listing.
func (c *Client) ValidateVoiceID(ctx context.Context, id string) (bool, error) {
	voices, err := c.ListVoices(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range voices {
		if v.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type httpError struct {
	status int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("upstream status %d", e.status)
}

// userMessage rewrites a failure into a user-safe message; subject names what
// was being synthesized or listed.
func (c *Client) userMessage(err error, subject string) string {
	var he *httpError
	if errors.As(err, &he) {
		switch {
		case he.status == http.StatusUnauthorized || he.status == http.StatusForbidden:
			return "Authentication failed"
		case he.status == http.StatusTooManyRequests:
			return "Rate limit exceeded"
		case he.status == http.StatusBadRequest || he.status == http.StatusNotFound:
			return fmt.Sprintf("Speech service rejected the request for %q", subject)
		case he.status >= 500:
			return "Server error"
		}
		return c.sanitizer.Clean(fmt.Sprintf("Speech generation failed (status %d)", he.status))
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "Request timed out"
	}
	return c.sanitizer.Clean("Speech generation failed")
}
