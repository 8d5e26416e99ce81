// Package config loads environment configuration for the generation
// pipeline. Secrets are env-only; .env files are honored for local use via
// godotenv in main.
package config

import (
	"os"
	"strings"

	"videogen/errs"
)

// Script provider selection values.
const (
	ProviderGemini = "gemini"
	ProviderCohere = "cohere"
)

// Config is the process configuration.
type Config struct {
	GeminiAPIKey     string
	ElevenLabsAPIKey string
	CohereAPIKey     string

	// ScriptProvider picks the text service: gemini (default) or cohere.
	ScriptProvider string

	OutputDir string

	// Optional publication targets.
	S3Bucket              string
	S3Region              string
	YouTubeServiceAccount string

	// Serve mode.
	ListenAddr   string
	FeedSchedule string
	FeedURL      string
}

// Load reads configuration from the environment. Generation credentials are
// required; publication and serve settings are optional.
func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		ElevenLabsAPIKey:      os.Getenv("ELEVENLABS_API_KEY"),
		CohereAPIKey:          os.Getenv("COHERE_API_KEY"),
		ScriptProvider:        strings.ToLower(os.Getenv("SCRIPT_PROVIDER")),
		OutputDir:             os.Getenv("OUTPUT_DIR"),
		S3Bucket:              os.Getenv("S3_BUCKET"),
		S3Region:              os.Getenv("AWS_REGION"),
		YouTubeServiceAccount: os.Getenv("YOUTUBE_SERVICE_ACCOUNT_FILE"),
		ListenAddr:            os.Getenv("LISTEN_ADDR"),
		FeedSchedule:          os.Getenv("FEED_SCHEDULE"),
		FeedURL:               os.Getenv("FEED_URL"),
	}

	if cfg.ScriptProvider == "" {
		cfg.ScriptProvider = ProviderGemini
	}
	if cfg.ScriptProvider != ProviderGemini && cfg.ScriptProvider != ProviderCohere {
		return nil, errs.NewConfigurationError("SCRIPT_PROVIDER must be %q or %q, got %q",
			ProviderGemini, ProviderCohere, cfg.ScriptProvider)
	}
	if cfg.ScriptProvider == ProviderGemini && cfg.GeminiAPIKey == "" {
		return nil, errs.NewConfigurationError("GEMINI_API_KEY must be set")
	}
	if cfg.ScriptProvider == ProviderCohere && cfg.CohereAPIKey == "" {
		return nil, errs.NewConfigurationError("COHERE_API_KEY must be set when SCRIPT_PROVIDER=cohere")
	}
	if cfg.GeminiAPIKey == "" {
		// Images and model listing always go through Gemini.
		return nil, errs.NewConfigurationError("GEMINI_API_KEY must be set")
	}
	if cfg.ElevenLabsAPIKey == "" {
		return nil, errs.NewConfigurationError("ELEVENLABS_API_KEY must be set")
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	return cfg, nil
}
