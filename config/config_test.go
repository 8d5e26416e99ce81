package config

import (
	"errors"
	"testing"

	"videogen/errs"
)

func setRequired(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("ELEVENLABS_API_KEY", "e-key")
	t.Setenv("COHERE_API_KEY", "")
	t.Setenv("SCRIPT_PROVIDER", "")
	t.Setenv("OUTPUT_DIR", "")
	t.Setenv("LISTEN_ADDR", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScriptProvider != ProviderGemini {
		t.Fatalf("provider = %q", cfg.ScriptProvider)
	}
	if cfg.OutputDir != DefaultOutputDir || cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("defaults = %q %q", cfg.OutputDir, cfg.ListenAddr)
	}
}

func TestLoadRequiresKeys(t *testing.T) {
	cases := []struct {
		name  string
		unset string
	}{
		{"gemini key", "GEMINI_API_KEY"},
		{"elevenlabs key", "ELEVENLABS_API_KEY"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(c.unset, "")

			_, err := Load()
			var ce *errs.ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %v; want ConfigurationError", err)
			}
		})
	}
}

func TestLoadCohereProvider(t *testing.T) {
	setRequired(t)
	t.Setenv("SCRIPT_PROVIDER", "cohere")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without COHERE_API_KEY")
	}

	t.Setenv("COHERE_API_KEY", "c-key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScriptProvider != ProviderCohere {
		t.Fatalf("provider = %q", cfg.ScriptProvider)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	setRequired(t)
	t.Setenv("SCRIPT_PROVIDER", "openai")

	_, err := Load()
	var ce *errs.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v; want ConfigurationError", err)
	}
}
