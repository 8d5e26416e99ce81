package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"videogen/errs"
	"videogen/types"
	"videogen/usage"
)

func textResponse(text string, in, out int64) generateContentResponse {
	return generateContentResponse{
		Candidates: []candidate{{
			Content:      &wireContent{Parts: []wirePart{{Text: text}}},
			FinishReason: "STOP",
		}},
		UsageMetadata: &usageMetadata{PromptTokenCount: in, CandidatesTokenCount: out},
	}
}

func TestGenerateScriptRejectsEmptyPrompt(t *testing.T) {
	svc := NewScriptService(newTestClient(t, "http://unused"), usage.NewTracker())

	_, err := svc.GenerateScript(context.Background(), "   ", "", 0, nil, nil)
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v; want ValidationError", err)
	}
}

func TestGenerateScriptSuccess(t *testing.T) {
	var gotPath string
	var gotBody generateContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/models") && r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(listModelsResponse{Models: []wireModel{
				{Name: "models/gemini-2.0-flash", SupportedGenerationMethods: []string{"generateContent"}},
			}})
			return
		}
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(textResponse("  A story about tea.  ", 12, 34))
	}))
	defer srv.Close()

	tracker := usage.NewTracker()
	svc := NewScriptService(newTestClient(t, srv.URL), tracker)

	var progressed []string
	script, err := svc.GenerateScript(context.Background(), "the history of tea", "", 3,
		func(m string) { progressed = append(progressed, m) }, nil)
	if err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}
	if script.Content != "A story about tea." {
		t.Fatalf("script = %q", script.Content)
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}

	prompt := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "the history of tea") {
		t.Fatalf("topic missing from prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "about 3 minutes") || !strings.Contains(prompt, "approximately 450 words") {
		t.Fatalf("duration directive missing: %q", prompt)
	}

	if len(progressed) == 0 || progressed[0] != "Generating script..." {
		t.Fatalf("progress = %v", progressed)
	}

	s := tracker.Summary()
	b := s.ByService[ServiceName]
	if b.Metrics[usage.MetricInputTokens] != 12 || b.Metrics[usage.MetricOutputTokens] != 34 {
		t.Fatalf("usage = %+v", b.Metrics)
	}
}

func TestGenerateScriptEmptyResponseNamesFinishReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(listModelsResponse{})
			return
		}
		json.NewEncoder(w).Encode(generateContentResponse{
			Candidates: []candidate{{FinishReason: "MAX_TOKENS"}},
		})
	}))
	defer srv.Close()

	svc := NewScriptService(newTestClient(t, srv.URL), usage.NewTracker())
	_, err := svc.GenerateScript(context.Background(), "tea", "", 0, nil, nil)

	var se *errs.ScriptServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v; want ScriptServiceError", err)
	}
	if !strings.Contains(err.Error(), "MAX_TOKENS") {
		t.Fatalf("finish reason missing: %q", err.Error())
	}
}

func TestGenerateScriptTranslatesUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(listModelsResponse{})
			return
		}
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewScriptService(newTestClient(t, srv.URL), usage.NewTracker())
	_, err := svc.GenerateScript(context.Background(), "tea", "", 0, nil, nil)

	var se *errs.ScriptServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v; want ScriptServiceError", err)
	}
	if err.Error() != "Rate limit exceeded" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestGenerateScriptFallsBackOnUnknownModel(t *testing.T) {
	var usedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(listModelsResponse{Models: []wireModel{
				{Name: "models/" + DefaultTextModel, SupportedGenerationMethods: []string{"generateContent"}},
			}})
			return
		}
		usedPath = r.URL.Path
		json.NewEncoder(w).Encode(textResponse("ok long enough", 1, 1))
	}))
	defer srv.Close()

	svc := NewScriptService(newTestClient(t, srv.URL), usage.NewTracker())

	var warned string
	_, err := svc.GenerateScript(context.Background(), "tea", "no-such-model", 0, nil,
		func(m string) { warned = m })
	if err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}
	if !strings.Contains(usedPath, DefaultTextModel) {
		t.Fatalf("fallback model not used: %q", usedPath)
	}
	if !strings.Contains(warned, "no-such-model") {
		t.Fatalf("warning = %q", warned)
	}
}

func TestBuildScriptPromptOmitsDirectiveWithoutDuration(t *testing.T) {
	p := buildScriptPrompt("volcanoes", 0)
	if strings.Contains(p, "minutes when read aloud") {
		t.Fatalf("unexpected duration directive: %q", p)
	}
}

func TestLookupDurationDrivesWordTargets(t *testing.T) {
	for _, mins := range []int{3, 5, 10} {
		opt, err := types.LookupDuration(mins)
		if err != nil {
			t.Fatalf("LookupDuration(%d): %v", mins, err)
		}
		if opt.WordCount != mins*types.WordsPerMinute {
			t.Fatalf("WordCount = %d", opt.WordCount)
		}
		if opt.ImageCount != mins*types.ImagesPerMinute {
			t.Fatalf("ImageCount = %d", opt.ImageCount)
		}
	}
	if _, err := types.LookupDuration(7); err == nil {
		t.Fatalf("expected error for unsupported duration")
	}
}
