package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"videogen/errs"
	"videogen/types"
	"videogen/usage"
)

var testPNG = []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}

func imageResponse() generateContentResponse {
	return generateContentResponse{
		Candidates: []candidate{{
			Content: &wireContent{Parts: []wirePart{{
				InlineData: &inlineData{
					MimeType: "image/png",
					Data:     base64.StdEncoding.EncodeToString(testPNG),
				},
			}}},
			FinishReason: "STOP",
		}},
	}
}

func blockedImageResponse() generateContentResponse {
	return generateContentResponse{
		Candidates: []candidate{{FinishReason: "SAFETY"}},
	}
}

// imageTestServer serves the model listing for GETs and delegates generation
// POSTs to handler. The listing offers exactly one image model, imagen-test.
func imageTestServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(listModelsResponse{Models: []wireModel{{Name: "models/imagen-test"}}})
			return
		}
		handler(w, r)
	}))
}

func TestGenerateImagesRejectsEmptyScript(t *testing.T) {
	svc := NewImageService(newTestClient(t, "http://unused"), usage.NewTracker())

	_, err := svc.GenerateImages(context.Background(), types.Script{Content: "  "}, "m", 0, nil, nil)
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v; want ValidationError", err)
	}
}

func TestGenerateImagesOnePerSegment(t *testing.T) {
	var prompts []string
	srv := imageTestServer(func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		json.NewDecoder(r.Body).Decode(&req)
		prompts = append(prompts, req.Contents[0].Parts[0].Text)
		json.NewEncoder(w).Encode(imageResponse())
	})
	defer srv.Close()

	tracker := usage.NewTracker()
	svc := NewImageService(newTestClient(t, srv.URL), tracker)

	var progressed []string
	script := types.Script{Content: "A castle at dawn.\n\nA storm at sea.\n\nA quiet forest."}
	images, err := svc.GenerateImages(context.Background(), script, "imagen-test", 0,
		func(m string) { progressed = append(progressed, m) }, nil)
	if err != nil {
		t.Fatalf("GenerateImages: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("got %d images; want 3", len(images))
	}
	for i, img := range images {
		if string(img.Bytes) != string(testPNG) || img.MimeType != "image/png" {
			t.Fatalf("image %d = %+v", i, img)
		}
	}

	for i, p := range prompts {
		if !strings.HasSuffix(p, StyleSuffix) {
			t.Fatalf("prompt %d missing style suffix: %q", i, p)
		}
	}

	want := []string{"Generating image 1 of 3", "Generating image 2 of 3", "Generating image 3 of 3"}
	if len(progressed) != len(want) {
		t.Fatalf("progress = %v", progressed)
	}
	for i := range want {
		if progressed[i] != want[i] {
			t.Fatalf("progress %d = %q; want %q", i, progressed[i], want[i])
		}
	}

	if got := tracker.Summary().ByService[ServiceName].Metrics[usage.MetricImages]; got != 3 {
		t.Fatalf("images tracked = %d; want 3", got)
	}
}

func TestGenerateImagesAdjustsToTargetCount(t *testing.T) {
	var calls int
	srv := imageTestServer(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(imageResponse())
	})
	defer srv.Close()

	svc := NewImageService(newTestClient(t, srv.URL), usage.NewTracker())
	script := types.Script{Content: "One.\n\nTwo."}

	images, err := svc.GenerateImages(context.Background(), script, "imagen-test", 5, nil, nil)
	if err != nil {
		t.Fatalf("GenerateImages: %v", err)
	}
	if len(images) != 5 || calls != 5 {
		t.Fatalf("images = %d, calls = %d; want 5 and 5", len(images), calls)
	}
}

func TestGenerateImagesRewritesBlockedPrompt(t *testing.T) {
	var prompts []string
	srv := imageTestServer(func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		json.NewDecoder(r.Body).Decode(&req)
		prompts = append(prompts, req.Contents[0].Parts[0].Text)
		if len(prompts) == 1 {
			json.NewEncoder(w).Encode(blockedImageResponse())
			return
		}
		json.NewEncoder(w).Encode(imageResponse())
	})
	defer srv.Close()

	svc := NewImageService(newTestClient(t, srv.URL), usage.NewTracker())

	var warnings []string
	images, err := svc.GenerateImages(context.Background(), types.Script{Content: "A duel."}, "imagen-test", 0,
		nil, func(m string) { warnings = append(warnings, m) })
	if err != nil {
		t.Fatalf("GenerateImages: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("got %d images", len(images))
	}
	if len(prompts) != 2 || !strings.HasSuffix(prompts[1], safetyQualifier) {
		t.Fatalf("rewritten prompt missing qualifier: %v", prompts)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "safety filter") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestGenerateImagesGivesUpAfterRepeatedBlocks(t *testing.T) {
	var calls int
	srv := imageTestServer(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(blockedImageResponse())
	})
	defer srv.Close()

	svc := NewImageService(newTestClient(t, srv.URL), usage.NewTracker())
	_, err := svc.GenerateImages(context.Background(), types.Script{Content: "A duel."}, "imagen-test", 0, nil, nil)

	var ie *errs.ImageServiceError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v; want ImageServiceError", err)
	}
	if !strings.Contains(err.Error(), "Image 1 was blocked by the safety filter") {
		t.Fatalf("message = %q", err.Error())
	}
	if calls != maxSafetyRewrites+1 {
		t.Fatalf("calls = %d; want %d", calls, maxSafetyRewrites+1)
	}
}

func TestGenerateImagesTranslatesUpstreamFailure(t *testing.T) {
	srv := imageTestServer(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})
	defer srv.Close()

	svc := NewImageService(newTestClient(t, srv.URL), usage.NewTracker())
	_, err := svc.GenerateImages(context.Background(), types.Script{Content: "A duel."}, "imagen-test", 0, nil, nil)

	var ie *errs.ImageServiceError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v; want ImageServiceError", err)
	}
	if err.Error() != "Authentication failed" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestGenerateImagesNoDataNamesFinishReason(t *testing.T) {
	srv := imageTestServer(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateContentResponse{
			Candidates: []candidate{{FinishReason: "RECITATION"}},
		})
	})
	defer srv.Close()

	svc := NewImageService(newTestClient(t, srv.URL), usage.NewTracker())
	_, err := svc.GenerateImages(context.Background(), types.Script{Content: "A duel."}, "imagen-test", 0, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "RECITATION") {
		t.Fatalf("err = %v", err)
	}
}

func TestBlockedResponse(t *testing.T) {
	cases := []struct {
		name string
		res  generateContentResponse
		want bool
	}{
		{"prompt feedback", generateContentResponse{PromptFeedback: &promptFeedback{BlockReason: "SAFETY"}}, true},
		{"safety finish", blockedImageResponse(), true},
		{"refusal text", generateContentResponse{Candidates: []candidate{{
			Content: &wireContent{Parts: []wirePart{{Text: "This request was blocked."}}},
		}}}, true},
		{"clean", imageResponse(), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := blockedResponse(c.res); got != c.want {
				t.Fatalf("blockedResponse = %v; want %v", got, c.want)
			}
		})
	}
}

func TestGenerateImagesUsesPerImageOrdinalInErrors(t *testing.T) {
	var calls int
	srv := imageTestServer(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// First segment succeeds, second is blocked every time.
		if calls == 1 {
			json.NewEncoder(w).Encode(imageResponse())
			return
		}
		json.NewEncoder(w).Encode(blockedImageResponse())
	})
	defer srv.Close()

	svc := NewImageService(newTestClient(t, srv.URL), usage.NewTracker())
	script := types.Script{Content: "One.\n\nTwo."}
	_, err := svc.GenerateImages(context.Background(), script, "imagen-test", 0, nil, nil)
	if err == nil || !strings.Contains(err.Error(), fmt.Sprintf("Image %d", 2)) {
		t.Fatalf("err = %v; want ordinal 2", err)
	}
}
