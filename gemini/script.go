package gemini

import (
	"context"
	"fmt"
	"strings"

	"videogen/errs"
	"videogen/types"
	"videogen/usage"
)

// ScriptService generates narration scripts.
type ScriptService struct {
	client  *Client
	tracker *usage.Tracker
}

// NewScriptService builds a script adapter recording usage into tracker.
func NewScriptService(client *Client, tracker *usage.Tracker) *ScriptService {
	return &ScriptService{client: client, tracker: tracker}
}

// GenerateScript turns a topic prompt into a narration script. A requested
// model missing from the listing falls back to the default with a warning; a
// set duration appends a length directive to the prompt.
func (s *ScriptService) GenerateScript(ctx context.Context, prompt, modelID string, durationMinutes int, progress, warn func(string)) (types.Script, error) {
	if strings.TrimSpace(prompt) == "" {
		return types.Script{}, errs.NewValidationError("prompt must not be empty")
	}

	model := s.client.resolveModel(ctx, types.ModelKindText, modelID, DefaultTextModel, warn)

	full := buildScriptPrompt(prompt, durationMinutes)
	notify(progress, "Generating script...")

	var res generateContentResponse
	req := generateContentRequest{
		Contents: []wireContent{{Parts: []wirePart{{Text: full}}}},
	}
	err := s.client.postJSON(ctx, "/models/"+model+":generateContent", req, &res)
	if err != nil {
		return types.Script{}, errs.NewScriptServiceError(s.client.userMessage(err, "Script generation failed"), err)
	}

	text, finishReason := extractText(res)
	if strings.TrimSpace(text) == "" {
		if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
			finishReason = res.PromptFeedback.BlockReason
		}
		return types.Script{}, errs.NewScriptServiceError(
			fmt.Sprintf("Script service returned an empty response (finish reason: %s)", orUnknown(finishReason)), nil)
	}

	if res.UsageMetadata != nil {
		s.tracker.Track(ServiceName, model, string(usage.MetricInputTokens), res.UsageMetadata.PromptTokenCount)
		s.tracker.Track(ServiceName, model, string(usage.MetricOutputTokens), res.UsageMetadata.CandidatesTokenCount)
	}

	return types.Script{Content: strings.TrimSpace(text)}, nil
}

// buildScriptPrompt frames the topic as a narration request, appending the
// duration-and-word-count directive when a length was chosen.
func buildScriptPrompt(prompt string, durationMinutes int) string {
	var b strings.Builder
	b.WriteString("Write a narration script for a video about: ")
	b.WriteString(prompt)
	b.WriteString("\n\nWrite flowing prose meant to be read aloud. ")
	b.WriteString("Separate distinct visual scenes with blank lines. ")
	b.WriteString("Do not include stage directions, headings, or markdown.")
	if durationMinutes > 0 {
		fmt.Fprintf(&b, "\n\nThe narration should run about %d minutes when read aloud, approximately %d words.",
			durationMinutes, durationMinutes*types.WordsPerMinute)
	}
	return b.String()
}

// extractText pulls the first candidate's text parts, reporting the finish
// reason so an empty candidate surfaces a useful message.
func extractText(res generateContentResponse) (string, string) {
	if len(res.Candidates) == 0 {
		return "", ""
	}
	cand := res.Candidates[0]
	if cand.Content == nil {
		return "", cand.FinishReason
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), cand.FinishReason
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
