package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"videogen/errs"
	"videogen/types"
	"videogen/usage"
)

// safetyQualifier is appended to a prompt when the service blocks it, nudging
// the rewrite toward acceptable content.
const safetyQualifier = ", safe for work, family friendly, no violence or graphic content"

// maxSafetyRewrites bounds prompt-rewrite retries after a safety block.
const maxSafetyRewrites = 2

// ImageService generates one still image per script segment.
type ImageService struct {
	client  *Client
	tracker *usage.Tracker
}

// NewImageService builds an image adapter recording usage into tracker.
func NewImageService(client *Client, tracker *usage.Tracker) *ImageService {
	return &ImageService{client: client, tracker: tracker}
}

// GenerateImages segments the script into prompts, adjusts the segment list
// to targetCount when set, and generates one image per prompt in order.
func (s *ImageService) GenerateImages(ctx context.Context, script types.Script, modelID string, targetCount int, progress, warn func(string)) ([]types.Image, error) {
	if strings.TrimSpace(script.Content) == "" {
		return nil, errs.NewValidationError("script content must not be empty")
	}

	prompts := AdjustSegmentCount(ImagePrompts(script.Content), targetCount)
	if len(prompts) == 0 {
		return nil, errs.NewValidationError("script produced no image prompts")
	}

	model := modelID
	if model == "" {
		model = s.client.DefaultImageModel(ctx)
	} else {
		model = s.client.resolveModel(ctx, types.ModelKindImage, model, s.client.DefaultImageModel(ctx), warn)
	}

	images := make([]types.Image, 0, len(prompts))
	for i, prompt := range prompts {
		notify(progress, fmt.Sprintf("Generating image %d of %d", i+1, len(prompts)))
		img, err := s.generateOne(ctx, model, prompt, i+1, warn)
		if err != nil {
			return nil, err
		}
		s.tracker.Track(ServiceName, model, string(usage.MetricImages), 1)
		images = append(images, img)
	}
	return images, nil
}

// generateOne requests a single image. A safety block rewrites the prompt
// with the safety qualifier and retries, up to maxSafetyRewrites times.
func (s *ImageService) generateOne(ctx context.Context, model, prompt string, ordinal int, warn func(string)) (types.Image, error) {
	current := prompt
	var lastErr error
	for attempt := 0; attempt <= maxSafetyRewrites; attempt++ {
		img, blocked, err := s.requestImage(ctx, model, current)
		if err != nil {
			return types.Image{}, err
		}
		if !blocked {
			return img, nil
		}
		lastErr = errs.NewImageServiceError(
			fmt.Sprintf("Image %d was blocked by the safety filter", ordinal), nil)
		if attempt < maxSafetyRewrites {
			notify(warn, fmt.Sprintf("Image %d blocked by safety filter, rewriting prompt", ordinal))
			current = current + safetyQualifier
		}
	}
	return types.Image{}, lastErr
}

// requestImage performs one generation call, reporting safety blocks
// separately from hard failures.
func (s *ImageService) requestImage(ctx context.Context, model, prompt string) (types.Image, bool, error) {
	req := generateContentRequest{
		Contents:         []wireContent{{Parts: []wirePart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}
	var res generateContentResponse
	err := s.client.postJSON(ctx, "/models/"+model+":generateContent", req, &res)
	if err != nil {
		return types.Image{}, false, errs.NewImageServiceError(s.client.userMessage(err, "Image generation failed"), err)
	}

	if blockedResponse(res) {
		return types.Image{}, true, nil
	}

	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			raw, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return types.Image{}, false, errs.NewImageServiceError("Image service returned undecodable image data", err)
			}
			return types.Image{
				Bytes:     raw,
				MimeType:  p.InlineData.MimeType,
				SizeBytes: int64(len(raw)),
			}, false, nil
		}
	}

	reason := ""
	if len(res.Candidates) > 0 {
		reason = res.Candidates[0].FinishReason
	}
	return types.Image{}, false, errs.NewImageServiceError(
		fmt.Sprintf("Image service returned no image data (finish reason: %s)", orUnknown(reason)), nil)
}

// blockedResponse detects safety refusals: an explicit SAFETY finish reason,
// a prompt-level block, or refusal text mentioning "blocked".
func blockedResponse(res generateContentResponse) bool {
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return true
	}
	for _, cand := range res.Candidates {
		if strings.EqualFold(cand.FinishReason, "SAFETY") {
			return true
		}
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.Text != "" && strings.Contains(strings.ToLower(p.Text), "blocked") {
				return true
			}
		}
	}
	return false
}
