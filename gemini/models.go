package gemini

import (
	"context"
	"fmt"
	"strings"

	"videogen/errs"
	"videogen/types"
)

// ListModels returns the models offered for the given kind. The raw catalog
// is fetched once and cached for 60 seconds; classification happens per call.
// Voice models are not served by this API, so the voice kind yields an empty
// list rather than an error.
func (c *Client) ListModels(ctx context.Context, kind types.ModelKind) ([]types.ModelInfo, error) {
	if kind == types.ModelKindVoice {
		return nil, nil
	}
	catalog, err := c.models(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.ModelInfo, 0, len(catalog))
	for _, m := range catalog {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out, nil
}

// ValidateModelID reports whether id is present in the cached listing for the
// given kind.
func (c *Client) ValidateModelID(ctx context.Context, kind types.ModelKind, id string) (bool, error) {
	models, err := c.ListModels(ctx, kind)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// DefaultImageModel resolves the image model to use when the caller picked
// none: a listing entry whose id mentions both "gemini" and "flash" wins,
// then the first image-capable entry, then the hard-coded fallback.
func (c *Client) DefaultImageModel(ctx context.Context) string {
	models, err := c.ListModels(ctx, types.ModelKindImage)
	if err != nil || len(models) == 0 {
		return FallbackImageModel
	}
	for _, m := range models {
		id := strings.ToLower(m.ID)
		if strings.Contains(id, "gemini") && strings.Contains(id, "flash") {
			return m.ID
		}
	}
	return models[0].ID
}

// models returns the classified catalog, refreshing it when the TTL lapsed.
func (c *Client) models(ctx context.Context) ([]types.ModelInfo, error) {
	c.mu.Lock()
	if c.catalog != nil && c.now().Sub(c.fetched) < catalogTTL {
		cached := c.catalog
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	fetched, err := c.fetchModels(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.catalog = fetched
	c.fetched = c.now()
	c.mu.Unlock()
	return fetched, nil
}

func (c *Client) fetchModels(ctx context.Context) ([]types.ModelInfo, error) {
	var all []wireModel
	pageToken := ""
	for {
		path := "/models?pageSize=200"
		if pageToken != "" {
			path += "&pageToken=" + pageToken
		}
		var res listModelsResponse
		if err := c.getJSON(ctx, path, &res); err != nil {
			return nil, errs.NewScriptServiceError(c.userMessage(err, "Failed to list models"), err)
		}
		all = append(all, res.Models...)
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	out := make([]types.ModelInfo, 0, len(all))
	for _, m := range all {
		info, ok := classifyModel(m)
		if ok {
			out = append(out, info)
		}
	}
	return out, nil
}

// classifyModel maps a wire model to its kind. Image capability is inferred
// from the id; text models must support generateContent and must not look
// like image or embedding models.
func classifyModel(m wireModel) (types.ModelInfo, bool) {
	id := strings.TrimPrefix(m.Name, "models/")
	lower := strings.ToLower(id)
	info := types.ModelInfo{
		ID:          id,
		DisplayName: m.DisplayName,
		Description: m.Description,
	}
	if strings.Contains(lower, "image") || strings.Contains(lower, "imagen") {
		info.Kind = types.ModelKindImage
		return info, true
	}
	if strings.Contains(lower, "embedding") || strings.Contains(lower, "embed") {
		return types.ModelInfo{}, false
	}
	for _, method := range m.SupportedGenerationMethods {
		if method == "generateContent" {
			info.Kind = types.ModelKindText
			return info, true
		}
	}
	return types.ModelInfo{}, false
}

// resolveModel applies the common model-selection contract: a requested id
// that validates is used as-is; one missing from the listing falls back to
// def with a warning; a listing outage keeps the caller's choice.
func (c *Client) resolveModel(ctx context.Context, kind types.ModelKind, requested, def string, warn func(string)) string {
	if requested == "" {
		return def
	}
	ok, err := c.ValidateModelID(ctx, kind, requested)
	if err != nil {
		// Listing is unreachable; trust the caller's choice rather than fail.
		return requested
	}
	if !ok {
		notify(warn, fmt.Sprintf("Model %q is not available, falling back to %s", requested, def))
		return def
	}
	return requested
}
