package research

import (
	"fmt"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	extractTimeout = 30 * time.Second

	// maxPromptChars caps how much article text is fed into the script
	// prompt; scripts need a topic, not the whole article.
	maxPromptChars = 1500
)

// ExtractContent fetches the topic's article and fills Content with its
// readable text.
func ExtractContent(t *Topic) error {
	if t.URL == "" {
		return fmt.Errorf("topic URL is empty")
	}
	article, err := readability.FromURL(t.URL, extractTimeout)
	if err != nil {
		return fmt.Errorf("failed to extract article content: %w", err)
	}
	t.Content = strings.TrimSpace(article.TextContent)
	return nil
}

// BuildPrompt turns a topic into a generation prompt: title first, then the
// richest available body text, truncated to the prompt budget.
func BuildPrompt(t *Topic) string {
	body := t.Content
	if body == "" {
		body = t.Summary
	}
	body = strings.TrimSpace(body)
	if len(body) > maxPromptChars {
		cut := body[:maxPromptChars]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		body = cut + "…"
	}
	if body == "" {
		return t.Title
	}
	return fmt.Sprintf("%s\n\nBackground:\n%s", t.Title, body)
}
