// Package research sources video topics from RSS/Atom feeds, turning a news
// item into a generation prompt.
package research

import (
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// Topic is one candidate subject for a video.
type Topic struct {
	Title       string
	URL         string
	Summary     string
	Content     string
	PublishedAt time.Time
}

// FeedPresets maps friendly names to feed URLs.
var FeedPresets = map[string]string{
	"cna": "https://www.channelnewsasia.com/api/v1/rss-outbound-feed?_format=xml",
	"st":  "https://www.straitstimes.com/news/singapore/rss.xml",
	"hn":  "https://hnrss.org/newest",
	"tr":  "https://www.technologyreview.com/feed/",
}

// ResolveFeedURL maps a preset name to its URL, passing direct URLs through.
func ResolveFeedURL(feedInput string) string {
	if url, ok := FeedPresets[feedInput]; ok {
		return url
	}
	return feedInput
}

// FetchTopics retrieves up to maxCount items from a feed.
func FetchTopics(feedURL string, maxCount int) ([]*Topic, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := min(len(feed.Items), maxCount)
	topics := make([]*Topic, 0, count)
	for i := 0; i < count; i++ {
		item := feed.Items[i]

		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		topics = append(topics, &Topic{
			Title:       item.Title,
			URL:         item.Link,
			Summary:     summary,
			PublishedAt: publishedAt,
		})
	}
	return topics, nil
}

// LatestTopic returns the newest feed item with its article content
// extracted, ready for BuildPrompt.
func LatestTopic(feedURL string) (*Topic, error) {
	topics, err := FetchTopics(feedURL, 1)
	if err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("feed %s has no items", feedURL)
	}
	topic := topics[0]
	// Extraction failure is not fatal; the title and summary still make a
	// usable prompt.
	_ = ExtractContent(topic)
	return topic, nil
}
