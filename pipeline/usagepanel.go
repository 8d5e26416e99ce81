package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"videogen/usage"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 2)
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
)

// RenderUsage formats a usage summary as a bordered panel: one line per model
// with its metrics and cost, then the total. Zero-cost buckets show raw
// consumption only, which is how subscription-metered services display.
func RenderUsage(s usage.Summary) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Usage"))
	b.WriteString("\n")

	models := make([]string, 0, len(s.ByModel))
	for id := range s.ByModel {
		models = append(models, id)
	}
	sort.Strings(models)

	for _, id := range models {
		bucket := s.ByModel[id]
		line := fmt.Sprintf("%-40s %s", id, formatMetrics(bucket.Metrics))
		if bucket.Cost > 0 {
			line += fmt.Sprintf("  $%.4f", bucket.Cost)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("%-40s total $%.4f (%d events)", "", s.TotalCost, s.EventsCount))
	return panelStyle.Render(b.String())
}

func formatMetrics(m map[usage.Metric]int64) string {
	order := []usage.Metric{usage.MetricInputTokens, usage.MetricOutputTokens, usage.MetricCharacters, usage.MetricImages}
	parts := make([]string, 0, len(m))
	for _, metric := range order {
		if v, ok := m[metric]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", metric, v))
		}
	}
	return strings.Join(parts, " ")
}
