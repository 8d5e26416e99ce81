package tui

import (
	"fmt"
	"strings"
)

const maxVisibleLogs = 10

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("videogen"))
	b.WriteString("\n\n")

	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	if m.Prompt != "" {
		prompt := m.Prompt
		if len(prompt) > 80 {
			prompt = prompt[:80] + "..."
		}
		b.WriteString(infoStyle.Render(fmt.Sprintf("Prompt: %s", prompt)))
		b.WriteString("\n\n")
	}

	if len(m.Logs) > 0 {
		b.WriteString(infoStyle.Render("Recent activity:"))
		b.WriteString("\n")
		logs := m.Logs
		if len(logs) > maxVisibleLogs {
			logs = logs[len(logs)-maxVisibleLogs:]
		}
		for _, entry := range logs {
			b.WriteString(infoStyle.Render("   " + entry.Message))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.Video != nil {
		result := fmt.Sprintf("Video: %s\nDuration: %.1fs\nSize: %.1f MB\nResolution: %s",
			m.Video.FilePath,
			m.Video.DurationSeconds,
			float64(m.Video.SizeBytes)/(1024*1024),
			m.Video.Resolution)
		b.WriteString(boxStyle.Render(result))
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Press 'g' to generate | Press 'q' or Ctrl+C to quit"))

	return b.String()
}
