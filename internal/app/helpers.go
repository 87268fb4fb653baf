package app

import (
	"encoding/json"
	"fmt"
	"strings"
)

func clampInt(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func clampFloat(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func shortTaskID(taskID string) string {
	taskID = strings.TrimSpace(taskID)
	if len(taskID) > 12 {
		return taskID[:12] + "…"
	}
	return taskID
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

func wrapLineToWidth(line string, width int) []string {
	width = maxInt(1, width)
	runes := []rune(line)
	if len(runes) == 0 {
		return []string{""}
	}
	if len(runes) <= width {
		return []string{line}
	}
	segments := make([]string, 0, (len(runes)/width)+1)
	start := 0
	for start < len(runes) {
		end := start + width
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, string(runes[start:end]))
		start = end
	}
	return segments
}

// serializeDetails produces a stable key for change detection. Map keys are
// sorted by encoding/json, so equal maps always produce equal keys.
func serializeDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	blob, err := json.Marshal(details)
	if err != nil {
		return fmt.Sprintf("%v", details)
	}
	return string(blob)
}

func serializeQueue(pending, scheduled []string) string {
	return strings.Join(pending, "\x1f") + "\x1e" + strings.Join(scheduled, "\x1f")
}

func summarizeDetails(details map[string]any, width int) string {
	if len(details) == 0 {
		return ""
	}
	blob, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return truncateText(string(blob), width)
}
