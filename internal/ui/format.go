package ui

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// StatusLevel maps an activity or tracking status to its display level.
func StatusLevel(status string) Level {
	switch strings.ToLower(status) {
	case "completed", "sent", "processed":
		return LevelSuccess
	case "pending", "in progress":
		return LevelInfo
	case "warning", "not returned":
		return LevelWarning
	case "error", "failed":
		return LevelError
	}
	return LevelPending
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders a backend timestamp as YYYY-MM-DD. Empty input renders
// as "" and unparseable input as "Invalid date".
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return "Invalid date"
}

// FormatFileSize renders a byte count in binary units, e.g. "1.5 KiB".
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}
