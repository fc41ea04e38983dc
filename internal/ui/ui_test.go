package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrylevesque/emailforms/internal/templates"
)

func TestStatusLevel(t *testing.T) {
	tests := map[string]Level{
		"Completed":    LevelSuccess,
		"sent":         LevelSuccess,
		"processed":    LevelSuccess,
		"pending":      LevelInfo,
		"In Progress":  LevelInfo,
		"not returned": LevelWarning,
		"warning":      LevelWarning,
		"failed":       LevelError,
		"error":        LevelError,
		"archived":     LevelPending,
	}
	for status, want := range tests {
		assert.Equal(t, want, StatusLevel(status), status)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024-05-01", FormatDate("2024-05-01T10:22:33.123456"))
	assert.Equal(t, "2024-05-01", FormatDate("2024-05-01T10:22:33Z"))
	assert.Equal(t, "", FormatDate(""))
	assert.Equal(t, "Invalid date", FormatDate("yesterday"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatFileSize(0))
	assert.Equal(t, "1.5 KiB", FormatFileSize(1536))
}

func TestRenderFrame(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, templates.MustLoad())

	term.RenderFrame(Frame{
		Title:    "Forms",
		Path:     "/forms",
		Content:  "forms body",
		Chrome:   true,
		UserName: "Ann",
		Nav: []NavLink{
			{Path: "/", Title: "Dashboard"},
			{Path: "/forms", Title: "Forms", Active: true},
		},
	})

	out := buf.String()
	assert.Equal(t, "Forms - Email Form System", term.Title())
	assert.Contains(t, out, "forms body")
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "Dashboard")
}

func TestRenderFrameWithoutChrome(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, templates.MustLoad())
	term.RenderFrame(Frame{Title: "Login", Content: "sign in"})
	assert.Contains(t, buf.String(), "sign in")
	assert.NotContains(t, buf.String(), AppName+" ·")
}

func TestNotify(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, templates.MustLoad())
	term.Notify(LevelError, "Error loading dashboard data")
	assert.Contains(t, buf.String(), "Error loading dashboard data")
}
