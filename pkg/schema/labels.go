package schema

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

const hintPrefix = "[HINT] -"

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy

	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// LabelText returns the human label of a field: displayLabel, then label, then
// name. The hint prefix is removed and any markup stripped.
func LabelText(f *Field) string {
	if f == nil {
		return ""
	}
	raw := f.DisplayLabel
	if raw == "" {
		raw = f.Label
	}
	if raw == "" {
		raw = f.Name
	}
	if strings.HasPrefix(raw, hintPrefix) {
		raw = strings.TrimSpace(strings.Replace(raw, hintPrefix, "", 1))
	}
	return stripMarkup(raw)
}

// IsHint reports whether the field label is flagged as a hint.
func IsHint(f *Field) bool {
	return f != nil && strings.HasPrefix(f.Label, hintPrefix)
}

// SanitizeHTML cleans PARAGRAPH content for display.
func SanitizeHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	contentPolicyOnce.Do(func() {
		contentPolicy = bluemonday.UGCPolicy()
	})
	return strings.TrimSpace(contentPolicy.Sanitize(trimmed))
}

// PlainText strips all markup from raw, keeping the text content.
func PlainText(raw string) string {
	return stripMarkup(raw)
}

func stripMarkup(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return strings.TrimSpace(raw)
	}
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	// The strict policy escapes entities, undo that for plain-text output.
	return strings.TrimSpace(html.UnescapeString(labelPolicy.Sanitize(raw)))
}
