package format

import (
	"html"
	"unicode/utf8"
)

// Telegram limits, counted in characters.
const (
	MaxMessageLen = 4096
	MaxCaptionLen = 1024
)

// EscapeHTML escapes user text for the HTML parse mode.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	if limit == 1 {
		return string(r[:1])
	}
	return string(r[:limit-1]) + "…"
}
