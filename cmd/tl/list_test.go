package main

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	// The glyph prefix is multi-byte; truncation must never slice
	// mid-rune.
	long := "◐ t-4f2a1c   [second] Wire up the authentication handler"

	tests := []struct {
		name  string
		line  string
		width int
		want  string
	}{
		{"fits", "◐ t-4f2a1c", 80, "◐ t-4f2a1c"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii cut", "abcdef", 5, "abcd…"},
		{"glyph survives narrow cut", long, 4, "◐ t…"},
		{"degenerate width", long, 1, long},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.line, tt.width)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.line, tt.width, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}
