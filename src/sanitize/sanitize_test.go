package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "color codes",
			input:    "\x1b[31mERROR\x1b[0m: something failed",
			expected: "ERROR: something failed",
		},
		{
			name:     "no ANSI",
			input:    "plain text message",
			expected: "plain text message",
		},
		{
			name:     "multiple codes",
			input:    "\x1b[1m\x1b[31mbold red\x1b[0m normal",
			expected: "bold red normal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripANSI(tt.input)
			if result != tt.expected {
				t.Errorf("StripANSI(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json error",
			input:    `{"message": "You do not have access"}`,
			expected: `{"message": "You do not have access"}`,
		},
		{
			name:     "html error page",
			input:    "<html>\n<head><title>502 Bad Gateway</title></head>\n<body>nginx</body></html>",
			expected: "502 Bad Gateway nginx",
		},
		{
			name:     "control characters and whitespace",
			input:    "line one\r\n\tline\x00two   ",
			expected: "line one line two",
		},
		{
			name:     "invalid utf8 dropped",
			input:    "ok\xff\xfe done",
			expected: "ok done",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.input); got != tt.expected {
				t.Errorf("Snippet(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSnippet_Truncates(t *testing.T) {
	got := Snippet(strings.Repeat("é", MaxSnippet+50))

	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != MaxSnippet+1 {
		t.Errorf("rune count = %d, want %d", n, MaxSnippet+1)
	}
}
