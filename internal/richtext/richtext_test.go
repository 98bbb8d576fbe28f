package richtext

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "keeps formatting",
			input:    "<p><strong>Bold</strong> and <em>italic</em></p>",
			contains: []string{"<p>", "<strong>Bold</strong>", "<em>italic</em>"},
		},
		{
			name:   "drops script",
			input:  `<p>hi</p><script>alert(1)</script>`,
			absent: []string{"<script", "alert"},
		},
		{
			name:     "drops javascript links",
			input:    `<a href="javascript:alert(1)">x</a><a href="https://example.com">ok</a>`,
			contains: []string{`href="https://example.com"`},
			absent:   []string{"javascript:"},
		},
		{
			name:   "drops event handlers",
			input:  `<div onclick="steal()">text</div>`,
			absent: []string{"onclick"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Sanitize(tt.input)
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("Sanitize(%q) = %q, missing %q", tt.input, out, s)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(out, s) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, out, s)
				}
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain   words\n here", "plain words here"},
		{"<p>Summer</p><p>launch</p>", "Summer launch"},
		{"<ul><li>one</li><li>two</li></ul>", "one two"},
		{"Fish &amp; chips", "Fish & chips"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.expected {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
