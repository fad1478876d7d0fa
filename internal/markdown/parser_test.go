package markdown

import (
	"strings"
	"testing"
)

const diagram = "proj\n├─a.txt\n└─ sub\n    └─ b.txt\n"

func TestSnippet(t *testing.T) {
	p := NewParser()

	s, err := p.Snippet("proj", diagram)
	if err != nil {
		t.Fatalf("Snippet failed: %v", err)
	}

	wantMD := "## proj\n\n```text\n" + diagram + "```\n"
	if s.Markdown != wantMD {
		t.Errorf("unexpected markdown:\n%s", s.Markdown)
	}
	if s.Title != "proj" {
		t.Errorf("expected title proj, got %s", s.Title)
	}
	if !strings.Contains(s.HTML, "<h2") || !strings.Contains(s.HTML, "proj</h2>") {
		t.Error("expected H2 heading in HTML")
	}
	if !strings.Contains(s.HTML, "<pre") || !strings.Contains(s.HTML, "b.txt") {
		t.Error("expected code block with the diagram in HTML")
	}
}

func TestSnippet_NoTitle(t *testing.T) {
	s, err := NewParser().Snippet("", diagram)
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "" {
		t.Errorf("expected no title, got %q", s.Title)
	}
	if strings.HasPrefix(s.Markdown, "#") {
		t.Error("expected no heading")
	}
}

func TestFence(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"plain", "```"},
		{"a ``` b", "````"},
		{"````", "`````"},
		{"`x`", "```"},
	}

	for _, tt := range tests {
		got := fence(tt.input)
		if got != tt.output {
			t.Errorf("fence(%q) = %q, want %q", tt.input, got, tt.output)
		}
	}
}
