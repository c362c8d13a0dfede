package tui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/1broseidon/dockpeek/internal/geom"
	"github.com/1broseidon/dockpeek/internal/panel"
)

func TestSummarizeStrip(t *testing.T) {
	cards, size := panel.PreviewCards(3, 240, 0)

	got := summarizeStrip(cards, size)

	if !strings.HasPrefix(got, "3 cards") {
		t.Errorf("summary = %q, want 3 cards prefix", got)
	}
	if !strings.Contains(got, "240×") {
		t.Errorf("summary %q missing card width", got)
	}

	if got := summarizeStrip(nil, geom.Size{}); got != "no windows" {
		t.Errorf("empty summary = %q", got)
	}
}

func TestRenderStripSketchDrawsFrameAndCards(t *testing.T) {
	cards, size := panel.PreviewCards(2, 240, 0)

	lines := renderStripSketch(cards, size, 40, 9)

	if len(lines) != 9 {
		t.Fatalf("lines = %d, want 9", len(lines))
	}
	for i, line := range lines {
		if utf8.RuneCountInString(line) != 40 {
			t.Errorf("line %d is %d runes, want 40", i, utf8.RuneCountInString(line))
		}
	}

	if !strings.HasPrefix(lines[0], "╔") || !strings.HasSuffix(lines[0], "╗") {
		t.Errorf("top frame missing: %q", lines[0])
	}
	if !strings.HasPrefix(lines[8], "╚") || !strings.HasSuffix(lines[8], "╝") {
		t.Errorf("bottom frame missing: %q", lines[8])
	}

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "1") || !strings.Contains(joined, "2") {
		t.Errorf("card numbers missing:\n%s", joined)
	}
}

func TestRenderStripSketchEmptyForDegenerateInput(t *testing.T) {
	lines := renderStripSketch(nil, geom.Size{}, 40, 9)

	if len(lines) != 9 {
		t.Fatalf("lines = %d, want 9", len(lines))
	}
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			t.Fatalf("expected blank canvas, got %q", line)
		}
	}
}
