package structure

import (
	"log/slog"
	"reflect"
	"testing"

	"bookocr/internal/markdown"
	"bookocr/internal/ocr"
)

func box(t *testing.T, text string, height int) ocr.TextBox {
	t.Helper()
	b, err := ocr.NewTextBox([4]ocr.Point{
		{X: 0, Y: 0},
		{X: 100, Y: 0},
		{X: 100, Y: height},
		{X: 0, Y: height},
	}, text, 0.95)
	if err != nil {
		t.Fatalf("NewTextBox: %v", err)
	}
	return b
}

func page(t *testing.T, boxes ...ocr.TextBox) ocr.PageResult {
	t.Helper()
	return ocr.PageResult{Boxes: boxes}
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestInferLevelsEmptyPage(t *testing.T) {
	e := NewEngine(discard())
	if got := e.InferLevels(ocr.PageResult{}); len(got) != 0 {
		t.Errorf("InferLevels(empty) = %v, want empty", got)
	}
}

func TestInferLevelsLengthMatchesInput(t *testing.T) {
	e := NewEngine(discard())
	p := page(t,
		box(t, "Title", 60),
		box(t, "Body one", 12),
		box(t, "Body two", 12),
		box(t, "Section", 30),
	)

	levels := e.InferLevels(p)
	styles := e.DetectListStyle(p)
	if len(levels) != p.Len() || len(styles) != p.Len() {
		t.Fatalf("len(levels) = %d, len(styles) = %d, want %d", len(levels), len(styles), p.Len())
	}
}

func TestInferLevelsTallestIsHighestRank(t *testing.T) {
	e := NewEngine(discard())
	p := page(t,
		box(t, "Body", 12),
		box(t, "Title", 60),
		box(t, "Section", 30),
		box(t, "More body", 13),
	)

	levels := e.InferLevels(p)

	// Taller box in a different cluster must rank at least as high
	// (numerically lower level) as any shorter box.
	for i, bi := range p.Boxes {
		for j, bj := range p.Boxes {
			if bi.Height() > bj.Height() && levels[i] > levels[j] {
				t.Errorf("box %d (h=%d) got %v, ranked below box %d (h=%d) with %v",
					i, bi.Height(), levels[i], j, bj.Height(), levels[j])
			}
		}
	}
	if levels[1] != markdown.Heading1 {
		t.Errorf("tallest box level = %v, want Heading1", levels[1])
	}
}

func TestInferLevelsDeterministic(t *testing.T) {
	e := NewEngine(discard())
	p := page(t,
		box(t, "a", 55), box(t, "b", 11), box(t, "c", 28),
		box(t, "d", 12), box(t, "e", 54), box(t, "f", 27),
	)

	first := e.InferLevels(p)
	for i := 0; i < 5; i++ {
		if got := e.InferLevels(p); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d = %v, first = %v", i, got, first)
		}
	}
}

func TestInferLevelsUniformPage(t *testing.T) {
	e := NewEngine(discard())
	p := page(t, box(t, "a", 14), box(t, "b", 14), box(t, "c", 14))

	levels := e.InferLevels(p)
	for i, l := range levels {
		if l != markdown.Heading1 {
			t.Errorf("levels[%d] = %v, want Heading1 (single cluster maps to rank 0)", i, l)
		}
	}
}

func TestInferLevelsClampsExtraClusters(t *testing.T) {
	// Six well-separated heights with six requested clusters: ranks beyond
	// the enumeration must clamp to Paragraph.
	e := NewEngine(discard(), WithLevelCount(6))
	p := page(t,
		box(t, "a", 90), box(t, "b", 70), box(t, "c", 50),
		box(t, "d", 30), box(t, "e", 20), box(t, "f", 10),
	)

	levels := e.InferLevels(p)
	want := []markdown.Level{
		markdown.Heading1, markdown.Heading2, markdown.Heading3,
		markdown.Paragraph, markdown.Paragraph, markdown.Paragraph,
	}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("levels = %v, want %v", levels, want)
	}
}

func TestDetectListStyle(t *testing.T) {
	e := NewEngine(discard())

	tests := []struct {
		text string
		want markdown.Style
	}{
		{"• Buy milk", markdown.StyleListItem},
		{"- dashed item", markdown.StyleListItem},
		{"· middle dot", markdown.StyleListItem},
		{"● filled bullet", markdown.StyleListItem},
		{"  • leading space", markdown.StyleListItem},
		{"Regular text", markdown.StyleNone},
		{"", markdown.StyleNone},
	}

	boxes := make([]ocr.TextBox, len(tests))
	for i, tt := range tests {
		boxes[i] = box(t, tt.text, 12)
	}
	styles := e.DetectListStyle(page(t, boxes...))

	for i, tt := range tests {
		if styles[i] != tt.want {
			t.Errorf("DetectListStyle(%q) = %v, want %v", tt.text, styles[i], tt.want)
		}
	}
}

func TestBuildElementsTrimsContent(t *testing.T) {
	e := NewEngine(discard())
	p := page(t, box(t, "  spaced out \n", 12))

	elements := e.BuildElements(p,
		[]markdown.Level{markdown.Paragraph},
		[]markdown.Style{markdown.StyleNone},
	)
	if len(elements) != 1 {
		t.Fatalf("len(elements) = %d, want 1", len(elements))
	}
	if elements[0].Content != "spaced out" {
		t.Errorf("Content = %q, want %q", elements[0].Content, "spaced out")
	}
}

func TestBuildElementsTruncatesOnMismatch(t *testing.T) {
	e := NewEngine(discard())
	p := page(t, box(t, "one", 12), box(t, "two", 12), box(t, "three", 12))

	elements := e.BuildElements(p,
		[]markdown.Level{markdown.Paragraph, markdown.Paragraph},
		[]markdown.Style{markdown.StyleNone, markdown.StyleNone, markdown.StyleNone},
	)
	if len(elements) != 2 {
		t.Fatalf("len(elements) = %d, want 2 (truncated to shortest)", len(elements))
	}
	if elements[0].Content != "one" || elements[1].Content != "two" {
		t.Errorf("unexpected elements %v", elements)
	}
}

func TestBuildElementsEmptyPage(t *testing.T) {
	e := NewEngine(discard())
	if got := e.BuildElements(ocr.PageResult{}, nil, nil); len(got) != 0 {
		t.Errorf("BuildElements(empty) = %v, want empty", got)
	}
}

func TestElementsEndToEnd(t *testing.T) {
	e := NewEngine(discard())
	p := page(t,
		box(t, " Chapter One ", 48),
		box(t, "Some body text.", 12),
		box(t, "• first item", 12),
	)

	elements := e.Elements(p)
	if len(elements) != 3 {
		t.Fatalf("len(elements) = %d, want 3", len(elements))
	}
	if elements[0].Level != markdown.Heading1 {
		t.Errorf("elements[0].Level = %v, want Heading1", elements[0].Level)
	}
	if elements[0].Render() != "# Chapter One" {
		t.Errorf("elements[0].Render() = %q", elements[0].Render())
	}
	if elements[2].Style != markdown.StyleListItem {
		t.Errorf("elements[2].Style = %v, want StyleListItem", elements[2].Style)
	}
}
