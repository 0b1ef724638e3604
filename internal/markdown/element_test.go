package markdown

import "testing"

func TestElementRender(t *testing.T) {
	tests := []struct {
		name    string
		element Element
		want    string
	}{
		{
			name:    "PlainParagraph",
			element: Element{Level: Paragraph, Style: StyleNone, Content: "hello"},
			want:    "hello",
		},
		{
			name:    "Heading1",
			element: Element{Level: Heading1, Style: StyleNone, Content: "Title"},
			want:    "# Title",
		},
		{
			name:    "Heading2",
			element: Element{Level: Heading2, Style: StyleNone, Content: "Section"},
			want:    "## Section",
		},
		{
			name:    "Heading3",
			element: Element{Level: Heading3, Style: StyleNone, Content: "Subsection"},
			want:    "### Subsection",
		},
		{
			name:    "ListItemParagraph",
			element: Element{Level: Paragraph, Style: StyleListItem, Content: "item"},
			want:    "- item",
		},
		{
			name:    "ListItemHeading",
			element: Element{Level: Heading2, Style: StyleListItem, Content: "point"},
			want:    "- ## point",
		},
		{
			name:    "EmptyContent",
			element: Element{Level: Paragraph, Style: StyleNone, Content: ""},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.element.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevelMarkers(t *testing.T) {
	want := map[Level]string{
		Heading1:  "#",
		Heading2:  "##",
		Heading3:  "###",
		Paragraph: "",
	}
	for level, marker := range want {
		if got := level.Marker(); got != marker {
			t.Errorf("Level(%v).Marker() = %q, want %q", level, got, marker)
		}
	}
}

func TestLevelsOrdering(t *testing.T) {
	// Levels must be ranked most-prominent first so cluster rank maps by index.
	for i := 1; i < len(Levels); i++ {
		if Levels[i-1] >= Levels[i] {
			t.Fatalf("Levels[%d] = %v not ranked above Levels[%d] = %v", i-1, Levels[i-1], i, Levels[i])
		}
	}
	if Levels[len(Levels)-1] != Paragraph {
		t.Errorf("last level = %v, want Paragraph", Levels[len(Levels)-1])
	}
}
