// Package markdown models the structured Markdown lines that the pipeline
// emits: a structural level (heading rank or paragraph), an optional style
// modifier (list item), and the text content.
package markdown

import "strings"

// Level is the structural rank of an element. The zero value is Heading1;
// levels are ordered from most to least prominent, with Paragraph last.
type Level int

const (
	Heading1 Level = iota
	Heading2
	Heading3
	Paragraph
)

// LevelCount is the number of structural levels, used as the default cluster
// count when inferring levels from text-box heights.
const LevelCount = 4

// Levels lists all structural levels in rank order (largest heights first).
var Levels = [LevelCount]Level{Heading1, Heading2, Heading3, Paragraph}

// Marker returns the Markdown prefix for the level. Paragraph has none.
func (l Level) Marker() string {
	switch l {
	case Heading1:
		return "#"
	case Heading2:
		return "##"
	case Heading3:
		return "###"
	default:
		return ""
	}
}

func (l Level) String() string {
	switch l {
	case Heading1:
		return "heading1"
	case Heading2:
		return "heading2"
	case Heading3:
		return "heading3"
	default:
		return "paragraph"
	}
}

// Style is a formatting modifier that combines with a Level.
type Style int

const (
	StyleNone Style = iota
	StyleListItem
)

// Marker returns the Markdown prefix for the style. StyleNone has none.
func (s Style) Marker() string {
	if s == StyleListItem {
		return "-"
	}
	return ""
}

func (s Style) String() string {
	if s == StyleListItem {
		return "list_item"
	}
	return "none"
}

// Element is one renderable Markdown line. Elements are immutable values;
// two adjacent elements never merge.
type Element struct {
	Level   Level
	Style   Style
	Content string
}

// Render emits the element as a single Markdown line: the non-empty parts
// among style marker, level marker, and content, joined by spaces.
func (e Element) Render() string {
	parts := make([]string, 0, 3)
	if m := e.Style.Marker(); m != "" {
		parts = append(parts, m)
	}
	if m := e.Level.Marker(); m != "" {
		parts = append(parts, m)
	}
	if e.Content != "" {
		parts = append(parts, e.Content)
	}
	return strings.Join(parts, " ")
}
