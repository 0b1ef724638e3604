// Package ocr defines the recognition model shared by the pipeline: text
// boxes with quadrilateral geometry and confidence, plus the Engine interface
// that an OCR backend implements.
package ocr

import (
	"context"
	"fmt"
)

// Point is an integer pixel coordinate on a rendered page.
type Point struct {
	X int
	Y int
}

// TextBox is a single OCR detection: four clockwise quadrilateral corners,
// the recognized text (which may carry surrounding whitespace), and a
// confidence score in [0, 1].
type TextBox struct {
	Quad       [4]Point
	Text       string
	Confidence float64
}

// NewTextBox builds a TextBox, rejecting confidence values outside [0, 1].
func NewTextBox(quad [4]Point, text string, confidence float64) (TextBox, error) {
	if confidence < 0.0 || confidence > 1.0 {
		return TextBox{}, fmt.Errorf("confidence %v out of range [0, 1]", confidence)
	}
	return TextBox{Quad: quad, Text: text, Confidence: confidence}, nil
}

// Height returns the pixel height of the detection, the vertical span of its
// quadrilateral. Height is always derived, never stored.
func (b TextBox) Height() int {
	minY, maxY := b.Quad[0].Y, b.Quad[0].Y
	for _, p := range b.Quad[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return maxY - minY
}

// PageResult holds every detection on one rendered page, in the engine's
// native emission order. Reading order is not re-derived.
type PageResult struct {
	Boxes []TextBox
}

// Len returns the number of detections on the page.
func (p PageResult) Len() int {
	return len(p.Boxes)
}

// Empty reports whether the page produced no detections.
func (p PageResult) Empty() bool {
	return len(p.Boxes) == 0
}

// Engine recognizes text on a rasterized page image. Implementations must be
// safe for concurrent use; the pipeline shares one instance across documents.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (PageResult, error)
}
