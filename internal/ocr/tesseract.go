package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine on top of the gosseract Tesseract
// binding. A fresh gosseract client is created per call: the client itself is
// not safe for concurrent use, so the engine stays shareable by never
// sharing one.
type TesseractEngine struct {
	language      string
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed recognition engine.
// language may list multiple tesseract language packs joined by "+";
// empty means tesseract's default ("eng").
func NewTesseractEngine(language string) *TesseractEngine {
	return &TesseractEngine{
		language:      language,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize runs Tesseract over a PNG page image and returns one TextBox per
// recognized text line, in tesseract's emission order.
func (e *TesseractEngine) Recognize(ctx context.Context, img []byte) (PageResult, error) {
	select {
	case <-ctx.Done():
		return PageResult{}, ctx.Err()
	default:
	}

	client := e.clientFactory()
	defer client.Close()

	if e.language != "" {
		if err := client.SetLanguage(e.language); err != nil {
			return PageResult{}, fmt.Errorf("set language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return PageResult{}, fmt.Errorf("set image: %w", err)
	}

	lines, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return PageResult{}, fmt.Errorf("get bounding boxes: %w", err)
	}

	boxes := make([]TextBox, 0, len(lines))
	for _, line := range lines {
		box, err := NewTextBox(quadFromRect(line.Box), line.Word, clampConfidence(line.Confidence/100.0))
		if err != nil {
			return PageResult{}, fmt.Errorf("build text box: %w", err)
		}
		boxes = append(boxes, box)
	}
	return PageResult{Boxes: boxes}, nil
}

// quadFromRect expands an axis-aligned rectangle into the clockwise
// quadrilateral the recognition model carries.
func quadFromRect(r image.Rectangle) [4]Point {
	return [4]Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
