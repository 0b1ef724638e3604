// Package batch implements the remote OCR workflow: building JSONL request
// manifests from rendered pages, submitting them to the OpenAI batch API,
// tracking job state, and decoding results back into per-page text.
package batch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPrompt instructs the model to transcribe a page as Markdown.
const DefaultPrompt = "Transcribe this book page into Markdown. Preserve headings, paragraphs and list items. Output only the transcription."

// Request is one line of a batch manifest: a single-page transcription
// request addressed by custom ID.
type Request struct {
	CustomID string      `json:"custom_id"`
	Method   string      `json:"method"`
	URL      string      `json:"url"`
	Body     RequestBody `json:"body"`
}

// RequestBody is the payload of the /v1/responses call for one page.
type RequestBody struct {
	Model string         `json:"model"`
	Input []InputMessage `json:"input"`
}

type InputMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is either an input_text part (Text set) or an input_image part
// (ImageURL set to a data URL).
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// ManifestOptions configure manifest generation for one document.
type ManifestOptions struct {
	Model  string
	Prompt string
	Detail string
}

// PageSource yields rendered page images in document order.
type PageSource interface {
	Scan() bool
	PNG() []byte
	PageNumber() int
	Err() error
	Close() error
}

// CustomID names one page request within a batch. IDs are unique within a
// manifest and sort in page order.
func CustomID(stem string, pageNumber int) string {
	return fmt.Sprintf("%s-page-%04d", stem, pageNumber)
}

// Manifest builds JSONL request manifests from rendered documents.
type Manifest struct {
	opts   ManifestOptions
	logger *slog.Logger
}

func NewManifest(opts ManifestOptions, logger *slog.Logger) *Manifest {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Detail == "" {
		opts.Detail = "high"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manifest{opts: opts, logger: logger}
}

// Write encodes one request per page to w, JSONL, in page order. The stem
// names the document inside custom IDs so decoded output can be traced back.
// Page images are embedded as base64 PNG data URLs.
func (m *Manifest) Write(ctx context.Context, w io.Writer, stem string, pages PageSource) (int, error) {
	enc := json.NewEncoder(w)
	// Page text regularly contains non-ASCII; keep it readable in the manifest.
	enc.SetEscapeHTML(false)

	n := 0
	for pages.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		req := Request{
			CustomID: CustomID(stem, pages.PageNumber()),
			Method:   "POST",
			URL:      "/v1/responses",
			Body: RequestBody{
				Model: m.opts.Model,
				Input: []InputMessage{{
					Role: "user",
					Content: []ContentPart{
						{Type: "input_text", Text: m.opts.Prompt},
						{
							Type:     "input_image",
							ImageURL: dataURL(pages.PNG()),
							Detail:   m.opts.Detail,
						},
					},
				}},
			},
		}
		if err := enc.Encode(req); err != nil {
			return n, fmt.Errorf("encode page %d: %w", pages.PageNumber(), err)
		}
		n++
	}
	if err := pages.Err(); err != nil {
		return n, fmt.Errorf("iterate pages: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("document %s produced no pages", stem)
	}
	return n, nil
}

// WriteFile renders a manifest for one document to path, creating parent
// directories as needed.
func (m *Manifest) WriteFile(ctx context.Context, path, stem string, pages PageSource) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("ensure manifest dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create manifest: %w", err)
	}
	defer f.Close()

	n, err := m.Write(ctx, f, stem, pages)
	if err != nil {
		return n, err
	}
	m.logger.Info("manifest written", "path", path, "pages", n)
	return n, nil
}

// Stem derives the document name used in custom IDs from a PDF path.
func Stem(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func dataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
