// Package pipeline orchestrates PDF-to-Markdown conversion: rendering pages,
// recognizing text, inferring structure, and writing per-document Markdown
// files, for single documents and for whole corpora.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bookocr/internal/markdown"
	"bookocr/internal/ocr"
	"bookocr/internal/structure"
)

// PageSource yields rendered page images in document order. It matches the
// iterator returned by pdfrender.Renderer.
type PageSource interface {
	Scan() bool
	PNG() []byte
	PageNumber() int
	Err() error
	Close() error
}

// DocStatus is the outcome of processing one document.
type DocStatus int

const (
	DocConverted DocStatus = iota
	DocSkipped
	DocFailed
)

func (s DocStatus) String() string {
	switch s {
	case DocConverted:
		return "converted"
	case DocSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Pipeline converts documents using an injected renderer and recognition
// engine. Both are shared across documents; the pipeline itself holds no
// per-document state and is safe for concurrent use.
type Pipeline struct {
	render RenderFunc
	engine ocr.Engine
	infer  *structure.Engine
	scale  float64
	logger *slog.Logger
}

// RenderFunc rasterizes a document into a page iterator. It is satisfied by
// binding pdfrender.Renderer.Render.
type RenderFunc func(ctx context.Context, path string, scale float64) (PageSource, error)

// New builds a Pipeline. A nil logger falls back to slog.Default; a zero or
// negative scale falls back to the renderer's default.
func New(render RenderFunc, engine ocr.Engine, infer *structure.Engine, scale float64, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		render: render,
		engine: engine,
		infer:  infer,
		scale:  scale,
		logger: logger,
	}
}

// ProcessPage recognizes a rendered page image and infers its Markdown
// elements. Zero detections is not an error: the page simply contributes no
// elements and the caller decides how to report it.
func (p *Pipeline) ProcessPage(ctx context.Context, png []byte) ([]markdown.Element, error) {
	page, err := p.engine.Recognize(ctx, png)
	if err != nil {
		return nil, fmt.Errorf("recognize page: %w", err)
	}
	if page.Empty() {
		return nil, nil
	}
	return p.infer.Elements(page), nil
}

// ProcessDocument converts one PDF into one Markdown file. If the output
// already exists the document is skipped, which makes corpus re-runs
// idempotent: finished documents are never reprocessed or overwritten.
// Elements are appended page by page and flushed after each page, so output
// written before a failure survives. Any error abandons the document; the
// partial output is left in place for inspection.
func (p *Pipeline) ProcessDocument(ctx context.Context, pdfPath, outPath string) (DocStatus, error) {
	log := p.logger.With("document", pdfPath)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return DocFailed, fmt.Errorf("ensure output dir: %w", err)
	}

	if _, err := os.Stat(outPath); err == nil {
		log.Warn("output already exists, skipping", "output", outPath)
		return DocSkipped, nil
	}

	pages, err := p.render(ctx, pdfPath, p.scale)
	if err != nil {
		return DocFailed, fmt.Errorf("render document: %w", err)
	}
	defer pages.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return DocFailed, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	for pages.Scan() {
		elements, err := p.ProcessPage(ctx, pages.PNG())
		if err != nil {
			return DocFailed, fmt.Errorf("page %d: %w", pages.PageNumber(), err)
		}
		if len(elements) == 0 {
			log.Warn("page has no recognizable content, skipping", "page", pages.PageNumber())
			continue
		}
		for _, el := range elements {
			if _, err := w.WriteString(el.Render() + "\n\n"); err != nil {
				return DocFailed, fmt.Errorf("write page %d: %w", pages.PageNumber(), err)
			}
		}
		if err := w.Flush(); err != nil {
			return DocFailed, fmt.Errorf("flush page %d: %w", pages.PageNumber(), err)
		}
	}
	if err := pages.Err(); err != nil {
		return DocFailed, fmt.Errorf("iterate pages: %w", err)
	}
	if err := w.Flush(); err != nil {
		return DocFailed, fmt.Errorf("flush output: %w", err)
	}

	log.Info("document converted", "output", outPath)
	return DocConverted, nil
}
