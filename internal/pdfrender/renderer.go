// Package pdfrender rasterizes PDF pages to PNG images. Page counting uses
// the pdf library; rasterization shells out to Ghostscript, which renders the
// whole document in one run. Pages are then consumed one at a time through a
// pull-based iterator so a large document never sits in memory at once.
package pdfrender

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ledongthuc/pdf"
)

// DefaultScale is the rasterization scale factor. Higher scales improve OCR
// accuracy at higher rendering cost.
const DefaultScale = 2.0

// baseDPI is the PDF native resolution; the effective Ghostscript resolution
// is baseDPI * scale.
const baseDPI = 72

// Renderer rasterizes PDF documents with Ghostscript.
type Renderer struct {
	// Ghostscript is the binary name or absolute path; empty means "gs".
	Ghostscript string
}

// NewRenderer returns a Renderer using the gs binary from PATH.
func NewRenderer() *Renderer {
	return &Renderer{Ghostscript: "gs"}
}

// PageCount opens the PDF and returns its page count without rendering.
func (r *Renderer) PageCount(path string) (int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// Render rasterizes every page of the document at the given scale and returns
// an iterator over the page images in document order. The caller must Close
// the iterator to release the rendered files.
func (r *Renderer) Render(ctx context.Context, path string, scale float64) (*Pages, error) {
	if scale <= 0 {
		scale = DefaultScale
	}

	numPages, err := r.PageCount(path)
	if err != nil {
		return nil, err
	}
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages: %s", path)
	}

	tempDir, err := os.MkdirTemp("", "bookocr-render-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	// Render all pages in a single Ghostscript run; per-page invocations
	// re-parse the document every time.
	outputPattern := filepath.Join(tempDir, "page-%04d.png")
	gs := r.Ghostscript
	if gs == "" {
		gs = "gs"
	}
	cmd := exec.CommandContext(ctx, gs,
		"-dQUIET",
		"-dSAFER",
		"-dNOPAUSE",
		"-dBATCH",
		"-sDEVICE=png16m",
		fmt.Sprintf("-r%d", int(baseDPI*scale)),
		fmt.Sprintf("-sOutputFile=%s", outputPattern),
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("ghostscript render failed: %w, stderr: %s", err, stderr.String())
	}

	return &Pages{dir: tempDir, count: numPages}, nil
}

// Pages iterates over rendered page images in document order, scanner style:
//
//	for pages.Scan() {
//		use(pages.PageNumber(), pages.PNG())
//	}
//	if err := pages.Err(); err != nil { ... }
//
// The iterator is one-pass and non-restartable.
type Pages struct {
	dir   string
	count int
	next  int
	png   []byte
	err   error
}

// Count returns the total number of pages in the document.
func (p *Pages) Count() int {
	return p.count
}

// Scan advances to the next page, loading its PNG bytes. It returns false
// when the document is exhausted or a page could not be read.
func (p *Pages) Scan() bool {
	if p.err != nil || p.next >= p.count {
		return false
	}
	p.next++
	pagePath := filepath.Join(p.dir, fmt.Sprintf("page-%04d.png", p.next))
	data, err := os.ReadFile(pagePath)
	if err != nil {
		p.err = fmt.Errorf("read rendered page %d: %w", p.next, err)
		return false
	}
	p.png = data
	return true
}

// PNG returns the current page image. Valid until the next Scan call.
func (p *Pages) PNG() []byte {
	return p.png
}

// PageNumber returns the 1-based number of the current page.
func (p *Pages) PageNumber() int {
	return p.next
}

// Err returns the first error encountered while reading pages.
func (p *Pages) Err() error {
	return p.err
}

// Close removes the rendered page files.
func (p *Pages) Close() error {
	if p.dir == "" {
		return nil
	}
	dir := p.dir
	p.dir = ""
	return os.RemoveAll(dir)
}
