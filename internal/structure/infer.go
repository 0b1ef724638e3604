package structure

import (
	"log/slog"
	"sort"
	"strings"

	"bookocr/internal/markdown"
	"bookocr/internal/ocr"
)

// DefaultListPrefixes are the characters that mark a detection as a list item
// when they lead its trimmed text.
var DefaultListPrefixes = []string{"-", "•", "·", "●"}

// Engine turns a page of OCR detections into structured Markdown elements.
// It is stateless apart from configuration and safe for concurrent use.
type Engine struct {
	clusterer    Clusterer
	listPrefixes []string
	levelCount   int
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClusterer swaps the height-clustering implementation.
func WithClusterer(c Clusterer) Option {
	return func(e *Engine) {
		if c != nil {
			e.clusterer = c
		}
	}
}

// WithListPrefixes overrides the list-item prefix set.
func WithListPrefixes(prefixes []string) Option {
	return func(e *Engine) {
		if len(prefixes) > 0 {
			e.listPrefixes = prefixes
		}
	}
}

// WithLevelCount overrides the number of height clusters requested. Values
// below 1 are ignored.
func WithLevelCount(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.levelCount = n
		}
	}
}

// NewEngine builds an inference engine with deterministic k-means clustering
// and the default list prefixes.
func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		clusterer:    &KMeans{},
		listPrefixes: DefaultListPrefixes,
		levelCount:   markdown.LevelCount,
		logger:       logger,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// InferLevels clusters the page's text boxes by height and maps each box to a
// structural level: the cluster with the tallest mean height becomes
// Heading1, the next Heading2, and so on. Cluster ranks beyond the level
// enumeration clamp to Paragraph. The result has one entry per box, in input
// order; an empty page yields an empty result without invoking clustering.
func (e *Engine) InferLevels(page ocr.PageResult) []markdown.Level {
	if page.Empty() {
		return nil
	}

	heights := make([]float64, page.Len())
	for i, box := range page.Boxes {
		heights[i] = float64(box.Height())
	}

	labels := e.clusterer.Cluster(heights, e.levelCount)
	rank := rankByMeanHeight(labels, heights)

	levels := make([]markdown.Level, len(labels))
	for i, label := range labels {
		r := rank[label]
		if r >= len(markdown.Levels) {
			r = len(markdown.Levels) - 1
		}
		levels[i] = markdown.Levels[r]
	}
	return levels
}

// rankByMeanHeight maps each cluster label to its rank when clusters are
// ordered by descending mean height, so rank 0 is the tallest cluster.
func rankByMeanHeight(labels []int, heights []float64) map[int]int {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i, label := range labels {
		sums[label] += heights[i]
		counts[label]++
	}

	type clusterMean struct {
		label int
		mean  float64
	}
	means := make([]clusterMean, 0, len(sums))
	for label, sum := range sums {
		means = append(means, clusterMean{label: label, mean: sum / float64(counts[label])})
	}
	// Descending by mean; ties break on label to stay deterministic.
	sort.Slice(means, func(i, j int) bool {
		if means[i].mean != means[j].mean {
			return means[i].mean > means[j].mean
		}
		return means[i].label < means[j].label
	})

	rank := make(map[int]int, len(means))
	for r, cm := range means {
		rank[cm.label] = r
	}
	return rank
}

// DetectListStyle flags each box whose trimmed text starts with a list prefix.
// Pure and order-preserving: one style per box, in input order.
func (e *Engine) DetectListStyle(page ocr.PageResult) []markdown.Style {
	styles := make([]markdown.Style, page.Len())
	for i, box := range page.Boxes {
		text := strings.TrimSpace(box.Text)
		for _, prefix := range e.listPrefixes {
			if strings.HasPrefix(text, prefix) {
				styles[i] = markdown.StyleListItem
				break
			}
		}
	}
	return styles
}

// BuildElements zips boxes, levels, and styles into Markdown elements with
// trimmed content, preserving input order. A length mismatch between the
// three sequences is an inconsistency worth reporting, but losing partial
// page structure beats losing the page: the zip truncates to the shortest
// length instead of failing.
func (e *Engine) BuildElements(page ocr.PageResult, levels []markdown.Level, styles []markdown.Style) []markdown.Element {
	n := page.Len()
	if len(levels) != n || len(styles) != n {
		e.logger.Error("box/level/style length mismatch, truncating",
			"boxes", n, "levels", len(levels), "styles", len(styles))
		if len(levels) < n {
			n = len(levels)
		}
		if len(styles) < n {
			n = len(styles)
		}
	}

	elements := make([]markdown.Element, 0, n)
	for i := 0; i < n; i++ {
		elements = append(elements, markdown.Element{
			Level:   levels[i],
			Style:   styles[i],
			Content: strings.TrimSpace(page.Boxes[i].Text),
		})
	}
	return elements
}

// Elements runs the full per-page inference: levels, list styles, and the
// final zip into renderable elements.
func (e *Engine) Elements(page ocr.PageResult) []markdown.Element {
	return e.BuildElements(page, e.InferLevels(page), e.DetectListStyle(page))
}
