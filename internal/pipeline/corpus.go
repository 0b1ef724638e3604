package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CorpusSummary counts document outcomes across one corpus run.
type CorpusSummary struct {
	Converted int
	Skipped   int
	Failed    int
}

// RunCorpus converts every readable PDF under inputDir into a Markdown file
// under outputDir, mirroring the directory layout. Up to workers documents
// are processed at once. A failing document is logged and counted but never
// stops the run; already-converted documents are skipped, so the whole corpus
// can be resumed by running again.
func (p *Pipeline) RunCorpus(ctx context.Context, inputDir, outputDir string, workers int) (CorpusSummary, error) {
	var summary CorpusSummary

	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		p.logger.Error("input directory not accessible", "dir", inputDir, "error", err)
		return summary, fmt.Errorf("input directory %s not accessible", inputDir)
	}
	if workers < 1 {
		workers = 1
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)
	for path := range Discover(ctx, inputDir, p.logger) {
		outPath, err := mirrorOutputPath(inputDir, outputDir, path)
		if err != nil {
			p.logger.Error("cannot derive output path", "document", path, "error", err)
			mu.Lock()
			summary.Failed++
			mu.Unlock()
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(pdfPath, outPath string) {
			defer wg.Done()
			defer func() { <-sem }()

			status, err := p.ProcessDocument(ctx, pdfPath, outPath)
			if err != nil {
				p.logger.Error("document failed", "document", pdfPath, "error", err)
			}
			mu.Lock()
			switch status {
			case DocConverted:
				summary.Converted++
			case DocSkipped:
				summary.Skipped++
			default:
				summary.Failed++
			}
			mu.Unlock()
		}(path, outPath)
	}
	wg.Wait()

	p.logger.Info("corpus run finished",
		"converted", summary.Converted,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary, nil
}

// mirrorOutputPath maps an input document to its output file, preserving the
// relative directory structure and swapping the extension for .md.
func mirrorOutputPath(inputDir, outputDir, pdfPath string) (string, error) {
	rel, err := filepath.Rel(inputDir, pdfPath)
	if err != nil {
		return "", err
	}
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(outputDir, stem+".md"), nil
}
