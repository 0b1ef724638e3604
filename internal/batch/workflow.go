package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Workflow runs the full remote OCR lifecycle for a document: manifest,
// submit, wait, download, decode. Every transition is persisted so an
// interrupted run can be resumed from the job store.
type Workflow struct {
	manifest *Manifest
	client   *Client
	store    *Store
	decoder  *Decoder
	logger   *slog.Logger
}

func NewWorkflow(manifest *Manifest, client *Client, store *Store, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		manifest: manifest,
		client:   client,
		store:    store,
		decoder:  NewDecoder(logger),
		logger:   logger,
	}
}

// Prepare writes the manifest for a document and registers a job for it.
func (w *Workflow) Prepare(ctx context.Context, pdfPath, manifestPath string, pages PageSource) (JobRecord, error) {
	stem := Stem(pdfPath)
	if _, err := w.manifest.WriteFile(ctx, manifestPath, stem, pages); err != nil {
		return JobRecord{}, fmt.Errorf("prepare manifest for %s: %w", stem, err)
	}
	rec, err := w.store.Create(ctx, pdfPath, manifestPath)
	if err != nil {
		return JobRecord{}, err
	}
	return rec, nil
}

// Submit uploads a prepared job's manifest and creates the remote batch.
func (w *Workflow) Submit(ctx context.Context, jobID string) (JobRecord, error) {
	rec, err := w.store.Get(ctx, jobID)
	if err != nil {
		return JobRecord{}, err
	}
	job, err := w.client.Submit(ctx, rec.ManifestPath)
	if err != nil {
		return JobRecord{}, err
	}
	if err := w.store.UpdateSubmission(ctx, rec.ID, job); err != nil {
		return JobRecord{}, err
	}
	return w.store.Get(ctx, rec.ID)
}

// Complete waits for a submitted job to finish, downloads its output and
// decodes it next to the manifest. It returns the path of the decoded text.
func (w *Workflow) Complete(ctx context.Context, jobID string) (string, error) {
	rec, err := w.store.Get(ctx, jobID)
	if err != nil {
		return "", err
	}
	if rec.BatchID == "" {
		return "", fmt.Errorf("job %s has not been submitted", jobID)
	}

	job, err := w.client.Wait(ctx, rec.BatchID)
	if job.Status != "" {
		if uerr := w.store.UpdateStatus(ctx, rec.ID, job.Status, job.OutputFileID); uerr != nil {
			w.logger.Error("persist batch status", "job", rec.ID, "error", uerr)
		}
	}
	if err != nil {
		return "", err
	}

	rawPath := replaceExt(rec.ManifestPath, ".out.jsonl")
	if err := w.client.Download(ctx, job.OutputFileID, rawPath); err != nil {
		return "", err
	}

	outPath := replaceExt(rec.ManifestPath, ".md")
	if err := w.decodeFile(rawPath, outPath); err != nil {
		return "", err
	}
	if err := w.store.UpdateOutputPath(ctx, rec.ID, outPath); err != nil {
		return "", err
	}
	w.logger.Info("batch job complete", "job", rec.ID, "output", outPath)
	return outPath, nil
}

// DecodeFile decodes an already-downloaded batch output file to outPath.
// It supports the recovery path where results were fetched by hand.
func (w *Workflow) DecodeFile(rawPath, outPath string) error {
	return w.decodeFile(rawPath, outPath)
}

func (w *Workflow) decodeFile(rawPath, outPath string) error {
	in, err := os.Open(rawPath)
	if err != nil {
		return fmt.Errorf("open batch output: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create decoded output: %w", err)
	}
	defer out.Close()

	return w.decoder.Decode(in, out)
}

// Resume polls every non-terminal job in the store once and persists what it
// finds. It returns the jobs that are now ready to download.
func (w *Workflow) Resume(ctx context.Context) ([]JobRecord, error) {
	pending, err := w.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	var ready []JobRecord
	for _, rec := range pending {
		if rec.BatchID == "" {
			continue
		}
		job, err := w.client.Poll(ctx, rec.BatchID)
		if err != nil {
			w.logger.Error("poll batch", "job", rec.ID, "batch_id", rec.BatchID, "error", err)
			continue
		}
		if err := w.store.UpdateStatus(ctx, rec.ID, job.Status, job.OutputFileID); err != nil {
			w.logger.Error("persist batch status", "job", rec.ID, "error", err)
			continue
		}
		if job.Status.HasOutput() {
			updated, err := w.store.Get(ctx, rec.ID)
			if err != nil {
				return nil, err
			}
			ready = append(ready, updated)
		}
	}
	return ready, nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
