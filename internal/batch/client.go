package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// responsesEndpoint is the batch target for page transcription requests.
const responsesEndpoint = openai.BatchEndpoint("/v1/responses")

// ErrNoOutput is returned by Wait when a job reaches a terminal state other
// than completed, so there is no output file to download.
var ErrNoOutput = errors.New("batch finished without output")

// api is the slice of the OpenAI client the batch workflow needs. The real
// *openai.Client satisfies it.
type api interface {
	CreateFileBytes(ctx context.Context, request openai.FileBytesRequest) (openai.File, error)
	CreateBatch(ctx context.Context, request openai.CreateBatchRequest) (openai.BatchResponse, error)
	RetrieveBatch(ctx context.Context, batchID string) (openai.BatchResponse, error)
	ListBatch(ctx context.Context, after *string, limit *int) (openai.ListBatchResponse, error)
	GetFileContent(ctx context.Context, fileID string) (openai.RawResponse, error)
}

// Job is the remote-side identity of one submitted manifest.
type Job struct {
	BatchID      string
	InputFileID  string
	OutputFileID string
	Status       Status
}

// Client drives manifests through the OpenAI batch API: upload, create,
// poll, download.
type Client struct {
	api          api
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewClient builds a Client against the given API key and base endpoint.
func NewClient(apiKey, endpoint string, pollInterval time.Duration, logger *slog.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	return newClient(openai.NewClientWithConfig(cfg), pollInterval, logger)
}

func newClient(api api, pollInterval time.Duration, logger *slog.Logger) *Client {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, pollInterval: pollInterval, logger: logger}
}

// Submit uploads a manifest file and creates a batch job for it. The
// returned job starts in whatever status the API assigned, normally
// validating.
func (c *Client) Submit(ctx context.Context, manifestPath string) (Job, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return Job{}, fmt.Errorf("read manifest: %w", err)
	}

	file, err := c.api.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    filepath.Base(manifestPath),
		Bytes:   data,
		Purpose: openai.PurposeBatch,
	})
	if err != nil {
		return Job{}, fmt.Errorf("upload manifest: %w", err)
	}
	c.logger.Info("manifest uploaded", "file_id", file.ID, "manifest", manifestPath)

	resp, err := c.api.CreateBatch(ctx, openai.CreateBatchRequest{
		InputFileID:      file.ID,
		Endpoint:         responsesEndpoint,
		CompletionWindow: "24h",
		Metadata: map[string]any{
			"source": filepath.Base(manifestPath),
		},
	})
	if err != nil {
		return Job{}, fmt.Errorf("create batch: %w", err)
	}

	job := jobFromBatch(resp.Batch)
	c.logger.Info("batch created", "batch_id", job.BatchID, "status", job.Status)
	return job, nil
}

// Poll fetches the current state of a batch job once.
func (c *Client) Poll(ctx context.Context, batchID string) (Job, error) {
	resp, err := c.api.RetrieveBatch(ctx, batchID)
	if err != nil {
		return Job{}, fmt.Errorf("retrieve batch %s: %w", batchID, err)
	}
	return jobFromBatch(resp.Batch), nil
}

// Wait polls the job until it reaches a terminal state or ctx is cancelled.
// It returns the final job state; if that state is terminal but produced no
// output the error is ErrNoOutput, so callers can distinguish "batch is done
// but empty-handed" from transport failures.
func (c *Client) Wait(ctx context.Context, batchID string) (Job, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		job, err := c.Poll(ctx, batchID)
		if err != nil {
			return Job{}, err
		}
		if !job.Status.Known() {
			c.logger.Warn("unknown batch status, continuing to poll",
				"batch_id", batchID, "status", job.Status)
		}
		if job.Status.Terminal() {
			if !job.Status.HasOutput() {
				return job, fmt.Errorf("batch %s ended %s: %w", batchID, job.Status, ErrNoOutput)
			}
			return job, nil
		}
		c.logger.Info("batch pending", "batch_id", batchID, "status", job.Status)

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Download streams the job's output file to path.
func (c *Client) Download(ctx context.Context, outputFileID, path string) error {
	raw, err := c.api.GetFileContent(ctx, outputFileID)
	if err != nil {
		return fmt.Errorf("fetch output file %s: %w", outputFileID, err)
	}
	defer raw.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, raw); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	c.logger.Info("batch output downloaded", "file_id", outputFileID, "path", path)
	return nil
}

// ListRecent returns up to limit of the most recent batch jobs on the
// account, newest first. Useful for recovering a batch ID that was lost
// between submit and decode.
func (c *Client) ListRecent(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	resp, err := c.api.ListBatch(ctx, nil, &limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	jobs := make([]Job, 0, len(resp.Data))
	for _, b := range resp.Data {
		jobs = append(jobs, jobFromBatch(b))
	}
	return jobs, nil
}

func jobFromBatch(b openai.Batch) Job {
	job := Job{
		BatchID:     b.ID,
		InputFileID: b.InputFileID,
		Status:      Status(b.Status),
	}
	if b.OutputFileID != nil {
		job.OutputFileID = *b.OutputFileID
	}
	return job
}
