package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"bookocr/internal/batch"
	"bookocr/internal/config"
	"bookocr/internal/db"
	"bookocr/internal/ocr"
	"bookocr/internal/pdfrender"
	"bookocr/internal/pipeline"
	"bookocr/internal/structure"
)

const usage = `usage: bookocr <command> [arguments]

commands:
  convert            convert every PDF under INPUT_DIR to Markdown
  manifest <pdf>     write a batch request manifest for one document
  submit <job-id>    upload a prepared manifest and create the remote batch
  wait <job-id>      poll a submitted batch, download and decode its output
  decode <in> <out>  decode an already-downloaded batch output file
  jobs               poll all pending batch jobs once and list the ready ones
`

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "convert":
		err = runConvert(ctx, cfg, logger)
	case "manifest", "submit", "wait", "decode", "jobs":
		err = runBatch(ctx, cmd, os.Args[2:], cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func runConvert(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	renderer := pdfrender.NewRenderer()
	render := func(ctx context.Context, path string, scale float64) (pipeline.PageSource, error) {
		return renderer.Render(ctx, path, scale)
	}
	engine := ocr.NewTesseractEngine(cfg.TesseractLang)
	infer := structure.NewEngine(logger)

	p := pipeline.New(render, engine, infer, cfg.Scale, logger)
	summary, err := p.RunCorpus(ctx, cfg.InputDir, cfg.OutputDir, cfg.Workers)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d documents failed", summary.Failed)
	}
	return nil
}

func runBatch(ctx context.Context, cmd string, args []string, cfg config.Config, logger *slog.Logger) error {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	manifest := batch.NewManifest(batch.ManifestOptions{
		Model:  cfg.OpenAIModel,
		Detail: cfg.ImageDetail,
	}, logger)
	client := batch.NewClient(cfg.OpenAIKey, cfg.OpenAIEndpoint, cfg.PollInterval, logger)
	store := batch.NewStore(conn)
	wf := batch.NewWorkflow(manifest, client, store, logger)

	switch cmd {
	case "manifest":
		if len(args) != 1 {
			return fmt.Errorf("manifest: expected one PDF path")
		}
		return runManifest(ctx, wf, cfg, args[0])
	case "submit":
		if len(args) != 1 {
			return fmt.Errorf("submit: expected one job ID")
		}
		rec, err := wf.Submit(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("job %s submitted as %s (%s)\n", rec.ID, rec.BatchID, rec.Status)
		return nil
	case "wait":
		if len(args) != 1 {
			return fmt.Errorf("wait: expected one job ID")
		}
		outPath, err := wf.Complete(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(outPath)
		return nil
	case "decode":
		if len(args) != 2 {
			return fmt.Errorf("decode: expected input and output paths")
		}
		return wf.DecodeFile(args[0], args[1])
	case "jobs":
		ready, err := wf.Resume(ctx)
		if err != nil {
			return err
		}
		for _, rec := range ready {
			fmt.Printf("%s\t%s\t%s\n", rec.ID, rec.BatchID, rec.Document)
		}
		return nil
	}
	return fmt.Errorf("unknown batch command %q", cmd)
}

func runManifest(ctx context.Context, wf *batch.Workflow, cfg config.Config, pdfPath string) error {
	renderer := pdfrender.NewRenderer()
	pages, err := renderer.Render(ctx, pdfPath, cfg.Scale)
	if err != nil {
		return err
	}
	defer pages.Close()

	manifestPath := filepath.Join(cfg.OutputDir, batch.Stem(pdfPath)+".jsonl")
	rec, err := wf.Prepare(ctx, pdfPath, manifestPath, pages)
	if err != nil {
		return err
	}
	fmt.Printf("job %s prepared, manifest %s\n", rec.ID, rec.ManifestPath)
	return nil
}
