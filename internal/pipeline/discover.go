package pipeline

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Discover walks root and sends the path of every readable PDF on the
// returned channel, closing it when the walk finishes. Readability is probed
// by opening the file and reading a single byte, so permission problems and
// truncated files surface here instead of mid-conversion. Unreadable files
// are logged and skipped; they never abort the walk.
func Discover(ctx context.Context, root string, logger *slog.Logger) <-chan string {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(chan string)
	go func() {
		defer close(out)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("cannot access path, skipping", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
				return nil
			}
			if !probeReadable(path) {
				logger.Warn("file not readable, skipping", "path", path)
				return nil
			}
			select {
			case out <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil && err != context.Canceled {
			logger.Error("discovery walk failed", "root", root, "error", err)
		}
	}()
	return out
}

// probeReadable opens the file and reads a single byte. A zero-byte file is
// still readable; it will fail later, at parse time, with a clearer error.
func probeReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 1)
	_, err = f.Read(buf)
	return err == nil || err == io.EOF
}
