package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// resultLine is one line of a downloaded batch output file.
type resultLine struct {
	CustomID string `json:"custom_id"`
	Response struct {
		Body struct {
			Output []struct {
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"output"`
		} `json:"body"`
	} `json:"response"`
}

// Decoder turns a batch output file back into readable text, one block per
// page, each preceded by a comment naming the request it came from.
type Decoder struct {
	logger *slog.Logger
}

func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// Decode reads JSONL batch results from r and writes the assembled document
// to w. Each record becomes an HTML comment carrying its custom ID, the
// record's text content, and a blank line. Records that cannot be parsed
// still emit a comment, labelled unknown, so pages are never silently lost.
func (d *Decoder) Decode(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Pages with dense text plus request metadata can exceed the default
	// 64KB line limit.
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		customID, body := d.decodeLine(line)
		if _, err := fmt.Fprintf(w, "<!-- %s -->\n%s\n\n", customID, body); err != nil {
			return fmt.Errorf("write decoded page: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read batch output: %w", err)
	}
	return nil
}

func (d *Decoder) decodeLine(line []byte) (customID, body string) {
	var rec resultLine
	if err := json.Unmarshal(line, &rec); err != nil {
		d.logger.Warn("malformed result line", "error", err)
		return "unknown", ""
	}
	customID = rec.CustomID
	if customID == "" {
		customID = "unknown"
	}

	var chunks []string
	for _, out := range rec.Response.Body.Output {
		for _, part := range out.Content {
			if part.Type == "output_text" && part.Text != "" {
				chunks = append(chunks, part.Text)
			}
		}
	}
	return customID, strings.Join(chunks, "\n")
}
