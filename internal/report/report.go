// Package report writes a machine-readable JSON summary of a compression run.
// Reports ending in .zst or .gz are compressed with Zstandard or gzip.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/fpang/media-compress/internal/pipeline"
)

// Report is the top-level JSON document.
type Report struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	Mode       string    `json:"mode"`
	Quality    int       `json:"quality"`
	Workers    int       `json:"workers"`
	Overwrite  bool      `json:"overwrite"`
	Totals     Totals    `json:"totals"`
	Files      []File    `json:"files"`
	DurationMs int64     `json:"durationMs"`
}

// Totals mirrors pipeline.Summary.
type Totals struct {
	Count       int     `json:"count"`
	Succeeded   int     `json:"succeeded"`
	Skipped     int     `json:"skipped"`
	Failed      int     `json:"failed"`
	BytesBefore int64   `json:"bytesBefore"`
	BytesAfter  int64   `json:"bytesAfter"`
	BytesSaved  int64   `json:"bytesSaved"`
	SavedPct    float64 `json:"savedPercent"`
}

// File is one per-file entry.
type File struct {
	Path       string     `json:"path"`
	Output     string     `json:"output,omitempty"`
	Before     int64      `json:"before"`
	After      int64      `json:"after"`
	Quality    int        `json:"quality,omitempty"`
	Skipped    bool       `json:"skipped,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMs int64      `json:"durationMs"`
	TakenAt    *time.Time `json:"takenAt,omitempty"`
	Camera     string     `json:"camera,omitempty"`
}

// New builds a report from the run's records and summary. Files are listed in
// discovery order.
func New(records []pipeline.ResultRecord, s pipeline.Summary) *Report {
	sorted := make([]pipeline.ResultRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	r := &Report{
		Totals: Totals{
			Count:       s.Count,
			Succeeded:   s.Succeeded,
			Skipped:     s.Skipped,
			Failed:      s.Failed(),
			BytesBefore: s.TotalBefore,
			BytesAfter:  s.TotalAfter,
			BytesSaved:  s.TotalSaved,
			SavedPct:    s.SavedPercent(),
		},
		Files:      make([]File, 0, len(sorted)),
		DurationMs: s.Duration.Milliseconds(),
	}

	for _, rec := range sorted {
		f := File{
			Path:       rec.Path,
			Output:     rec.Output,
			Before:     rec.Before,
			After:      rec.After,
			Quality:    rec.Quality,
			Skipped:    rec.Skipped,
			DurationMs: rec.Duration.Milliseconds(),
		}
		if rec.Err != nil {
			f.Error = rec.Err.Error()
		}
		if m := rec.Meta; m != nil {
			if m.HasDate {
				taken := m.DateTaken
				f.TakenAt = &taken
			}
			f.Camera = m.Camera()
		}
		r.Files = append(r.Files, f)
	}
	return r
}

// Write stores the report at path, compressing it according to the extension.
func Write(path string, r *Report) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()

	w, err := compressor(path, f)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		w.Close()
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish report: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("files", len(r.Files)).
		Msg("Run report written")
	return nil
}

// Read loads a report written by Write.
func Read(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	rd, err := decompressor(path, f)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressor(path string, w io.Writer) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, nil
	case ".gz":
		return gzip.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

func decompressor(path string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	case ".gz":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gr, nil
	default:
		return io.NopCloser(r), nil
	}
}
