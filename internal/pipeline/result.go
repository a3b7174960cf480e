// Package pipeline runs the compression worker over every discovered file and
// reduces the per-file results into a run summary.
package pipeline

import (
	"context"
	"time"

	"github.com/fpang/media-compress/internal/filehandler"
)

// ResultRecord is the outcome of processing one discovered file.
// Failed records carry Before = After = 0.
type ResultRecord struct {
	Path     string
	Output   string
	Index    int
	Before   int64
	After    int64
	Quality  int  // effective JPEG quality; 0 when skipped or failed
	Skipped  bool // destination already existed and overwrite was off
	Err      error
	Duration time.Duration
	Meta     *filehandler.ImageMetadata
}

// Success builds a record for a file that was encoded or skipped.
func Success(file filehandler.DiscoveredFile, output string, before, after int64, dur time.Duration) ResultRecord {
	return ResultRecord{
		Path:     file.Path,
		Output:   output,
		Index:    file.Index,
		Before:   before,
		After:    after,
		Duration: dur,
	}
}

// Failure builds a record for a file whose processing failed.
func Failure(file filehandler.DiscoveredFile, err error, dur time.Duration) ResultRecord {
	return ResultRecord{
		Path:     file.Path,
		Index:    file.Index,
		Err:      err,
		Duration: dur,
	}
}

// Failed reports whether the record describes a failure.
func (r ResultRecord) Failed() bool {
	return r.Err != nil
}

// Saved returns the bytes saved for this file, never negative.
func (r ResultRecord) Saved() int64 {
	if r.After >= r.Before {
		return 0
	}
	return r.Before - r.After
}

// Worker compresses a single file end-to-end. Implementations must convert every
// per-file problem into a failed ResultRecord instead of returning an error.
type Worker interface {
	Compress(ctx context.Context, file filehandler.DiscoveredFile) ResultRecord
}

// Observer receives progress events. Calls are made from a single collector
// goroutine, so implementations need no locking of their own.
type Observer interface {
	OnStart(total, workers int)
	OnFileDone(done, total int, rec ResultRecord)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) OnStart(int, int)                  {}
func (NopObserver) OnFileDone(int, int, ResultRecord) {}
