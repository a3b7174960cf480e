package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/media-compress/internal/filehandler"
)

// DefaultWorkers returns the logical CPU count, falling back to runtime.NumCPU.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		log.Debug().Err(err).Msg("CPU count unavailable, using runtime.NumCPU")
		return runtime.NumCPU()
	}
	return n
}

// Dispatcher fans files out to a Worker with bounded parallelism.
type Dispatcher struct {
	worker   Worker
	workers  int
	observer Observer
}

// NewDispatcher creates a Dispatcher. workers <= 0 selects DefaultWorkers.
// A nil observer is replaced with NopObserver.
func NewDispatcher(worker Worker, workers int, observer Observer) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Dispatcher{worker: worker, workers: workers, observer: observer}
}

// Workers returns the concurrency limit in use.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Run compresses every file and returns exactly one record per input, in
// completion order. At most Workers() files are in flight at any time.
// Once ctx is cancelled no new files are started; the remaining files are
// recorded as failures with the context error.
func (d *Dispatcher) Run(ctx context.Context, files []filehandler.DiscoveredFile) []ResultRecord {
	total := len(files)
	d.observer.OnStart(total, d.workers)

	log.Info().
		Int("files", total).
		Int("workers", d.workers).
		Msg("Starting compression")

	results := make(chan ResultRecord, d.workers)
	records := make([]ResultRecord, 0, total)
	collected := make(chan struct{})

	// Single collector: the only goroutine touching records and the observer.
	go func() {
		defer close(collected)
		for rec := range results {
			records = append(records, rec)
			d.observer.OnFileDone(len(records), total, rec)
		}
	}()

	var g errgroup.Group
	g.SetLimit(d.workers)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			results <- Failure(file, err, 0)
			continue
		}
		g.Go(func() error {
			results <- d.runOne(ctx, file)
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	<-collected

	return records
}

// runOne invokes the worker, converting a panic into a failed record so that
// no file is ever dropped.
func (d *Dispatcher) runOne(ctx context.Context, file filehandler.DiscoveredFile) (rec ResultRecord) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Str("path", file.Path).
				Interface("panic", p).
				Msg("Worker panicked")
			rec = Failure(file, fmt.Errorf("worker panic: %v", p), time.Since(start))
		}
	}()
	return d.worker.Compress(ctx, file)
}
