package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-compress/internal/cli"
	"github.com/fpang/media-compress/internal/compress"
	"github.com/fpang/media-compress/internal/config"
	"github.com/fpang/media-compress/internal/filehandler"
	"github.com/fpang/media-compress/internal/logging"
	"github.com/fpang/media-compress/internal/metrics"
	"github.com/fpang/media-compress/internal/pipeline"
	"github.com/fpang/media-compress/internal/report"
)

// run executes one compression run. Only run-level problems (invalid config,
// no input, unusable output root, report failures) are returned; per-file
// failures are part of the printed summary.
func run(ctx context.Context, cfg config.Config, stdout io.Writer, progress *cli.ProgressPrinter) error {
	initStart := time.Now()

	if err := cfg.Validate(); err != nil {
		return err
	}

	discovery, err := filehandler.Discover(cfg.Input, filehandler.ScanOptions{MaxDepth: cfg.MaxDepth})
	if err != nil {
		return err
	}
	progress.Header(discovery, cfg.Output)

	if err := compress.PrepareOutputRoot(cfg.Output, discovery.Mode); err != nil {
		return fmt.Errorf("failed to prepare output %s: %w", cfg.Output, err)
	}

	worker, err := compress.New(&cfg, discovery, filehandler.JPEGCodec{})
	if err != nil {
		return err
	}
	dispatcher := pipeline.NewDispatcher(worker, cfg.Workers, progress)

	startup := logging.NewStartupLogger("media-compress").
		Version(version).
		Workers(dispatcher.Workers(), pipeline.DefaultWorkers()).
		Path("input", discovery.Root).
		Path("output", cfg.Output).
		Feature("overwrite", cfg.Overwrite).
		Feature("metrics", cfg.Metrics).
		Config("quality", strconv.Itoa(cfg.Quality)).
		Config("maxDepth", strconv.Itoa(cfg.MaxDepth)).
		Config("mode", discovery.Mode.String()).
		Config("worker", worker.String()).
		InitDuration(time.Since(initStart))
	if cfg.ReportPath != "" {
		startup.Path("report", cfg.ReportPath)
	}
	startup.Log()

	startedAt := time.Now()
	records := dispatcher.Run(ctx, discovery.Files)
	summary := pipeline.Aggregate(records, time.Since(startedAt))

	log.Info().
		Int("files", summary.Count).
		Int("failed", summary.Failed()).
		Int("skipped", summary.Skipped).
		Int64("saved", summary.TotalSaved).
		Dur("elapsed", summary.Duration).
		Msg("Compression complete")

	progress.Finish(summary)

	if cfg.ReportPath != "" {
		r := report.New(records, summary)
		r.RunID = startup.RunID()
		r.StartedAt = startedAt.UTC()
		r.Input = discovery.Root
		r.Output = cfg.Output
		r.Mode = discovery.Mode.String()
		r.Quality = cfg.Quality
		r.Workers = dispatcher.Workers()
		r.Overwrite = cfg.Overwrite
		if err := report.Write(cfg.ReportPath, r); err != nil {
			return fmt.Errorf("failed to write run report: %w", err)
		}
	}

	if cfg.Metrics {
		rec := metrics.New(metrics.Namespace).WithWriter(stdout)
		if err := metrics.ForRun(rec, discovery.Mode.String(), startup.RunID(), summary).Flush(); err != nil {
			log.Warn().Err(err).Msg("Failed to emit run metrics")
		}
	}

	return nil
}
