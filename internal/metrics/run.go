package metrics

import (
	"github.com/fpang/media-compress/internal/pipeline"
)

// ForRun fills a Recorder with the totals of a finished run. mode is the
// discovery mode ("file" or "directory") and becomes the only dimension.
func ForRun(r *Recorder, mode, runID string, s pipeline.Summary) *Recorder {
	return r.
		Dimension("Mode", mode).
		Count("FilesProcessed", s.Count).
		Count("FilesSkipped", s.Skipped).
		Count("FilesFailed", s.Failed()).
		Bytes("BytesBefore", s.TotalBefore).
		Bytes("BytesAfter", s.TotalAfter).
		Bytes("BytesSaved", s.TotalSaved).
		Metric("SavedPercent", s.SavedPercent(), UnitPercent).
		Duration("RunDurationMs", s.Duration).
		Property("runId", runID)
}
