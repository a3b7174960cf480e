package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fpang/media-compress/internal/filehandler"
	"github.com/fpang/media-compress/internal/pipeline"
)

// errorPreviewLen is how much of a per-file error the progress line shows.
const errorPreviewLen = 50

// ProgressPrinter renders run progress on the console. On a terminal it
// rewrites a single status line; otherwise it prints one line per file.
// It implements pipeline.Observer.
type ProgressPrinter struct {
	w           io.Writer
	interactive bool
	root        string
	start       time.Time
}

var _ pipeline.Observer = (*ProgressPrinter)(nil)

// NewProgressPrinter creates a printer writing to f, detecting whether f is a
// terminal.
func NewProgressPrinter(f *os.File, root string) *ProgressPrinter {
	return NewProgressPrinterTo(f, IsInteractive(f), root)
}

// NewProgressPrinterTo creates a printer writing to w. Paths are shown
// relative to root when possible.
func NewProgressPrinterTo(w io.Writer, interactive bool, root string) *ProgressPrinter {
	return &ProgressPrinter{w: w, interactive: interactive, root: root, start: time.Now()}
}

// Header prints the discovery result before any work starts.
func (p *ProgressPrinter) Header(d *filehandler.Discovery, output string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "============================================")
	fmt.Fprintln(p.w, "Media Compress")
	fmt.Fprintln(p.w, "============================================")
	fmt.Fprintf(p.w, "Input: %s (%s)\n", d.Root, d.Mode)
	fmt.Fprintf(p.w, "Output: %s\n", output)
	fmt.Fprintf(p.w, "Found %d files, total size %s\n", len(d.Files), FormatBytes(d.TotalSize()))
	fmt.Fprintln(p.w, "--------------------------------------------")
}

func (p *ProgressPrinter) OnStart(total, workers int) {
	p.start = time.Now()
	if !p.interactive {
		fmt.Fprintf(p.w, "Compressing %d files with %d workers\n", total, workers)
	}
}

func (p *ProgressPrinter) OnFileDone(done, total int, rec pipeline.ResultRecord) {
	line := fmt.Sprintf("[%s] %d/%d %s: %s",
		FormatDurationShort(time.Since(p.start)), done, total, p.display(rec.Path), StatusMessage(rec))

	if p.interactive {
		// \033[K clears what remains of the previous, possibly longer, line.
		fmt.Fprintf(p.w, "\r%s\033[K", line)
		if done == total {
			fmt.Fprintln(p.w)
		}
		return
	}
	fmt.Fprintln(p.w, line)
}

// Finish prints the run summary followed by the failure list.
func (p *ProgressPrinter) Finish(s pipeline.Summary) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "Summary:")
	fmt.Fprintf(p.w, "  Files processed : %d\n", s.Count)
	if s.Skipped > 0 {
		fmt.Fprintf(p.w, "  Already present : %d\n", s.Skipped)
	}
	fmt.Fprintf(p.w, "  Total before    : %s\n", FormatBytes(s.TotalBefore))
	fmt.Fprintf(p.w, "  Total after     : %s\n", FormatBytes(s.TotalAfter))
	fmt.Fprintf(p.w, "  Total saved     : %s (%.1f%%)\n", FormatBytes(s.TotalSaved), s.SavedPercent())
	fmt.Fprintf(p.w, "  Duration        : %.2fs\n", s.Duration.Seconds())

	if s.Failed() == 0 {
		return
	}
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "Errors (%d):\n", s.Failed())
	for _, f := range s.Failures {
		fmt.Fprintf(p.w, " - %s => %v\n", f.Path, f.Err)
	}
}

// StatusMessage is the short per-file note shown next to the progress counter.
func StatusMessage(rec pipeline.ResultRecord) string {
	switch {
	case rec.Failed():
		return "error: " + Truncate(rec.Err.Error(), errorPreviewLen)
	case rec.Skipped:
		return "exists, skipped"
	default:
		return fmt.Sprintf("saved %s (q%d)", FormatBytes(rec.Saved()), rec.Quality)
	}
}

func (p *ProgressPrinter) display(path string) string {
	if p.root != "" {
		if rel, err := filepath.Rel(p.root, path); err == nil && rel != "." {
			return rel
		}
	}
	return filepath.Base(path)
}
