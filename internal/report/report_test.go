package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fpang/media-compress/internal/filehandler"
	"github.com/fpang/media-compress/internal/pipeline"
)

func sampleRun() ([]pipeline.ResultRecord, pipeline.Summary) {
	taken := time.Date(2024, 7, 1, 10, 30, 0, 0, time.UTC)
	records := []pipeline.ResultRecord{
		{Path: "/in/c.png", Index: 2, Err: errors.New("decode error: bad header")},
		{Path: "/in/a.jpg", Output: "/out/a.jpg", Index: 0, Before: 2000, After: 500, Quality: 30,
			Duration: 40 * time.Millisecond,
			Meta:     &filehandler.ImageMetadata{DateTaken: taken, HasDate: true, CameraMake: "Canon", CameraModel: "EOS R5"}},
		{Path: "/in/b.jpg", Output: "/out/b.jpg", Index: 1, Before: 1000, After: 800, Skipped: true},
	}
	return records, pipeline.Aggregate(records, 3*time.Second)
}

func TestNew(t *testing.T) {
	records, sum := sampleRun()
	r := New(records, sum)

	if r.Totals.Count != 3 || r.Totals.Succeeded != 2 || r.Totals.Skipped != 1 || r.Totals.Failed != 1 {
		t.Errorf("totals = %+v", r.Totals)
	}
	if r.Totals.BytesSaved != 1700 || r.DurationMs != 3000 {
		t.Errorf("saved/duration = %d/%d, want 1700/3000", r.Totals.BytesSaved, r.DurationMs)
	}

	if len(r.Files) != 3 {
		t.Fatalf("got %d files, want 3", len(r.Files))
	}
	for i, want := range []string{"/in/a.jpg", "/in/b.jpg", "/in/c.png"} {
		if r.Files[i].Path != want {
			t.Errorf("Files[%d] = %s, want %s (discovery order)", i, r.Files[i].Path, want)
		}
	}

	a := r.Files[0]
	if a.TakenAt == nil || a.Camera != "Canon EOS R5" || a.Quality != 30 || a.DurationMs != 40 {
		t.Errorf("file entry a = %+v", a)
	}
	if c := r.Files[2]; c.Error != "decode error: bad header" || c.Output != "" {
		t.Errorf("file entry c = %+v", c)
	}
}

func TestWriteRead_Formats(t *testing.T) {
	records, sum := sampleRun()

	for _, name := range []string{"run.json", "run.json.gz", "run.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reports", name)
			r := New(records, sum)
			r.RunID = "run-123"
			r.Mode = "directory"

			if err := Write(path, r); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := Read(path)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got.RunID != "run-123" || got.Mode != "directory" || len(got.Files) != 3 {
				t.Errorf("round trip lost data: %+v", got)
			}
			if got.Totals != r.Totals {
				t.Errorf("totals = %+v, want %+v", got.Totals, r.Totals)
			}
		})
	}
}

func TestWrite_CompressedIsNotPlainJSON(t *testing.T) {
	records, sum := sampleRun()
	dir := t.TempDir()

	plain := filepath.Join(dir, "run.json")
	zst := filepath.Join(dir, "run.json.zst")
	if err := Write(plain, New(records, sum)); err != nil {
		t.Fatalf("Write plain: %v", err)
	}
	if err := Write(zst, New(records, sum)); err != nil {
		t.Fatalf("Write zst: %v", err)
	}

	plainData, _ := os.ReadFile(plain)
	zstData, _ := os.ReadFile(zst)
	if !bytes.HasPrefix(plainData, []byte("{")) {
		t.Errorf("plain report should start with '{', got %q", plainData[:1])
	}
	// Zstandard frame magic number.
	if !bytes.HasPrefix(zstData, []byte{0x28, 0xB5, 0x2F, 0xFD}) {
		t.Errorf("zst report missing zstd magic: % x", zstData[:4])
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Read of a missing report should fail")
	}
}
