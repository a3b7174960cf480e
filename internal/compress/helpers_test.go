package compress

import (
	"bufio"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fpang/media-compress/internal/config"
	"github.com/fpang/media-compress/internal/filehandler"
)

// fakeCodec treats the first line of a source file as its tag. Sources whose tag
// starts with "CORRUPT" fail to decode. Output size grows with quality so tests
// can observe which quality was used.
type fakeCodec struct {
	mu        sync.Mutex
	decodes   int
	qualities map[string]int
	encodeErr error
}

type taggedImage struct {
	image.Image
	tag string
}

func newFakeCodec() *fakeCodec {
	return &fakeCodec{qualities: make(map[string]int)}
}

func (c *fakeCodec) Decode(r io.Reader) (image.Image, error) {
	c.mu.Lock()
	c.decodes++
	c.mu.Unlock()

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	tag := strings.TrimSpace(line)
	if tag == "" || strings.HasPrefix(tag, "CORRUPT") {
		return nil, errors.New("unrecognized image format")
	}
	return taggedImage{Image: image.NewGray(image.Rect(0, 0, 1, 1)), tag: tag}, nil
}

func (c *fakeCodec) Encode(w io.Writer, img image.Image, quality int) error {
	if c.encodeErr != nil {
		// Write something first so a partial output would be visible.
		_, _ = w.Write([]byte("partial"))
		return c.encodeErr
	}
	c.mu.Lock()
	c.qualities[img.(taggedImage).tag] = quality
	c.mu.Unlock()
	_, err := w.Write(bytes.Repeat([]byte{0xAB}, 100+quality))
	return err
}

func (c *fakeCodec) quality(tag string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.qualities[tag]
	return q, ok
}

func (c *fakeCodec) decodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decodes
}

// writeTagged creates a source file with a tag line, padded (sparsely) to size.
func writeTagged(t *testing.T, path, tag string, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(tag + "\n"); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if size > int64(len(tag)+1) {
		if err := f.Truncate(size); err != nil {
			t.Fatalf("truncate %s: %v", path, err)
		}
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: 200, A: 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func newCompressor(t *testing.T, cfg config.Config, disc *filehandler.Discovery, codec Codec) *Compressor {
	t.Helper()
	c, err := New(&cfg, disc, codec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c.WithMetadataReader(nil)
}

func dirConfig(in, out string) config.Config {
	cfg := config.DefaultConfig()
	cfg.Input = in
	cfg.Output = out
	return cfg
}

func discover(t *testing.T, path string) *filehandler.Discovery {
	t.Helper()
	d, err := filehandler.Discover(path, filehandler.ScanOptions{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	return d
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// tempLeftovers returns any temporary files left in dir.
func tempLeftovers(t *testing.T, dir string) []string {
	t.Helper()
	var found []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.Contains(d.Name(), ".tmp-") {
			found = append(found, path)
		}
		return nil
	})
	return found
}
