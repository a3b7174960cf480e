package compress

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// writeFileAtomic writes dst through a temporary file in the same directory and
// renames it into place only after encode and flush succeed. On any failure the
// temporary file is removed and dst is left untouched.
func writeFileAtomic(dst string, encode func(w io.Writer) error) (err error) {
	dir := filepath.Dir(dst)
	tmpPath := filepath.Join(dir, "."+filepath.Base(dst)+".tmp-"+uuid.NewString())

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return ioError(dst, "create temp file", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		return &FileError{Kind: KindEncode, Path: dst, Op: "encode", Err: err}
	}
	if err := bw.Flush(); err != nil {
		return ioError(dst, "write", err)
	}
	if err := f.Sync(); err != nil {
		return ioError(dst, "sync", err)
	}
	if err := f.Close(); err != nil {
		return ioError(dst, "close", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return ioError(dst, "rename", err)
	}
	return nil
}
