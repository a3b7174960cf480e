package compress

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fpang/media-compress/internal/filehandler"
)

// MapOutput derives the destination for a source file.
//
//	Single file: <outputRoot> verbatim
//	Directory:   <outputRoot>/<source relative to inputRoot, extension replaced by .jpg>
//
// A source that is not below inputRoot is placed directly under outputRoot.
func MapOutput(sourcePath, inputRoot, outputRoot string, mode filehandler.Mode) string {
	if mode == filehandler.ModeSingleFile {
		return outputRoot
	}

	rel, err := filepath.Rel(inputRoot, sourcePath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(sourcePath)
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + filehandler.OutputExtension
	return filepath.Join(outputRoot, rel)
}

// EnsureParentDir creates every missing directory above path. Safe to call
// repeatedly and concurrently.
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// PrepareOutputRoot creates the output location before any worker starts.
// In directory mode the root itself is created; in single-file mode only its
// parent directory.
func PrepareOutputRoot(outputRoot string, mode filehandler.Mode) error {
	if mode == filehandler.ModeDirectory {
		return os.MkdirAll(outputRoot, 0o755)
	}
	return EnsureParentDir(outputRoot)
}
