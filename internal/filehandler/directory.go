package filehandler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoInput is returned when the input path yields nothing to process.
// It is terminal for the whole run.
var ErrNoInput = errors.New("no input found")

// Mode describes how the input path was interpreted.
type Mode int

const (
	// ModeSingleFile means the input named one regular file.
	ModeSingleFile Mode = iota
	// ModeDirectory means the input named a directory that was walked recursively.
	ModeDirectory
)

func (m Mode) String() string {
	if m == ModeSingleFile {
		return "file"
	}
	return "directory"
}

// ScanOptions configures directory scanning behavior.
type ScanOptions struct {
	// MaxDepth limits recursion depth. 0 = unlimited, 1 = top-level only.
	MaxDepth int
}

// DiscoveredFile is a regular file selected for compression.
type DiscoveredFile struct {
	Path  string
	Size  int64
	Index int // position in discovery order
}

// Discovery is the result of resolving an input path.
type Discovery struct {
	Root  string
	Mode  Mode
	Files []DiscoveredFile
}

// TotalSize returns the sum of discovered file sizes at scan time.
func (d *Discovery) TotalSize() int64 {
	var total int64
	for _, f := range d.Files {
		total += f.Size
	}
	return total
}

// Discover resolves inputPath into the list of files to compress.
//
// A regular file is returned as-is without any extension check. A directory is
// walked recursively and filtered by SupportedImageExtensions. Anything else,
// or a directory without matching files, yields an error wrapping ErrNoInput.
func Discover(inputPath string, opts ScanOptions) (*Discovery, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: path not found: %s", ErrNoInput, inputPath)
		}
		return nil, fmt.Errorf("%w: failed to stat %s: %v", ErrNoInput, inputPath, err)
	}

	switch {
	case info.Mode().IsRegular():
		log.Debug().Str("path", inputPath).Msg("Input is a single file")
		return &Discovery{
			Root:  inputPath,
			Mode:  ModeSingleFile,
			Files: []DiscoveredFile{{Path: inputPath, Size: info.Size()}},
		}, nil

	case info.IsDir():
		files, err := ScanDirectoryWithOptions(inputPath, opts)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: no supported images under %s", ErrNoInput, inputPath)
		}
		return &Discovery{Root: inputPath, Mode: ModeDirectory, Files: files}, nil

	default:
		return nil, fmt.Errorf("%w: not a regular file or directory: %s", ErrNoInput, inputPath)
	}
}

// ScanDirectoryWithOptions scans a directory for supported image files.
// Recursive scanning is enabled by default (MaxDepth=0 means unlimited).
// Symlinks to files are followed; symlinks to directories are skipped to prevent infinite loops.
// Files are sorted by path so re-running on an unchanged tree yields the same order.
func ScanDirectoryWithOptions(dirPath string, opts ScanOptions) ([]DiscoveredFile, error) {
	log.Info().
		Str("path", dirPath).
		Int("max_depth", opts.MaxDepth).
		Msg("Scanning directory for images")

	baseDepth := strings.Count(filepath.Clean(dirPath), string(os.PathSeparator))

	var files []DiscoveredFile

	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dirPath {
				return err
			}
			log.Warn().Err(err).Str("path", path).Msg("Error accessing path, skipping")
			return nil
		}

		if opts.MaxDepth > 0 && d.IsDir() && path != dirPath {
			currentDepth := strings.Count(filepath.Clean(path), string(os.PathSeparator)) - baseDepth
			if currentDepth >= opts.MaxDepth {
				return fs.SkipDir
			}
		}

		if d.IsDir() {
			return nil
		}

		if !IsImage(filepath.Ext(d.Name())) {
			return nil
		}

		var info fs.FileInfo
		if d.Type()&fs.ModeSymlink != 0 {
			info, err = os.Stat(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to resolve symlink, skipping")
				return nil
			}
			if info.IsDir() {
				log.Debug().Str("path", path).Msg("Skipping symlink to directory")
				return nil
			}
		} else {
			info, err = d.Info()
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to stat file, skipping")
				return nil
			}
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		files = append(files, DiscoveredFile{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	for i := range files {
		files[i].Index = i
	}

	log.Info().
		Int("total_images", len(files)).
		Str("directory", dirPath).
		Msg("Directory scan complete")

	return files, nil
}
