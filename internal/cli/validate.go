package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-compress/internal/config"
	"github.com/fpang/media-compress/internal/filehandler"
)

// ResolvePath returns the absolute form of path, or path itself when it cannot
// be resolved.
func ResolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// FatalMessage maps a run-level error to the message logged before exiting.
func FatalMessage(err error) string {
	var validationErr *config.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return "Invalid configuration"
	case errors.Is(err, filehandler.ErrNoInput):
		return "No input images found"
	case errors.Is(err, os.ErrPermission):
		return "Permission denied"
	default:
		return "Compression run failed"
	}
}

// HandleFatalError logs err with a message matching its kind and exits with
// status 1.
func HandleFatalError(err error) {
	evt := log.Fatal().Err(err)

	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		evt = evt.Str("field", validationErr.Field)
	}
	evt.Msg(FatalMessage(err))
	os.Exit(1)
}
