package compress

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-compress/internal/config"
	"github.com/fpang/media-compress/internal/filehandler"
	"github.com/fpang/media-compress/internal/pipeline"
)

// Codec decodes source images and encodes JPEG output.
type Codec interface {
	Decode(r io.Reader) (image.Image, error)
	Encode(w io.Writer, img image.Image, quality int) error
}

// MetadataReader extracts optional EXIF fields from a source file.
type MetadataReader func(path string) (*filehandler.ImageMetadata, error)

// Compressor is the per-file worker. It holds no mutable state and is safe
// for concurrent use.
type Compressor struct {
	baseQuality int
	overwrite   bool
	inputRoot   string
	outputRoot  string
	mode        filehandler.Mode
	codec       Codec
	readMeta    MetadataReader
}

var _ pipeline.Worker = (*Compressor)(nil)

// New creates a Compressor for the given run. The base quality is checked here
// so that a bad value fails the run before any file is touched.
func New(cfg *config.Config, discovery *filehandler.Discovery, codec Codec) (*Compressor, error) {
	if err := config.ValidateQuality(cfg.Quality); err != nil {
		return nil, err
	}
	if codec == nil {
		return nil, errors.New("compress: nil codec")
	}
	return &Compressor{
		baseQuality: cfg.Quality,
		overwrite:   cfg.Overwrite,
		inputRoot:   discovery.Root,
		outputRoot:  cfg.Output,
		mode:        discovery.Mode,
		codec:       codec,
		readMeta:    filehandler.ExtractImageMetadata,
	}, nil
}

// WithMetadataReader replaces the EXIF reader; nil disables metadata extraction.
func (c *Compressor) WithMetadataReader(fn MetadataReader) *Compressor {
	c.readMeta = fn
	return c
}

// Compress processes one file: stat, map destination, apply the skip policy,
// decode, select quality, encode atomically and stat the result. Every failure
// is returned as a failed record.
func (c *Compressor) Compress(ctx context.Context, file filehandler.DiscoveredFile) pipeline.ResultRecord {
	start := time.Now()

	rec, err := c.compress(ctx, file)
	if err != nil {
		log.Warn().
			Err(err).
			Str("path", file.Path).
			Msg("Failed to compress file")
		return pipeline.Failure(file, err, time.Since(start))
	}

	rec.Duration = time.Since(start)
	return rec
}

func (c *Compressor) compress(ctx context.Context, file filehandler.DiscoveredFile) (pipeline.ResultRecord, error) {
	src := file.Path

	info, err := os.Stat(src)
	if err != nil {
		return pipeline.ResultRecord{}, ioError(src, "stat source", err)
	}
	before := info.Size()

	dst := MapOutput(src, c.inputRoot, c.outputRoot, c.mode)

	if existing, err := os.Stat(dst); err == nil {
		if existing.IsDir() {
			return pipeline.ResultRecord{}, ioError(dst, "check destination", errors.New("destination is a directory"))
		}
		if !c.overwrite {
			log.Debug().
				Str("path", src).
				Str("output", dst).
				Msg("Destination exists, skipping")
			rec := pipeline.Success(file, dst, before, existing.Size(), 0)
			rec.Skipped = true
			return rec, nil
		}
	} else if !os.IsNotExist(err) {
		return pipeline.ResultRecord{}, ioError(dst, "check destination", err)
	}

	if err := ctx.Err(); err != nil {
		return pipeline.ResultRecord{}, err
	}

	img, err := c.decode(src)
	if err != nil {
		return pipeline.ResultRecord{}, err
	}

	quality := SelectQuality(c.baseQuality, before)

	if err := EnsureParentDir(dst); err != nil {
		return pipeline.ResultRecord{}, ioError(dst, "create output directory", err)
	}

	err = writeFileAtomic(dst, func(w io.Writer) error {
		return c.codec.Encode(w, img, quality)
	})
	if err != nil {
		return pipeline.ResultRecord{}, err
	}

	out, err := os.Stat(dst)
	if err != nil {
		return pipeline.ResultRecord{}, ioError(dst, "stat output", err)
	}

	rec := pipeline.Success(file, dst, before, out.Size(), 0)
	rec.Quality = quality
	rec.Meta = c.metadata(src)

	log.Debug().
		Str("path", src).
		Str("output", dst).
		Int("quality", quality).
		Int64("before", before).
		Int64("after", rec.After).
		Msg("File compressed")

	return rec, nil
}

func (c *Compressor) decode(src string) (image.Image, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, ioError(src, "open source", err)
	}
	defer f.Close()

	img, err := c.codec.Decode(f)
	if err != nil {
		return nil, &FileError{Kind: KindDecode, Path: src, Op: "decode", Err: err}
	}
	return img, nil
}

// metadata reads EXIF fields best-effort; missing metadata is not an error.
func (c *Compressor) metadata(src string) *filehandler.ImageMetadata {
	if c.readMeta == nil {
		return nil
	}
	meta, err := c.readMeta(src)
	if err != nil {
		log.Debug().Err(err).Str("path", src).Msg("No EXIF metadata")
		return nil
	}
	return meta
}

// String describes the worker for startup logs.
func (c *Compressor) String() string {
	return fmt.Sprintf("compressor(quality=%d, overwrite=%t, mode=%s)", c.baseQuality, c.overwrite, c.mode)
}
