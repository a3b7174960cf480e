package filehandler

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"

	// Decoders are selected by image.Decode from the file's magic bytes.
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// JPEGCodec decodes any registered raster format and encodes baseline JPEG.
type JPEGCodec struct{}

// Decode reads a full raster image from r. The format is detected from content,
// not from the file extension.
func (JPEGCodec) Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Encode writes img to w as JPEG at the given quality (1-100).
// Images with transparency are composited onto white first since JPEG has no alpha.
func (JPEGCodec) Encode(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		return fmt.Errorf("jpeg quality out of range: %d", quality)
	}
	if err := jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return nil
}

// flatten returns an opaque copy of img, or img itself when it is already opaque.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}
