package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"media-slideshow/internal/filesystem"
	"media-slideshow/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// prepareImage returns a fitted, opaque bitmap for an image file.
func (d *Decoder) prepareImage(ctx context.Context, path string, target Size) (*image.RGBA, error) {
	img, err := d.decodePrimary(path)
	if err == nil {
		return fitImage(img, target), nil
	}
	if errors.Is(err, ErrTooSmall) {
		logging.Debug("Omitting %s: %v", filepath.Base(path), err)
		return nil, err
	}

	logging.Debug("Primary decode failed for %s: %v, trying fallback", path, err)

	img, fbErr := d.decodeFallback(ctx, path)
	if fbErr != nil {
		return nil, fmt.Errorf("%w: %s: %w; fallback: %w", ErrDecode, path, err, fbErr)
	}
	return fitToBox(img, target), nil
}

// decodePrimary decodes with the registered Go decoders, enforces the minimum
// size and applies the EXIF orientation.
func (d *Decoder) decodePrimary(path string) (image.Image, error) {
	file, err := filesystem.OpenWithRetry(path, d.config.Retry)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() < d.config.MinWidth || bounds.Dy() < d.config.MinHeight {
		return nil, fmt.Errorf("%w: %dx%d, minimum %dx%d",
			ErrTooSmall, bounds.Dx(), bounds.Dy(), d.config.MinWidth, d.config.MinHeight)
	}

	orientation, err := readOrientation(data)
	if err != nil {
		if !errors.Is(err, errNoExif) {
			logging.Debug("Error reading EXIF orientation for %s: %v, using default orientation", path, err)
		}
		orientation = OrientationNormal
	}

	logging.Debug("Decoded %s image %s: %dx%d, orientation %d",
		format, filepath.Base(path), bounds.Dx(), bounds.Dy(), orientation)

	return applyOrientation(img, orientation), nil
}

// fitImage scales img down to fit target, preserving aspect ratio. Images
// already inside the box keep their size.
func fitImage(img image.Image, target Size) *image.RGBA {
	fitted := imaging.Fit(img, target.Width, target.Height, imaging.Lanczos)
	return toOpaqueRGBA(fitted)
}

// toOpaqueRGBA drops the alpha channel, keeping the straight color values.
func toOpaqueRGBA(img image.Image) *image.RGBA {
	src := imaging.Clone(img)
	dst := image.NewRGBA(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy()))
	copy(dst.Pix, src.Pix)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xFF
	}
	return dst
}

// FitRect returns the largest rectangle with the aspect ratio of src that
// fits inside box, centered in box.
func FitRect(src, box Size) image.Rectangle {
	if src.Empty() || box.Empty() {
		return image.Rectangle{}
	}

	w, h := box.Width, box.Height
	if src.Width*box.Height > box.Width*src.Height {
		h = box.Width * src.Height / src.Width
	} else {
		w = box.Height * src.Width / src.Height
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	x := (box.Width - w) / 2
	y := (box.Height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
