package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"

	"media-slideshow/internal/logging"
	"media-slideshow/internal/metrics"

	"golang.org/x/image/draw"
)

// decodeFallback tries each fallback loader in turn and returns the first
// image that loads.
func (d *Decoder) decodeFallback(ctx context.Context, path string) (image.Image, error) {
	var errs []error
	for _, loader := range d.fallbacks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := loader.load(ctx, path)
		if err == nil {
			metrics.DecodeFallbackTotal.WithLabelValues(loader.name, "success").Inc()
			logging.Debug("Loaded %s with %s fallback", path, loader.name)
			return img, nil
		}

		metrics.DecodeFallbackTotal.WithLabelValues(loader.name, "error").Inc()
		errs = append(errs, fmt.Errorf("%s: %w", loader.name, err))
	}

	if len(errs) == 0 {
		return nil, errors.New("no fallback decoder available")
	}
	return nil, errors.Join(errs...)
}

// fitToBox scales img up or down to the largest size that fits target
// without distortion.
func fitToBox(img image.Image, target Size) *image.RGBA {
	b := img.Bounds()
	r := FitRect(Size{Width: b.Dx(), Height: b.Dy()}, target)

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xFF
	}
	return dst
}

// loadWithFFmpeg decodes the first frame of path to PNG on a pipe.
func (d *Decoder) loadWithFFmpeg(ctx context.Context, path string) (image.Image, error) {
	ffmpegPath, err := exec.LookPath(d.config.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-v", "error",
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-pix_fmt", "rgb24",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}
