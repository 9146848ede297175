package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"media-slideshow/internal/filesystem"
	"media-slideshow/internal/logging"
	"media-slideshow/internal/mediatypes"
	"media-slideshow/internal/metrics"
)

// Decode errors. Every error returned by Prepare wraps exactly one of these.
var (
	ErrUnsupported = errors.New("unsupported media type")
	ErrTooSmall    = errors.New("image below minimum size")
	ErrDecode      = errors.New("decode failed")
)

const (
	// DefaultMinWidth and DefaultMinHeight reject images that would look
	// poor on a 720p or larger display.
	DefaultMinWidth  = 1280
	DefaultMinHeight = 720

	// DefaultFallbackFrameRate is used for videos that report no rate.
	DefaultFallbackFrameRate = 30.0
)

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// DecoderConfig configures a Decoder.
type DecoderConfig struct {
	MinWidth  int
	MinHeight int

	// FFmpegPath and FFprobePath default to the binaries found on PATH.
	FFmpegPath  string
	FFprobePath string

	// FallbackFrameRate is forced on videos whose probe reports no rate.
	FallbackFrameRate float64

	Retry filesystem.RetryConfig
}

// DefaultDecoderConfig returns the 1280x720 minimum and PATH lookups.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		MinWidth:          DefaultMinWidth,
		MinHeight:         DefaultMinHeight,
		FFmpegPath:        "ffmpeg",
		FFprobePath:       "ffprobe",
		FallbackFrameRate: DefaultFallbackFrameRate,
		Retry:             filesystem.DefaultRetryConfig(),
	}
}

// Prepared is the output of a successful Prepare. Exactly one of Still and
// Video is set, matching Kind.
type Prepared struct {
	Kind  mediatypes.Kind
	Still *image.RGBA
	Video VideoStream
}

// Release frees whatever the prepared item holds.
func (p Prepared) Release() {
	if p.Video != nil {
		if err := p.Video.Close(); err != nil {
			logging.Debug("Closing video stream: %v", err)
		}
	}
}

// imageLoader decodes a whole image without any size or orientation handling.
type imageLoader struct {
	name string
	load func(ctx context.Context, path string) (image.Image, error)
}

// Decoder prepares files for presentation.
type Decoder struct {
	config    DecoderConfig
	fallbacks []imageLoader
}

// NewDecoder creates a Decoder. libvips is used as the first fallback when
// InitVips has succeeded before this call.
func NewDecoder(config DecoderConfig) *Decoder {
	defaults := DefaultDecoderConfig()
	if config.MinWidth <= 0 {
		config.MinWidth = defaults.MinWidth
	}
	if config.MinHeight <= 0 {
		config.MinHeight = defaults.MinHeight
	}
	if config.FFmpegPath == "" {
		config.FFmpegPath = defaults.FFmpegPath
	}
	if config.FFprobePath == "" {
		config.FFprobePath = defaults.FFprobePath
	}
	if config.FallbackFrameRate <= 0 {
		config.FallbackFrameRate = defaults.FallbackFrameRate
	}
	if config.Retry.MaxRetries == 0 && config.Retry.InitialBackoff == 0 {
		config.Retry = defaults.Retry
	}

	d := &Decoder{config: config}
	if IsVipsAvailable() {
		d.fallbacks = append(d.fallbacks, imageLoader{name: "vips", load: loadWithVips})
	}
	d.fallbacks = append(d.fallbacks, imageLoader{name: "ffmpeg", load: d.loadWithFFmpeg})
	return d
}

// Config returns the effective configuration.
func (d *Decoder) Config() DecoderConfig {
	return d.config
}

// Prepare decodes path for display inside target. Unsupported files are
// rejected without being opened.
func (d *Decoder) Prepare(ctx context.Context, path string, target Size) (Prepared, error) {
	kind := mediatypes.Classify(path)
	if kind == mediatypes.KindUnsupported {
		metrics.DecodeTotal.WithLabelValues("unsupported", "unsupported").Inc()
		return Prepared{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if target.Empty() {
		return Prepared{}, fmt.Errorf("%w: invalid target size %s", ErrDecode, target)
	}

	start := time.Now()
	var prepared Prepared
	var err error

	switch kind {
	case mediatypes.KindImage:
		var frame *image.RGBA
		frame, err = d.prepareImage(ctx, path, target)
		prepared = Prepared{Kind: kind, Still: frame}
	case mediatypes.KindVideo:
		var stream *FFmpegStream
		stream, err = d.openVideo(ctx, path, target)
		prepared = Prepared{Kind: kind}
		if stream != nil {
			prepared.Video = stream
		}
	}

	metrics.DecodeDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		metrics.DecodeTotal.WithLabelValues(string(kind), "success").Inc()
	case errors.Is(err, ErrTooSmall):
		metrics.DecodeTotal.WithLabelValues(string(kind), "too_small").Inc()
	default:
		metrics.DecodeTotal.WithLabelValues(string(kind), "error").Inc()
	}

	if err != nil {
		return Prepared{}, err
	}
	return prepared, nil
}
