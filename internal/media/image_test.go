package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// gradient returns an opaque test image whose pixels encode their position.
func gradient(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// createTestImage writes a gradient image of the given size and format.
func createTestImage(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	img := gradient(width, height)

	switch filepath.Ext(name) {
	case ".jpg", ".jpeg":
		return writeFile(t, dir, name, encodeJPEG(t, img))
	case ".png":
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatalf("Failed to encode test image: %v", err)
		}
		return writeFile(t, dir, name, buf.Bytes())
	default:
		t.Fatalf("Unsupported test image format: %s", name)
		return ""
	}
}

// newTestDecoder returns a decoder whose fallback path always fails, so
// results do not depend on ffmpeg or libvips being installed.
func newTestDecoder() *Decoder {
	d := NewDecoder(DefaultDecoderConfig())
	d.fallbacks = []imageLoader{{
		name: "none",
		load: func(context.Context, string) (image.Image, error) {
			return nil, errors.New("no fallback in tests")
		},
	}}
	return d
}

var screen1080 = Size{Width: 1920, Height: 1080}

func TestPrepare_MinimumSize(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		width   int
		height  int
		wantErr error
	}{
		{"below both", 1000, 600, ErrTooSmall},
		{"narrow", 1279, 720, ErrTooSmall},
		{"short", 1280, 719, ErrTooSmall},
		{"exact minimum", 1280, 720, nil},
		{"large", 2560, 1440, nil},
	}

	d := newTestDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestImage(t, dir, tt.name+".jpg", tt.width, tt.height)

			prepared, err := d.Prepare(context.Background(), path, screen1080)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Prepare() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			if prepared.Still == nil {
				t.Fatal("Prepare() returned no still frame")
			}
			b := prepared.Still.Bounds()
			if b.Dx() > screen1080.Width || b.Dy() > screen1080.Height {
				t.Errorf("frame %dx%d exceeds target %s", b.Dx(), b.Dy(), screen1080)
			}
		})
	}
}

func TestPrepare_CustomMinimum(t *testing.T) {
	dir := t.TempDir()
	path := createTestImage(t, dir, "profile.png", 1200, 720)

	cfg := DefaultDecoderConfig()
	cfg.MinWidth = 1200
	d := NewDecoder(cfg)
	d.fallbacks = nil

	if _, err := d.Prepare(context.Background(), path, screen1080); err != nil {
		t.Errorf("Prepare() with 1200x720 minimum error = %v", err)
	}
}

func TestPrepare_FitsTarget(t *testing.T) {
	dir := t.TempDir()
	d := newTestDecoder()

	tests := []struct {
		name   string
		width  int
		height int
		target Size
		want   Size
	}{
		{"downscale same aspect", 2560, 1440, Size{1280, 720}, Size{1280, 720}},
		{"wide image in 16:9", 3000, 1000, screen1080, Size{1920, 640}},
		{"already fits", 1280, 720, screen1080, Size{1280, 720}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestImage(t, dir, tt.name+".png", tt.width, tt.height)
			prepared, err := d.Prepare(context.Background(), path, tt.target)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			b := prepared.Still.Bounds()
			if b.Dx() != tt.want.Width || b.Dy() != tt.want.Height {
				t.Errorf("frame = %dx%d, want %s", b.Dx(), b.Dy(), tt.want)
			}
		})
	}
}

func TestPrepare_OpaqueOutput(t *testing.T) {
	dir := t.TempDir()

	img := image.NewNRGBA(image.Rect(0, 0, 1280, 720))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 100, 50, 10
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, dir, "alpha.png", buf.Bytes())

	prepared, err := newTestDecoder().Prepare(context.Background(), path, screen1080)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	pix := prepared.Still.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xFF {
			t.Fatalf("alpha at byte %d = %d, want 255", i, pix[i])
		}
	}
	if pix[0] != 200 || pix[1] != 100 || pix[2] != 50 {
		t.Errorf("first pixel = %v, want straight color 200,100,50", pix[:3])
	}
}

func TestPrepare_Unsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", []byte("hello"))

	_, err := newTestDecoder().Prepare(context.Background(), path, screen1080)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Prepare() error = %v, want ErrUnsupported", err)
	}
}

func TestPrepare_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.jpg", []byte("definitely not a jpeg"))

	_, err := newTestDecoder().Prepare(context.Background(), path, screen1080)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Prepare() error = %v, want ErrDecode", err)
	}
}

func TestPrepare_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.jpg")

	_, err := newTestDecoder().Prepare(context.Background(), path, screen1080)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Prepare() error = %v, want ErrDecode", err)
	}
}

func TestPrepare_FallbackSkipsSizeCheck(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "photo.heic", []byte("not decodable by the standard library"))

	d := NewDecoder(DefaultDecoderConfig())
	var calls []string
	d.fallbacks = []imageLoader{
		{name: "first", load: func(_ context.Context, p string) (image.Image, error) {
			calls = append(calls, "first")
			return nil, errors.New("first failed")
		}},
		{name: "second", load: func(_ context.Context, p string) (image.Image, error) {
			calls = append(calls, "second")
			return gradient(200, 100), nil
		}},
	}

	prepared, err := d.Prepare(context.Background(), path, Size{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("fallback calls = %v, want both loaders tried", calls)
	}

	// 200x100 is far below the minimum but the fallback path upscales to fit.
	b := prepared.Still.Bounds()
	if b.Dx() != 800 || b.Dy() != 400 {
		t.Errorf("frame = %dx%d, want 800x400", b.Dx(), b.Dy())
	}
}

func TestPrepare_InvalidTarget(t *testing.T) {
	dir := t.TempDir()
	path := createTestImage(t, dir, "ok.png", 1280, 720)

	_, err := newTestDecoder().Prepare(context.Background(), path, Size{})
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Prepare() with empty target error = %v, want ErrDecode", err)
	}
}

func TestFitRect(t *testing.T) {
	tests := []struct {
		name string
		src  Size
		box  Size
		want image.Rectangle
	}{
		{"same aspect", Size{1280, 720}, Size{1920, 1080}, image.Rect(0, 0, 1920, 1080)},
		{"wider letterboxed", Size{2000, 500}, Size{1000, 1000}, image.Rect(0, 375, 1000, 625)},
		{"taller pillarboxed", Size{500, 1000}, Size{1000, 1000}, image.Rect(250, 0, 750, 1000)},
		{"upscale", Size{16, 9}, Size{1920, 1080}, image.Rect(0, 0, 1920, 1080)},
		{"empty source", Size{}, Size{100, 100}, image.Rectangle{}},
		{"empty box", Size{100, 100}, Size{}, image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitRect(tt.src, tt.box); got != tt.want {
				t.Errorf("FitRect(%s, %s) = %v, want %v", tt.src, tt.box, got, tt.want)
			}
		})
	}
}

func TestPreparedRelease(t *testing.T) {
	// Releasing a still or an empty value must not panic.
	Prepared{}.Release()
	Prepared{Still: gradient(2, 2)}.Release()
}
