package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"testing"
)

// exifSegment builds an APP1 Exif segment whose IFD0 holds a single
// orientation entry.
func exifSegment(orientation uint16, order binary.ByteOrder) []byte {
	var tiff bytes.Buffer
	if order == binary.LittleEndian {
		tiff.WriteString("II")
	} else {
		tiff.WriteString("MM")
	}
	_ = binary.Write(&tiff, order, uint16(42))
	_ = binary.Write(&tiff, order, uint32(8))
	_ = binary.Write(&tiff, order, uint16(1))
	_ = binary.Write(&tiff, order, uint16(orientationTag))
	_ = binary.Write(&tiff, order, uint16(3))
	_ = binary.Write(&tiff, order, uint32(1))
	_ = binary.Write(&tiff, order, orientation)
	_ = binary.Write(&tiff, order, uint16(0))
	_ = binary.Write(&tiff, order, uint32(0))

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

// withExif inserts an Exif segment right after the JPEG SOI marker.
func withExif(jpegData []byte, orientation uint16, order binary.ByteOrder) []byte {
	out := append([]byte{}, jpegData[:2]...)
	out = append(out, exifSegment(orientation, order)...)
	return append(out, jpegData[2:]...)
}

func TestReadOrientation(t *testing.T) {
	plain := encodeJPEG(t, gradient(8, 4))

	tests := []struct {
		name    string
		data    []byte
		want    int
		wantErr bool
	}{
		{"little endian 6", withExif(plain, 6, binary.LittleEndian), 6, false},
		{"big endian 8", withExif(plain, 8, binary.BigEndian), 8, false},
		{"rotate 180", withExif(plain, 3, binary.LittleEndian), 3, false},
		{"normal", withExif(plain, 1, binary.BigEndian), 1, false},
		{"no exif", plain, 0, true},
		{"not an image", []byte("hello"), 0, true},
		{"truncated segment", withExif(plain, 6, binary.LittleEndian)[:12], 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readOrientation(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readOrientation() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("readOrientation() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadOrientation_NoExifSentinel(t *testing.T) {
	_, err := readOrientation(encodeJPEG(t, gradient(4, 4)))
	if !errors.Is(err, errNoExif) {
		t.Errorf("readOrientation() error = %v, want errNoExif", err)
	}
}

func TestApplyOrientation(t *testing.T) {
	// A 4x2 image with a marked top-left pixel.
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	src.Pix[0], src.Pix[3] = 255, 255

	tests := []struct {
		name        string
		orientation int
		wantW       int
		wantH       int
		// where the marked pixel lands
		markX, markY int
	}{
		{"normal", OrientationNormal, 4, 2, 0, 0},
		{"unknown", 42, 4, 2, 0, 0},
		{"rotate 180", OrientationRotate180, 4, 2, 3, 1},
		// 270 degrees counter-clockwise is a clockwise quarter turn.
		{"rotate 270", OrientationRotate270, 2, 4, 1, 0},
		{"rotate 90", OrientationRotate90, 2, 4, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyOrientation(src, tt.orientation)
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			r, _, _, _ := got.At(b.Min.X+tt.markX, b.Min.Y+tt.markY).RGBA()
			if r>>8 != 255 {
				t.Errorf("marked pixel not at (%d,%d)", tt.markX, tt.markY)
			}
		})
	}
}

func TestPrepare_OrientationNormalIsIdentity(t *testing.T) {
	dir := t.TempDir()
	plain := encodeJPEG(t, gradient(1280, 720))

	without := writeFile(t, dir, "plain.jpg", plain)
	with := writeFile(t, dir, "tagged.jpg", withExif(plain, 1, binary.LittleEndian))

	d := newTestDecoder()
	a, err := d.Prepare(context.Background(), without, screen1080)
	if err != nil {
		t.Fatalf("Prepare(plain) error = %v", err)
	}
	b, err := d.Prepare(context.Background(), with, screen1080)
	if err != nil {
		t.Fatalf("Prepare(tagged) error = %v", err)
	}

	if a.Still.Bounds() != b.Still.Bounds() {
		t.Fatalf("bounds differ: %v vs %v", a.Still.Bounds(), b.Still.Bounds())
	}
	if !bytes.Equal(a.Still.Pix, b.Still.Pix) {
		t.Error("orientation 1 changed the decoded pixels")
	}
}

func TestPrepare_RotatesPortraitPhoto(t *testing.T) {
	dir := t.TempDir()
	data := withExif(encodeJPEG(t, gradient(1600, 900)), OrientationRotate270, binary.BigEndian)
	path := writeFile(t, dir, "portrait.jpg", data)

	prepared, err := newTestDecoder().Prepare(context.Background(), path, screen1080)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	b := prepared.Still.Bounds()
	if b.Dy() != 1080 {
		t.Errorf("height = %d, want 1080", b.Dy())
	}
	if b.Dx() < 607 || b.Dx() > 608 {
		t.Errorf("width = %d, want about 607", b.Dx())
	}
}

func TestPrepare_RotatedImageKeepsOriginalSizeCheck(t *testing.T) {
	// The minimum is checked before rotation, as stored in the file.
	dir := t.TempDir()
	data := withExif(encodeJPEG(t, gradient(1280, 720)), OrientationRotate90, binary.LittleEndian)
	path := writeFile(t, dir, "rotated.jpg", data)

	if _, err := newTestDecoder().Prepare(context.Background(), path, screen1080); err != nil {
		t.Errorf("Prepare() error = %v, want success", err)
	}
}
