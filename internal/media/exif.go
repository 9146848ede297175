package media

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const orientationTag = 0x0112

// Orientation values that are corrected. Mirrored orientations are left as-is.
const (
	OrientationNormal    = 1
	OrientationRotate180 = 3
	OrientationRotate270 = 6
	OrientationRotate90  = 8
)

var errNoExif = errors.New("no exif data")

// readOrientation extracts the EXIF orientation from a JPEG or TIFF file.
// It returns errNoExif when the file carries no EXIF block.
func readOrientation(data []byte) (int, error) {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		tiff, err := jpegExifSegment(data)
		if err != nil {
			return 0, err
		}
		return tiffOrientation(tiff)
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return tiffOrientation(data)
	default:
		return 0, errNoExif
	}
}

// jpegExifSegment walks the JPEG markers up to the start of scan and returns
// the TIFF payload of the first Exif APP1 segment.
func jpegExifSegment(data []byte) ([]byte, error) {
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil, fmt.Errorf("bad jpeg marker at offset %d", pos)
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		if marker == 0xDA || marker == 0xD9 {
			break
		}
		length := int(binary.BigEndian.Uint16(data[pos+2:]))
		if length < 2 || pos+2+length > len(data) {
			return nil, fmt.Errorf("truncated jpeg segment at offset %d", pos)
		}
		payload := data[pos+4 : pos+2+length]
		if marker == 0xE1 && bytes.HasPrefix(payload, []byte("Exif\x00\x00")) {
			return payload[6:], nil
		}
		pos += 2 + length
	}
	return nil, errNoExif
}

// tiffOrientation reads tag 274 from IFD0 of a TIFF structure.
func tiffOrientation(tiff []byte) (int, error) {
	if len(tiff) < 8 {
		return 0, errors.New("exif header too short")
	}

	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("invalid exif byte order %q", tiff[:2])
	}
	if order.Uint16(tiff[2:]) != 42 {
		return 0, errors.New("invalid exif magic")
	}

	ifd := int(order.Uint32(tiff[4:]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return 0, fmt.Errorf("exif IFD offset %d out of range", ifd)
	}

	count := int(order.Uint16(tiff[ifd:]))
	for i := 0; i < count; i++ {
		entry := ifd + 2 + i*12
		if entry+12 > len(tiff) {
			return 0, errors.New("truncated exif IFD")
		}
		if order.Uint16(tiff[entry:]) != orientationTag {
			continue
		}
		// SHORT, stored left-aligned in the value field.
		if order.Uint16(tiff[entry+2:]) != 3 {
			return 0, errors.New("unexpected orientation type")
		}
		return int(order.Uint16(tiff[entry+8:])), nil
	}
	return OrientationNormal, nil
}

// applyOrientation rotates img counter-clockwise so that it displays upright,
// expanding the canvas for quarter turns.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case OrientationRotate180:
		return imaging.Rotate180(img)
	case OrientationRotate270:
		return imaging.Rotate270(img)
	case OrientationRotate90:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
