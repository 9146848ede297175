package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind is the presentation category of a media file.
type Kind string

const (
	// KindImage is a still image shown with fade transitions.
	KindImage Kind = "image"
	// KindVideo is a video played to completion.
	KindVideo Kind = "video"
	// KindUnsupported is anything the slideshow does not attempt to decode.
	KindUnsupported Kind = "unsupported"
)

// ImageExtensions maps file extensions to whether they are supported image formats.
// Formats without a Go decoder (heic, avif, jp2, ...) go through the fallback
// decode path.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".jpe":  true,
	".jfif": true,
	".png":  true,
	".apng": true,
	".gif":  true,
	".bmp":  true,
	".dib":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
	".avif": true,
	".ico":  true,
	".ppm":  true,
	".pgm":  true,
	".pbm":  true,
	".pnm":  true,
	".tga":  true,
	".qoi":  true,
	".jp2":  true,
	".j2k":  true,
	".jpx":  true,
	".psd":  true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// KindForExtension returns the Kind for an extension such as ".JPG" or "mp4".
func KindForExtension(ext string) Kind {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ImageExtensions[ext] {
		return KindImage
	}
	if VideoExtensions[ext] {
		return KindVideo
	}
	return KindUnsupported
}

// Classify returns the Kind of the file at path based on its extension.
func Classify(path string) Kind {
	return KindForExtension(filepath.Ext(path))
}

// IsSupported returns true if the file at path would be decoded.
func IsSupported(path string) bool {
	return Classify(path) != KindUnsupported
}
