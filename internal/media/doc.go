// Package media turns a file path into something the presenter can show.
//
// The Decoder classifies a path by extension and prepares it for a target
// display size:
//   - Images are decoded with the registered Go decoders, rejected when
//     smaller than the configured minimum, rotated according to their EXIF
//     orientation and scaled down to fit the target box. When the primary
//     decode fails the image is loaded through libvips or ffmpeg instead and
//     fitted to the box without any size check or orientation correction.
//   - Videos are probed with ffprobe and returned as a lazy VideoStream
//     backed by an ffmpeg process that writes raw RGBA frames.
//
// All failures map onto ErrUnsupported, ErrTooSmall or ErrDecode so callers
// can skip the file and move on.
package media
