package pipeline

import (
	"image"

	"media-slideshow/internal/logging"
	"media-slideshow/internal/media"
	"media-slideshow/internal/mediatypes"
)

// Content is the prepared payload of an Item: either Still or Motion.
type Content interface {
	content()
}

// Still is an oriented, fitted, opaque bitmap.
type Still struct {
	Frame *image.RGBA
}

// Motion is an open video stream.
type Motion struct {
	Stream media.VideoStream
}

func (Still) content()  {}
func (Motion) content() {}

// Item is a prepared media item. The producer creates it, the queue holds it
// and the presenter owns it after popping.
type Item struct {
	SourcePath   string
	Announcement bool
	Content      Content
}

// NewItem wraps a prepared decode result.
func NewItem(path string, announcement bool, prepared media.Prepared) *Item {
	item := &Item{SourcePath: path, Announcement: announcement}
	switch prepared.Kind {
	case mediatypes.KindImage:
		item.Content = Still{Frame: prepared.Still}
	case mediatypes.KindVideo:
		item.Content = Motion{Stream: prepared.Video}
	}
	return item
}

// Kind returns the media kind of the content.
func (i *Item) Kind() mediatypes.Kind {
	switch i.Content.(type) {
	case Still:
		return mediatypes.KindImage
	case Motion:
		return mediatypes.KindVideo
	default:
		return mediatypes.KindUnsupported
	}
}

// Release frees decode resources. It is safe to call more than once.
func (i *Item) Release() {
	if m, ok := i.Content.(Motion); ok && m.Stream != nil {
		if err := m.Stream.Close(); err != nil {
			logging.Debug("Closing stream for %s: %v", i.SourcePath, err)
		}
	}
	i.Content = nil
}

// ReleaseItem is a queue.Drain callback.
func ReleaseItem(i *Item) {
	i.Release()
}
