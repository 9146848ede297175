package pipeline

import (
	"context"
	"errors"

	"media-slideshow/internal/database"
)

// Recorders fans a play out to several recorders. Every recorder is called
// even when an earlier one fails.
type Recorders []Recorder

// RecordPlay calls each recorder and joins their errors.
func (rs Recorders) RecordPlay(ctx context.Context, play database.Play) error {
	var errs []error
	for _, r := range rs {
		if err := r.RecordPlay(ctx, play); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRecorder drops nil entries and returns nil when nothing is left, so
// the presenter can skip recording entirely.
func NewRecorder(rs ...Recorder) Recorder {
	var kept Recorders
	for _, r := range rs {
		if r != nil {
			kept = append(kept, r)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return kept
}
