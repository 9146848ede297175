package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"media-slideshow/internal/logging"
	"media-slideshow/internal/media"
	"media-slideshow/internal/metrics"
	"media-slideshow/internal/queue"
	"media-slideshow/internal/scanner"
)

// Scanner lists the entries of one cycle.
type Scanner interface {
	Scan(ctx context.Context) scanner.Result
}

// Decoder prepares a single file.
type Decoder interface {
	Prepare(ctx context.Context, path string, target media.Size) (media.Prepared, error)
}

// MemoryGate holds the producer while memory is critical.
type MemoryGate interface {
	WaitIfPaused(ctx context.Context) error
}

// DefaultIdleRescanInterval is the pause between scans that found nothing.
const DefaultIdleRescanInterval = time.Second

// ProducerConfig configures a Producer.
type ProducerConfig struct {
	// Target is the box images and video frames are fitted into.
	Target media.Size

	// IdleRescanInterval is the pause after a cycle with no entries.
	IdleRescanInterval time.Duration

	// Memory, when set, is consulted before each decode.
	Memory MemoryGate
}

// Producer fills the queue with prepared items, re-scanning forever.
type Producer struct {
	scanner Scanner
	decoder Decoder
	queue   *queue.Queue[*Item]
	config  ProducerConfig
}

// NewProducer creates a Producer.
func NewProducer(s Scanner, d Decoder, q *queue.Queue[*Item], config ProducerConfig) *Producer {
	if config.IdleRescanInterval <= 0 {
		config.IdleRescanInterval = DefaultIdleRescanInterval
	}
	return &Producer{
		scanner: s,
		decoder: d,
		queue:   q,
		config:  config,
	}
}

// Run produces until ctx is cancelled and then returns the context's error.
func (p *Producer) Run(ctx context.Context) error {
	metrics.QueueCapacity.Set(float64(p.queue.Cap()))

	for {
		attempted, err := p.RunCycle(ctx)
		if err != nil {
			return err
		}
		if attempted > 0 {
			continue
		}

		logging.Debug("No media found, rescanning in %v", p.config.IdleRescanInterval)
		timer := time.NewTimer(p.config.IdleRescanInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunCycle scans once and attempts every entry in order. It returns the
// number of entries attempted, and an error only when ctx ends.
func (p *Producer) RunCycle(ctx context.Context) (int, error) {
	result := p.scanner.Scan(ctx)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for _, scanErr := range result.Errors {
		logging.Warn("%v", scanErr)
	}

	logging.Info("Scan found %d announcement and %d media files",
		result.Announcements, len(result.Entries)-result.Announcements)

	counter := NewAnnouncementCounter(result.Announcements)
	attempted := 0

	for _, entry := range result.Entries {
		if err := p.waitForSpace(ctx); err != nil {
			return attempted, err
		}
		if p.config.Memory != nil {
			if err := p.config.Memory.WaitIfPaused(ctx); err != nil {
				return attempted, err
			}
		}

		attempted++
		announcement := counter.Next()

		item, err := p.prepare(ctx, entry.Path, announcement)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return attempted, ctxErr
			}
			continue
		}

		if err := p.queue.Push(ctx, item); err != nil {
			item.Release()
			return attempted, err
		}
		metrics.QueueDepth.Set(float64(p.queue.Len()))
		logging.Info("%s added to queue: %s", kindLabel(item), filepath.Base(entry.Path))
	}

	return attempted, nil
}

// prepare decodes one entry, logging the reason when it is skipped.
func (p *Producer) prepare(ctx context.Context, path string, announcement bool) (*Item, error) {
	prepared, err := p.decoder.Prepare(ctx, path, p.config.Target)
	switch {
	case err == nil:
	case errors.Is(err, media.ErrUnsupported):
		logging.Info("Unsupported media file: %s", path)
		return nil, err
	case errors.Is(err, media.ErrTooSmall):
		logging.Info("Omitting image, too small: %s", path)
		return nil, err
	default:
		logging.Warn("Error loading %s: %v", path, err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		prepared.Release()
		return nil, err
	}
	return NewItem(path, announcement, prepared), nil
}

// waitForSpace blocks while the queue is full, logging the transition once.
func (p *Producer) waitForSpace(ctx context.Context) error {
	if !p.queue.Full() {
		return nil
	}

	logging.Debug("Queue full, waiting for media to be displayed")
	metrics.QueueFullWaitsTotal.Inc()
	start := time.Now()

	err := p.queue.WaitForSpace(ctx)
	metrics.QueueFullWaitSeconds.Add(time.Since(start).Seconds())
	return err
}

func kindLabel(item *Item) string {
	switch item.Content.(type) {
	case Still:
		return "Image"
	case Motion:
		return "Video"
	default:
		return "Item"
	}
}
