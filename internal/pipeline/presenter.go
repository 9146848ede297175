package pipeline

import (
	"context"
	"errors"
	"image"
	"io"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"media-slideshow/internal/database"
	"media-slideshow/internal/logging"
	"media-slideshow/internal/media"
	"media-slideshow/internal/mediatypes"
	"media-slideshow/internal/metrics"
	"media-slideshow/internal/queue"
)

// Surface is the display the presenter draws on.
type Surface interface {
	// Size is the drawable area items are fitted into.
	Size() media.Size
	// Render clears to black, draws frame centered at opacity and presents.
	Render(frame *image.RGBA, opacity uint8) error
	// Blank presents a black frame.
	Blank() error
}

// InputPoller drains pending input; a quit request cancels the root context.
type InputPoller interface {
	Poll()
}

// Recorder stores finished plays.
type Recorder interface {
	RecordPlay(ctx context.Context, play database.Play) error
}

// Presenter defaults.
const (
	DefaultFadeDuration     = time.Second
	DefaultVideoFade        = time.Second
	DefaultRenderRate       = 60.0
	DefaultVideoFrameRate   = 30.0
	DefaultEmptyQueuePoll   = 100 * time.Millisecond
	DefaultSlideDuration    = 10 * time.Second
	DefaultAnnounceDuration = 15 * time.Second
)

// PresenterConfig configures a Presenter.
type PresenterConfig struct {
	SlideDuration        time.Duration
	AnnouncementDuration time.Duration
	FadeDuration         time.Duration
	VideoFadeIn          time.Duration
	VideoFadeOut         time.Duration

	// RenderRate paces image fades and holds, in frames per second.
	RenderRate float64
	// VideoFrameRate is used when a stream does not report its own.
	VideoFrameRate float64
	EmptyQueuePoll time.Duration

	// Session tags recorded plays.
	Session string
}

func (c PresenterConfig) withDefaults() PresenterConfig {
	if c.SlideDuration <= 0 {
		c.SlideDuration = DefaultSlideDuration
	}
	if c.AnnouncementDuration <= 0 {
		c.AnnouncementDuration = DefaultAnnounceDuration
	}
	if c.FadeDuration < 0 {
		c.FadeDuration = DefaultFadeDuration
	}
	if c.VideoFadeIn < 0 {
		c.VideoFadeIn = DefaultVideoFade
	}
	if c.VideoFadeOut < 0 {
		c.VideoFadeOut = DefaultVideoFade
	}
	if c.RenderRate <= 0 {
		c.RenderRate = DefaultRenderRate
	}
	if c.VideoFrameRate <= 0 {
		c.VideoFrameRate = DefaultVideoFrameRate
	}
	if c.EmptyQueuePoll <= 0 {
		c.EmptyQueuePoll = DefaultEmptyQueuePoll
	}
	return c
}

// Presentation outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
)

// Status is a snapshot of what is on screen.
type Status struct {
	State        string    `json:"state"`
	Path         string    `json:"path,omitempty"`
	Kind         string    `json:"kind,omitempty"`
	Announcement bool      `json:"announcement"`
	StartedAt    time.Time `json:"startedAt,omitempty"`
	Presented    int64     `json:"presented"`
	QueueDepth   int       `json:"queueDepth"`
	QueueCap     int       `json:"queueCapacity"`
}

// Presenter pops items and renders them until cancelled.
type Presenter struct {
	queue    *queue.Queue[*Item]
	surface  Surface
	input    InputPoller
	config   PresenterConfig
	recorder Recorder

	mu     sync.RWMutex
	status Status
}

// NewPresenter creates a Presenter. recorder may be nil.
func NewPresenter(q *queue.Queue[*Item], surface Surface, input InputPoller, config PresenterConfig, recorder Recorder) *Presenter {
	return &Presenter{
		queue:    q,
		surface:  surface,
		input:    input,
		config:   config.withDefaults(),
		recorder: recorder,
		status:   Status{State: "idle"},
	}
}

// Status returns the current snapshot. Safe to call from any goroutine.
func (p *Presenter) Status() Status {
	p.mu.RLock()
	s := p.status
	p.mu.RUnlock()

	s.QueueDepth = p.queue.Len()
	s.QueueCap = p.queue.Cap()
	return s
}

// Run presents items until ctx is cancelled, then returns the context's
// error. It must run on the thread that owns the surface.
func (p *Presenter) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, ok := p.queue.TryPop()
		if !ok {
			if err := p.idle(ctx); err != nil {
				return err
			}
			continue
		}
		metrics.QueueDepth.Set(float64(p.queue.Len()))

		if err := p.present(ctx, item); err != nil {
			return err
		}
	}
}

// idle shows a blank frame for one poll interval.
func (p *Presenter) idle(ctx context.Context) error {
	p.setStatus(Status{State: "idle"})
	start := time.Now()
	defer func() { metrics.PresenterIdleSeconds.Add(time.Since(start).Seconds()) }()

	if err := p.surface.Blank(); err != nil {
		logging.Warn("Failed to present blank frame: %v", err)
	}
	p.input.Poll()
	if err := ctx.Err(); err != nil {
		return err
	}
	return sleep(ctx, p.config.EmptyQueuePoll)
}

// present shows one item and releases it. It returns an error only when ctx ends.
func (p *Presenter) present(ctx context.Context, item *Item) error {
	defer item.Release()

	started := time.Now()
	kind := item.Kind()
	p.setStatus(Status{
		State:        "playing",
		Path:         item.SourcePath,
		Kind:         string(kind),
		Announcement: item.Announcement,
		StartedAt:    started,
	})
	if item.Announcement {
		metrics.NowPlayingAnnouncement.Set(1)
	}
	defer metrics.NowPlayingAnnouncement.Set(0)

	logging.Info("Presenting %s %s (announcement=%v)", kind, filepath.Base(item.SourcePath), item.Announcement)

	var err error
	switch c := item.Content.(type) {
	case Still:
		err = p.showStill(ctx, item, c.Frame)
	case Motion:
		err = p.showMotion(ctx, c.Stream)
	default:
		logging.Error("Unrecognized item content %T for %s, discarding", item.Content, item.SourcePath)
		return nil
	}

	outcome := OutcomeCompleted
	switch {
	case ctx.Err() != nil:
		outcome = OutcomeAborted
	case err != nil:
		outcome = OutcomeFailed
		logging.Warn("Presentation of %s ended early: %v", item.SourcePath, err)
	}

	p.finish(ctx, item, started, outcome)

	if outcome == OutcomeAborted {
		return ctx.Err()
	}
	return nil
}

func (p *Presenter) finish(ctx context.Context, item *Item, started time.Time, outcome string) {
	kind := string(item.Kind())
	metrics.ItemsPresentedTotal.WithLabelValues(kind, strconv.FormatBool(item.Announcement), outcome).Inc()

	p.mu.Lock()
	p.status.Presented++
	p.mu.Unlock()

	if p.recorder == nil {
		return
	}

	play := database.Play{
		Session:      p.config.Session,
		Path:         item.SourcePath,
		Kind:         kind,
		Announcement: item.Announcement,
		StartedAt:    started,
		Duration:     time.Since(started),
		Outcome:      outcome,
	}
	// The root context may already be cancelled; the record still matters.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := p.recorder.RecordPlay(recordCtx, play); err != nil {
		logging.Warn("Failed to record play of %s: %v", item.SourcePath, err)
	}
}

// showStill fades the frame in, holds it and fades it out.
func (p *Presenter) showStill(ctx context.Context, item *Item, frame *image.RGBA) error {
	if frame == nil {
		return errors.New("empty frame")
	}

	hold := p.config.SlideDuration
	if item.Announcement {
		hold = p.config.AnnouncementDuration
	}

	interval := frameInterval(p.config.RenderRate)
	steps := FadeSteps(p.config.FadeDuration, p.config.RenderRate)

	if err := p.fade(ctx, frame, steps, interval, false); err != nil {
		return err
	}

	deadline := time.Now().Add(hold)
	for {
		if err := p.frame(ctx, frame, 255, mediatypes.KindImage); err != nil {
			return err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := sleep(ctx, min(interval, remaining)); err != nil {
			return err
		}
	}

	return p.fade(ctx, frame, steps, interval, true)
}

// fade renders steps+1 frames from transparent to opaque, or the reverse.
func (p *Presenter) fade(ctx context.Context, frame *image.RGBA, steps int, interval time.Duration, out bool) error {
	if steps <= 0 {
		return nil
	}

	start := time.Now()
	for i := 0; i <= steps; i++ {
		opacity := FadeOpacity(i, steps)
		if out {
			opacity = 255 - opacity
		}
		if err := p.frame(ctx, frame, opacity, mediatypes.KindImage); err != nil {
			return err
		}
		if i < steps {
			if err := sleepUntil(ctx, start.Add(time.Duration(i+1)*interval)); err != nil {
				return err
			}
		}
	}
	return nil
}

// showMotion plays the stream at its native rate under the fade envelope.
func (p *Presenter) showMotion(ctx context.Context, stream media.VideoStream) error {
	if stream == nil {
		return errors.New("no stream")
	}

	fps := stream.FrameRate()
	if fps <= 0 {
		fps = p.config.VideoFrameRate
	}
	interval := frameInterval(fps)
	total := stream.Duration()

	start := time.Now()
	for i := 0; ; i++ {
		frame, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		overlay := FadeEnvelope(stream.Position(), total, p.config.VideoFadeIn, p.config.VideoFadeOut)
		if err := p.frame(ctx, frame, 255-overlay, mediatypes.KindVideo); err != nil {
			return err
		}
		if err := sleepUntil(ctx, start.Add(time.Duration(i+1)*interval)); err != nil {
			return err
		}
	}

	// Finish on black so the next item fades in from it.
	if err := p.surface.Blank(); err != nil {
		logging.Debug("Failed to present blank frame: %v", err)
	}
	return nil
}

// frame renders one frame and polls input.
func (p *Presenter) frame(ctx context.Context, frame *image.RGBA, opacity uint8, kind mediatypes.Kind) error {
	if err := p.surface.Render(frame, opacity); err != nil {
		return err
	}
	metrics.FramesRenderedTotal.WithLabelValues(string(kind)).Inc()
	p.input.Poll()
	return ctx.Err()
}

func (p *Presenter) setStatus(s Status) {
	p.mu.Lock()
	s.Presented = p.status.Presented
	p.status = s
	p.mu.Unlock()
}

func frameInterval(fps float64) time.Duration {
	return time.Duration(float64(time.Second) / fps)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func sleepUntil(ctx context.Context, t time.Time) error {
	return sleep(ctx, time.Until(t))
}
