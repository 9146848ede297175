package main

import (
	"context"
	"errors"
	"image"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"media-slideshow/internal/input"
	"media-slideshow/internal/media"
	"media-slideshow/internal/mediatypes"
	"media-slideshow/internal/pipeline"
	"media-slideshow/internal/queue"
	"media-slideshow/internal/startup"
)

func testConfig() *startup.Config {
	return &startup.Config{
		SlideDuration:        8 * time.Second,
		AnnouncementDuration: 12 * time.Second,
		FadeDuration:         500 * time.Millisecond,
		VideoFadeIn:          time.Second,
		VideoFadeOut:         2 * time.Second,
		MinImageWidth:        800,
		MinImageHeight:       600,
	}
}

func TestNewDecoderConfig(t *testing.T) {
	c := newDecoderConfig(testConfig())
	if c.MinWidth != 800 || c.MinHeight != 600 {
		t.Errorf("min size = %dx%d, want 800x600", c.MinWidth, c.MinHeight)
	}
	if c.FFmpegPath == "" || c.FFprobePath == "" {
		t.Error("tool paths should keep their defaults")
	}
}

func TestNewPresenterConfig(t *testing.T) {
	c := newPresenterConfig(testConfig(), "session-1")
	if c.SlideDuration != 8*time.Second || c.AnnouncementDuration != 12*time.Second {
		t.Errorf("durations = %v/%v", c.SlideDuration, c.AnnouncementDuration)
	}
	if c.FadeDuration != 500*time.Millisecond || c.VideoFadeIn != time.Second || c.VideoFadeOut != 2*time.Second {
		t.Errorf("fades = %v %v %v", c.FadeDuration, c.VideoFadeIn, c.VideoFadeOut)
	}
	if c.Session != "session-1" {
		t.Errorf("Session = %q", c.Session)
	}
}

func TestExitCode(t *testing.T) {
	t.Run("signal", func(t *testing.T) {
		ctx, cancel := context.WithCancelCause(context.Background())
		cancel(&input.QuitError{Reason: "terminate signal", Code: input.ExitSIGTERM})
		if got := exitCode(ctx, ctx.Err()); got != input.ExitSIGTERM {
			t.Errorf("exitCode = %d, want %d", got, input.ExitSIGTERM)
		}
	})

	t.Run("user quit", func(t *testing.T) {
		ctx, cancel := context.WithCancelCause(context.Background())
		cancel(input.UserQuit("Esc pressed"))
		if got := exitCode(ctx, ctx.Err()); got != input.ExitUser {
			t.Errorf("exitCode = %d, want 0", got)
		}
	})

	t.Run("presenter error", func(t *testing.T) {
		if got := exitCode(context.Background(), errors.New("render failed")); got != input.ExitFailure {
			t.Errorf("exitCode = %d, want 1", got)
		}
	})
}

func TestShutdownReason(t *testing.T) {
	_, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	m := input.NewMonitor(cancel)
	if got := shutdownReason(m, errors.New("boom")); got != "boom" {
		t.Errorf("reason = %q, want boom", got)
	}

	m.Quit(input.UserQuit("q pressed"))
	if got := shutdownReason(m, nil); got != "q pressed" {
		t.Errorf("reason = %q, want q pressed", got)
	}
}

func TestStartStatusServerDisabled(t *testing.T) {
	if srv := startStatusServer(testConfig(), nil, nil, "s"); srv != nil {
		t.Error("server started without a port")
	}
}

func TestConnectEventsDisabled(t *testing.T) {
	if p := connectEvents(testConfig(), "0123456789abcdef"); p != nil {
		t.Error("publisher created without a broker")
	}
}

type fakeDisplay struct {
	q          *queue.Queue[*pipeline.Item]
	closed     atomic.Bool
	queuedSeen int
}

func (d *fakeDisplay) Close() error {
	d.queuedSeen = d.q.Len()
	d.closed.Store(true)
	return nil
}

func TestShutdownOrder(t *testing.T) {
	q := queue.New[*pipeline.Item](3)
	still := media.Prepared{Kind: mediatypes.KindImage, Still: image.NewRGBA(image.Rect(0, 0, 4, 4))}
	items := []*pipeline.Item{
		pipeline.NewItem("a.jpg", false, still),
		pipeline.NewItem("b.jpg", false, still),
	}
	for _, item := range items {
		if err := q.Push(context.Background(), item); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	display := &fakeDisplay{q: q}
	srv := &http.Server{}
	displayClosedFirst := make(chan bool, 1)
	srv.RegisterOnShutdown(func() { displayClosedFirst <- display.closed.Load() })

	shutdown(display, srv, q)

	if !display.closed.Load() {
		t.Fatal("display not closed")
	}
	if display.queuedSeen != len(items) {
		t.Errorf("display closed with %d queued items, want %d before the drain", display.queuedSeen, len(items))
	}
	select {
	case first := <-displayClosedFirst:
		if !first {
			t.Error("status server shut down before the display closed")
		}
	case <-time.After(time.Second):
		t.Error("status server shutdown hook not called")
	}

	if q.Len() != 0 {
		t.Errorf("queue length = %d after shutdown, want 0", q.Len())
	}
	for _, item := range items {
		if item.Content != nil {
			t.Errorf("%s not released", item.SourcePath)
		}
	}

	late := pipeline.NewItem("late.jpg", false, still)
	if err := q.Push(context.Background(), late); !errors.Is(err, queue.ErrClosed) {
		t.Errorf("Push after shutdown error = %v, want queue.ErrClosed", err)
	}
}

func TestShutdownWithoutServer(t *testing.T) {
	q := queue.New[*pipeline.Item](1)
	display := &fakeDisplay{q: q}
	shutdown(display, nil, q)
	if !display.closed.Load() {
		t.Error("display not closed")
	}
}
