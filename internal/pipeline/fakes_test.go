package pipeline

import (
	"context"
	"image"
	"io"
	"sync"
	"time"

	"media-slideshow/internal/database"
	"media-slideshow/internal/media"
	"media-slideshow/internal/mediatypes"
	"media-slideshow/internal/scanner"
)

type fakeScanner struct {
	mu      sync.Mutex
	results []scanner.Result
	calls   int
}

func (s *fakeScanner) Scan(context.Context) scanner.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.results[min(s.calls, len(s.results)-1)]
	s.calls++
	return r
}

func (s *fakeScanner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fakeDecoder returns a small still for every path unless told otherwise.
type fakeDecoder struct {
	mu      sync.Mutex
	results map[string]media.Prepared
	errs    map[string]error
	calls   []string
}

func (d *fakeDecoder) Prepare(_ context.Context, path string, _ media.Size) (media.Prepared, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, path)
	if err := d.errs[path]; err != nil {
		return media.Prepared{}, err
	}
	if p, ok := d.results[path]; ok {
		return p, nil
	}
	return media.Prepared{Kind: mediatypes.KindImage, Still: image.NewRGBA(image.Rect(0, 0, 4, 4))}, nil
}

type renderCall struct {
	frame   *image.RGBA
	opacity uint8
}

type fakeSurface struct {
	mu      sync.Mutex
	renders []renderCall
	blanks  int
}

func (s *fakeSurface) Size() media.Size { return media.Size{Width: 64, Height: 36} }

func (s *fakeSurface) Render(frame *image.RGBA, opacity uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders = append(s.renders, renderCall{frame: frame, opacity: opacity})
	return nil
}

func (s *fakeSurface) Blank() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blanks++
	return nil
}

func (s *fakeSurface) Renders() []renderCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]renderCall(nil), s.renders...)
}

// fakePoller runs onPoll with the poll count on every Poll.
type fakePoller struct {
	polls  int
	onPoll func(n int)
}

func (p *fakePoller) Poll() {
	p.polls++
	if p.onPoll != nil {
		p.onPoll(p.polls)
	}
}

type fakeRecorder struct {
	mu    sync.Mutex
	plays []database.Play
}

func (r *fakeRecorder) RecordPlay(_ context.Context, play database.Play) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plays = append(r.plays, play)
	return nil
}

func (r *fakeRecorder) Plays() []database.Play {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]database.Play(nil), r.plays...)
}

// fakeStream yields count frames at fps.
type fakeStream struct {
	count    int
	fps      float64
	duration time.Duration
	failAt   int
	served   int
	closed   int
	frame    *image.RGBA
}

func newFakeStream(count int, fps float64) *fakeStream {
	return &fakeStream{
		count:    count,
		fps:      fps,
		duration: time.Duration(float64(count) / fps * float64(time.Second)),
		failAt:   -1,
		frame:    image.NewRGBA(image.Rect(0, 0, 4, 4)),
	}
}

func (s *fakeStream) FrameRate() float64      { return s.fps }
func (s *fakeStream) Duration() time.Duration { return s.duration }

func (s *fakeStream) Position() time.Duration {
	if s.served == 0 || s.fps <= 0 {
		return 0
	}
	return time.Duration(float64(s.served-1) / s.fps * float64(time.Second))
}

func (s *fakeStream) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.served == s.failAt {
		return nil, media.ErrDecode
	}
	if s.served >= s.count || s.closed > 0 {
		return nil, io.EOF
	}
	s.served++
	return s.frame, nil
}

func (s *fakeStream) Close() error {
	s.closed++
	return nil
}

func entries(announcements int, paths ...string) scanner.Result {
	r := scanner.Result{Announcements: announcements}
	for i, p := range paths {
		r.Entries = append(r.Entries, scanner.Entry{Path: p, Announcement: i < announcements})
	}
	return r
}
