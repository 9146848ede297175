package media

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"media-slideshow/internal/logging"
)

// VideoStream is a lazily decoded sequence of frames.
type VideoStream interface {
	// FrameRate is the native frame rate, or 0 when unknown.
	FrameRate() float64
	// Duration is the total play time, or 0 when unknown.
	Duration() time.Duration
	// Position is the timestamp of the most recent frame returned by Next.
	Position() time.Duration
	// Next returns the next frame, or io.EOF once the stream is exhausted.
	// The frame is only valid until the following call to Next.
	Next(ctx context.Context) (*image.RGBA, error)
	Close() error
}

// VideoInfo holds the ffprobe results the presenter needs.
type VideoInfo struct {
	Width     int
	Height    int
	FrameRate float64
	Duration  time.Duration
	Codec     string
}

type probeOutput struct {
	Streams []struct {
		CodecType    string            `json:"codec_type"`
		CodecName    string            `json:"codec_name"`
		Width        int               `json:"width"`
		Height       int               `json:"height"`
		AvgFrameRate string            `json:"avg_frame_rate"`
		RFrameRate   string            `json:"r_frame_rate"`
		Duration     string            `json:"duration"`
		Tags         map[string]string `json:"tags"`
		SideData     []struct {
			Rotation float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseProbe extracts the first video stream from ffprobe JSON output.
// Width and height are swapped for streams rotated by a quarter turn, since
// ffmpeg applies the rotation while decoding.
func parseProbe(data []byte) (VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return VideoInfo{}, fmt.Errorf("invalid ffprobe output: %w", err)
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return VideoInfo{}, errors.New("video stream has no dimensions")
		}

		info := VideoInfo{
			Width:     s.Width,
			Height:    s.Height,
			Codec:     s.CodecName,
			FrameRate: parseRate(s.AvgFrameRate),
		}
		if info.FrameRate == 0 {
			info.FrameRate = parseRate(s.RFrameRate)
		}

		seconds := parseSeconds(s.Duration)
		if seconds == 0 {
			seconds = parseSeconds(out.Format.Duration)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))

		rotation := 0.0
		if r, err := strconv.ParseFloat(s.Tags["rotate"], 64); err == nil {
			rotation = r
		}
		for _, sd := range s.SideData {
			if sd.Rotation != 0 {
				rotation = sd.Rotation
			}
		}
		if int(math.Abs(rotation))%180 == 90 {
			info.Width, info.Height = info.Height, info.Width
		}
		return info, nil
	}
	return VideoInfo{}, errors.New("no video stream")
}

// parseRate parses an ffprobe rational such as "30000/1001".
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ProbeVideo runs ffprobe on path.
func (d *Decoder) ProbeVideo(ctx context.Context, path string) (VideoInfo, error) {
	ffprobePath, err := exec.LookPath(d.config.FFprobePath)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}
	return parseProbe(stdout.Bytes())
}

// openVideo probes path and returns a stream that starts decoding on the
// first call to Next.
func (d *Decoder) openVideo(ctx context.Context, path string, target Size) (*FFmpegStream, error) {
	ffmpegPath, err := exec.LookPath(d.config.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: ffmpeg not found: %w", ErrDecode, path, err)
	}

	info, err := d.ProbeVideo(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	r := FitRect(Size{Width: info.Width, Height: info.Height}, target)
	out := Size{Width: r.Dx(), Height: r.Dy()}

	logging.Debug("Opened video %s: %dx%d %s at %.2f fps, %v, output %s",
		path, info.Width, info.Height, info.Codec, info.FrameRate, info.Duration, out)

	return newFFmpegStream(path, ffmpegPath, info, out, d.config.FallbackFrameRate), nil
}

// newFFmpegStream creates an unstarted stream. When the probe reported no
// frame rate, ffmpeg is told to emit fallbackRate so frame timestamps stay
// known.
func newFFmpegStream(path, ffmpegPath string, info VideoInfo, size Size, fallbackRate float64) *FFmpegStream {
	s := &FFmpegStream{
		path:       path,
		ffmpegPath: ffmpegPath,
		info:       info,
		size:       size,
		rate:       info.FrameRate,
	}
	if s.rate <= 0 {
		if fallbackRate <= 0 {
			fallbackRate = DefaultFallbackFrameRate
		}
		s.rate = fallbackRate
		s.forceRate = true
	}
	return s
}

var _ VideoStream = (*FFmpegStream)(nil)

// FFmpegStream decodes a video through an ffmpeg process writing raw RGBA
// frames of a fixed size to a pipe.
type FFmpegStream struct {
	path       string
	ffmpegPath string
	info       VideoInfo
	size       Size
	rate       float64
	forceRate  bool

	mu      sync.Mutex
	cmd     *exec.Cmd
	reader  *bufio.Reader
	stderr  bytes.Buffer
	frame   *image.RGBA
	frames  int
	started bool
	done    bool
	closed  bool
}

// Info returns the probe results.
func (s *FFmpegStream) Info() VideoInfo { return s.info }

// Size returns the dimensions of the frames Next produces.
func (s *FFmpegStream) Size() Size { return s.size }

// FrameRate returns the probed rate, or the fallback rate ffmpeg is forced
// to when the probe had none.
func (s *FFmpegStream) FrameRate() float64 { return s.rate }

func (s *FFmpegStream) Duration() time.Duration { return s.info.Duration }

func (s *FFmpegStream) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == 0 || s.rate <= 0 {
		return 0
	}
	return time.Duration(float64(s.frames-1) / s.rate * float64(time.Second))
}

func (s *FFmpegStream) args() []string {
	args := []string{
		"-v", "error",
		"-nostdin",
		"-i", s.path,
		"-an", "-sn",
		"-vf", fmt.Sprintf("scale=%d:%d:flags=bicubic", s.size.Width, s.size.Height),
	}
	if s.forceRate {
		args = append(args, "-r", strconv.FormatFloat(s.rate, 'f', -1, 64))
	}
	return append(args, "-f", "rawvideo", "-pix_fmt", "rgba", "-")
}

func (s *FFmpegStream) start() error {
	s.cmd = exec.Command(s.ffmpegPath, s.args()...)
	s.cmd.Stderr = &s.stderr

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	s.reader = bufio.NewReaderSize(stdout, 1<<20)
	s.frame = image.NewRGBA(image.Rect(0, 0, s.size.Width, s.size.Height))
	s.started = true
	return nil
}

func (s *FFmpegStream) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.done {
		return nil, io.EOF
	}
	if !s.started {
		if err := s.start(); err != nil {
			s.done = true
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, s.path, err)
		}
	}

	if _, err := io.ReadFull(s.reader, s.frame.Pix); err != nil {
		s.done = true
		waitErr := s.cmd.Wait()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if waitErr != nil && s.frames == 0 {
				return nil, fmt.Errorf("%w: %s: %w - %s", ErrDecode, s.path, waitErr, strings.TrimSpace(s.stderr.String()))
			}
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, s.path, err)
	}

	s.frames++
	return s.frame, nil
}

// Close stops the ffmpeg process. It is safe to call more than once.
func (s *FFmpegStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.frame = nil

	if !s.started || s.done {
		return nil
	}

	if s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil {
			logging.Debug("Killing ffmpeg for %s: %v", s.path, err)
		}
	}
	// Wait closes the stdout pipe.
	if err := s.cmd.Wait(); err != nil {
		logging.Debug("ffmpeg for %s exited: %v", s.path, err)
	}
	return nil
}
