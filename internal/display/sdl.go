package display

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"media-slideshow/internal/input"
	"media-slideshow/internal/logging"
	"media-slideshow/internal/media"

	"github.com/veandco/go-sdl2/sdl"
)

// DefaultTitle is the window caption.
const DefaultTitle = "LCS Slideshow"

var errClosed = errors.New("display closed")

// Window is an SDL2 full-screen desktop window with a streaming texture.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer

	texture     *sdl.Texture
	textureSize media.Size

	size   media.Size
	closed bool
}

// Open initialises SDL video and creates the full-screen window.
func Open(title string) (*Window, error) {
	if title == "" {
		title = DefaultTitle
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %w", err)
	}

	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, 0, 0,
		sdl.WINDOW_FULLSCREEN_DESKTOP|sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		logging.Warn("Accelerated renderer unavailable, using software: %v", err)
		renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_SOFTWARE)
		if err != nil {
			_ = window.Destroy()
			sdl.Quit()
			return nil, fmt.Errorf("failed to create renderer: %w", err)
		}
	}

	w, h, err := renderer.GetOutputSize()
	if err != nil {
		_ = renderer.Destroy()
		_ = window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to query output size: %w", err)
	}

	if _, err := sdl.ShowCursor(sdl.DISABLE); err != nil {
		logging.Debug("Could not hide cursor: %v", err)
	}

	d := &Window{
		window:   window,
		renderer: renderer,
		size:     media.Size{Width: int(w), Height: int(h)},
	}
	logging.Info("Display opened: %s (%s)", d.size, title)
	return d, nil
}

// Size returns the drawable size in pixels.
func (d *Window) Size() media.Size {
	return d.size
}

// Render clears to black and draws frame centred with the given opacity.
func (d *Window) Render(frame *image.RGBA, opacity uint8) error {
	if d.closed {
		return errClosed
	}
	if err := d.clear(); err != nil {
		return err
	}

	if frame != nil && opacity > 0 {
		tex, err := d.upload(frame)
		if err != nil {
			return err
		}
		if err := tex.SetAlphaMod(opacity); err != nil {
			return fmt.Errorf("failed to set alpha: %w", err)
		}
		dst := toRect(centered(frame.Bounds().Dx(), frame.Bounds().Dy(), d.size))
		if err := d.renderer.Copy(tex, nil, &dst); err != nil {
			return fmt.Errorf("failed to draw frame: %w", err)
		}
	}

	d.renderer.Present()
	return nil
}

// Blank presents a black frame.
func (d *Window) Blank() error {
	return d.Render(nil, 0)
}

func (d *Window) clear() error {
	if err := d.renderer.SetDrawColor(0, 0, 0, 255); err != nil {
		return fmt.Errorf("failed to set draw color: %w", err)
	}
	if err := d.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear: %w", err)
	}
	return nil
}

// upload copies frame into the streaming texture, recreating it when the
// frame size changes.
func (d *Window) upload(frame *image.RGBA) (*sdl.Texture, error) {
	size := media.Size{Width: frame.Bounds().Dx(), Height: frame.Bounds().Dy()}
	if size.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	if d.texture == nil || d.textureSize != size {
		if d.texture != nil {
			_ = d.texture.Destroy()
			d.texture = nil
		}
		// ABGR8888 is R,G,B,A in memory on little-endian hosts, the
		// image.RGBA layout.
		tex, err := d.renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888,
			sdl.TEXTUREACCESS_STREAMING, int32(size.Width), int32(size.Height))
		if err != nil {
			return nil, fmt.Errorf("failed to create texture: %w", err)
		}
		if err := tex.SetBlendMode(sdl.BLENDMODE_BLEND); err != nil {
			_ = tex.Destroy()
			return nil, fmt.Errorf("failed to set blend mode: %w", err)
		}
		d.texture = tex
		d.textureSize = size
	}

	if err := d.texture.Update(nil, unsafe.Pointer(&frame.Pix[0]), frame.Stride); err != nil {
		return nil, fmt.Errorf("failed to upload frame: %w", err)
	}
	return d.texture, nil
}

// PollQuit drains pending SDL events and reports the first quit request.
func (d *Window) PollQuit() *input.QuitError {
	if d.closed {
		return nil
	}
	var quit *input.QuitError
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if quit == nil {
			quit = quitEvent(event)
		}
	}
	return quit
}

// quitEvent maps an SDL event to a quit request, or nil.
func quitEvent(event sdl.Event) *input.QuitError {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return input.UserQuit("window closed")
	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_CLOSE {
			return input.UserQuit("window closed")
		}
	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN {
			return nil
		}
		switch e.Keysym.Sym {
		case sdl.K_ESCAPE:
			return input.UserQuit("Esc pressed")
		case sdl.K_q:
			return input.UserQuit("q pressed")
		case sdl.K_c:
			if e.Keysym.Mod&sdl.KMOD_CTRL != 0 {
				return input.UserQuit("Ctrl+C pressed")
			}
		}
	}
	return nil
}

// Close destroys the window and shuts SDL down. Safe to call twice.
func (d *Window) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if d.texture != nil {
		_ = d.texture.Destroy()
	}
	if err := d.renderer.Destroy(); err != nil {
		logging.Warn("Failed to destroy renderer: %v", err)
	}
	err := d.window.Destroy()
	sdl.Quit()
	logging.Info("Display closed")
	return err
}

// centered places a w x h frame in the middle of screen.
func centered(w, h int, screen media.Size) image.Rectangle {
	x := (screen.Width - w) / 2
	y := (screen.Height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

func toRect(r image.Rectangle) sdl.Rect {
	return sdl.Rect{X: int32(r.Min.X), Y: int32(r.Min.Y), W: int32(r.Dx()), H: int32(r.Dy())}
}
