package input

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"

	"media-slideshow/internal/logging"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by NewTerminal when the file is not a tty.
var ErrNotTerminal = errors.New("not a terminal")

// Terminal reads quit keys from a controlling terminal in raw mode:
// q, Esc and Ctrl+C. Raw mode turns off the terminal's own Ctrl+C handling,
// so the key arrives here instead of as SIGINT.
type Terminal struct {
	file    *os.File
	state   *term.State
	keys    chan *QuitError
	once    sync.Once
	restore sync.Once
}

// NewTerminal switches f to raw mode and starts reading it.
func NewTerminal(f *os.File) (*Terminal, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	// Raw mode also disables output newline translation.
	logging.SetConsole(&crlfWriter{w: os.Stderr})

	t := &Terminal{
		file:  f,
		state: state,
		keys:  make(chan *QuitError, 1),
	}
	go t.readLoop()
	return t, nil
}

func (t *Terminal) readLoop() {
	buf := make([]byte, 32)
	for {
		n, err := t.file.Read(buf)
		if n > 0 {
			if q := quitKey(buf[:n]); q != nil {
				t.once.Do(func() { t.keys <- q })
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				logging.Debug("Terminal input stopped: %v", err)
			}
			return
		}
	}
}

// quitKey inspects one read from the terminal. A lone Esc quits; Esc that
// starts an escape sequence (arrow keys and the like) does not.
func quitKey(chunk []byte) *QuitError {
	switch {
	case bytes.IndexByte(chunk, 0x03) >= 0:
		return UserQuit("Ctrl+C on terminal")
	case bytes.IndexAny(chunk, "qQ") >= 0 && chunk[0] != 0x1b:
		return UserQuit("q on terminal")
	case len(chunk) == 1 && chunk[0] == 0x1b:
		return UserQuit("Esc on terminal")
	}
	return nil
}

// PollQuit reports a pending quit key without blocking.
func (t *Terminal) PollQuit() *QuitError {
	select {
	case q := <-t.keys:
		return q
	default:
		return nil
	}
}

// Close restores the terminal mode and the plain console writer.
func (t *Terminal) Close() error {
	var err error
	t.restore.Do(func() {
		logging.SetConsole(nil)
		err = term.Restore(int(t.file.Fd()), t.state)
	})
	return err
}

// crlfWriter translates \n to \r\n for a terminal in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
