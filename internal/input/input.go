package input

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"media-slideshow/internal/logging"
)

// Exit codes for quit requests.
const (
	ExitUser    = 0
	ExitFailure = 1
	ExitSIGINT  = 130
	ExitSIGTERM = 143
)

// QuitError is the cancellation cause recorded when a quit is requested.
type QuitError struct {
	Reason string
	Code   int
}

func (e *QuitError) Error() string {
	return fmt.Sprintf("quit requested: %s", e.Reason)
}

// UserQuit is a quit requested from the keyboard or the window.
func UserQuit(reason string) *QuitError {
	return &QuitError{Reason: reason, Code: ExitUser}
}

// ExitCode returns the exit code carried by err, ExitUser for a nil error
// and ExitFailure for anything else.
func ExitCode(err error) int {
	if err == nil {
		return ExitUser
	}
	var quit *QuitError
	if errors.As(err, &quit) {
		return quit.Code
	}
	return ExitFailure
}

// Source is polled for pending quit requests. PollQuit must not block.
type Source interface {
	PollQuit() *QuitError
}

// SourceFunc adapts a function to Source.
type SourceFunc func() *QuitError

func (f SourceFunc) PollQuit() *QuitError { return f() }

// Monitor fans quit requests from its sources into one cancellation.
type Monitor struct {
	cancel context.CancelCauseFunc

	mu      sync.Mutex
	sources []Source
	quit    *QuitError
}

// NewMonitor creates a Monitor that calls cancel on the first quit request.
func NewMonitor(cancel context.CancelCauseFunc, sources ...Source) *Monitor {
	return &Monitor{cancel: cancel, sources: sources}
}

// AddSource registers another polled source.
func (m *Monitor) AddSource(s Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, s)
}

// Poll drains every source. It is called once per rendered frame and on
// every presenter wait.
func (m *Monitor) Poll() {
	m.mu.Lock()
	sources := m.sources
	m.mu.Unlock()

	for _, s := range sources {
		if q := s.PollQuit(); q != nil {
			m.Quit(q)
			return
		}
	}
}

// Quit records q and cancels the root context. Only the first call has an
// effect. Safe to call from any goroutine.
func (m *Monitor) Quit(q *QuitError) {
	m.mu.Lock()
	if m.quit != nil {
		m.mu.Unlock()
		return
	}
	m.quit = q
	m.mu.Unlock()

	logging.Info("Quit requested: %s", q.Reason)
	m.cancel(q)
}

// Reason returns the first quit request, or nil.
func (m *Monitor) Reason() *QuitError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quit
}
