package input

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// signalQuit maps a signal onto its conventional 128+n exit code.
func signalQuit(sig os.Signal) *QuitError {
	switch sig {
	case os.Interrupt:
		return &QuitError{Reason: "interrupt signal", Code: ExitSIGINT}
	case syscall.SIGTERM:
		return &QuitError{Reason: "terminate signal", Code: ExitSIGTERM}
	default:
		return &QuitError{Reason: "signal " + sig.String(), Code: ExitFailure}
	}
}

// WatchSignals turns SIGINT and SIGTERM into quit requests until ctx ends.
// The returned function stops watching.
func WatchSignals(ctx context.Context, m *Monitor) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case sig := <-sigChan:
			m.Quit(signalQuit(sig))
		case <-ctx.Done():
		}
	}()

	return func() {
		cancel()
		signal.Stop(sigChan)
	}
}
