package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"media-slideshow/internal/database"
	"media-slideshow/internal/display"
	"media-slideshow/internal/events"
	"media-slideshow/internal/filesystem"
	"media-slideshow/internal/handlers"
	"media-slideshow/internal/input"
	"media-slideshow/internal/logging"
	"media-slideshow/internal/media"
	"media-slideshow/internal/memory"
	"media-slideshow/internal/metrics"
	"media-slideshow/internal/pipeline"
	"media-slideshow/internal/queue"
	"media-slideshow/internal/scanner"
	"media-slideshow/internal/startup"

	"github.com/google/uuid"
)

// SDL must be driven from the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	startTime := time.Now()

	configPath := flag.String("config", "", "path to the JSON or YAML config file")
	envPath := flag.String("env", ".env", "optional file of KEY=VALUE environment defaults")
	flag.Parse()

	if err := startup.LoadEnvFile(*envPath); err != nil {
		logging.Warn("Ignoring environment file: %v", err)
	}

	memResult := memory.ConfigureFromEnv()

	config, err := startup.LoadConfig(startup.ConfigPath(*configPath))
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	if config.LoggingToFile {
		if err := logging.SetDirectory(config.LogDir); err != nil {
			logging.Warn("Logging to stderr only: %v", err)
		}
	}
	defer logging.Close()
	startup.LogMemoryConfig(memResult)

	metrics.InitializeMetrics()
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"media":        config.MediaDir,
		"announcement": config.AnnouncementDir,
	}))

	memMonitor := memory.NewMonitor(memory.DefaultConfig())
	memMonitor.Start()
	defer memMonitor.Stop()

	// libvips is left to process exit: a decode may still be in flight
	// when the presenter returns.
	if err := media.InitVips(); err != nil {
		logging.Warn("libvips initialization failed: %v", err)
	}
	decoderConfig := newDecoderConfig(config)
	decoder := media.NewDecoder(decoderConfig)
	startup.LogDecoderInit(media.IsVipsAvailable(), decoderConfig.FFmpegPath, decoderConfig.FFprobePath)

	session := uuid.NewString()

	var history *database.Database
	if config.HistoryEnabled {
		dbStart := time.Now()
		history, err = database.Open(context.Background(), config.DatabaseDir)
		if err != nil {
			logging.Warn("Play history disabled: %v", err)
			history = nil
		} else {
			defer history.Close()
			startup.LogDatabaseInit(time.Since(dbStart))

			collector := metrics.NewCollector(history, 30*time.Second)
			collector.Start()
			defer collector.Stop()
		}
	}

	window, err := display.Open(config.WindowTitle)
	if err != nil {
		startup.LogFatal("Failed to open display: %v", err)
	}
	screen := window.Size()
	startup.LogDisplayInit(screen.Width, screen.Height, config.WindowTitle)

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	monitor := input.NewMonitor(cancel, window)
	stopSignals := input.WatchSignals(ctx, monitor)
	defer stopSignals()

	if config.TerminalInput {
		terminal, err := input.NewTerminal(os.Stdin)
		switch {
		case err == nil:
			monitor.AddSource(terminal)
			defer terminal.Close()
		case errors.Is(err, input.ErrNotTerminal):
			logging.Debug("stdin is not a terminal, keyboard quit via the window only")
		default:
			logging.Warn("Terminal input unavailable: %v", err)
		}
	}

	q := queue.New[*pipeline.Item](config.QueueCapacity)
	producer := pipeline.NewProducer(
		scanner.New(config.AnnouncementDir, config.MediaDir),
		decoder,
		q,
		pipeline.ProducerConfig{
			Target:             screen,
			IdleRescanInterval: config.IdleRescanInterval,
			Memory:             memMonitor,
		},
	)
	go func() {
		if err := producer.Run(ctx); err != nil && ctx.Err() == nil {
			logging.Error("Producer stopped: %v", err)
			monitor.Quit(&input.QuitError{Reason: "producer failed", Code: input.ExitFailure})
		}
	}()

	var recorders []pipeline.Recorder
	if history != nil {
		recorders = append(recorders, history)
	}
	if publisher := connectEvents(config, session); publisher != nil {
		defer publisher.Close()
		recorders = append(recorders, publisher)
	}
	presenter := pipeline.NewPresenter(q, window, monitor, newPresenterConfig(config, session), pipeline.NewRecorder(recorders...))

	srv := startStatusServer(config, presenter, history, session)

	startup.LogSlideshowStarted(startup.RunInfo{
		StatusPort:      config.StatusPort,
		Session:         session,
		StartupDuration: time.Since(startTime),
	})

	err = presenter.Run(ctx)
	code := exitCode(ctx, err)

	startup.LogShutdownInitiated(shutdownReason(monitor, err))
	cancel(nil)

	shutdown(window, srv, q)

	startup.LogShutdownComplete(code)
	return code
}

// shutdown tears down in order: the display first so the screen goes dark
// at once, then the queue is closed so a late producer push is rejected
// before the drain, and finally the status server is given time to finish.
func shutdown(display io.Closer, srv *http.Server, q *queue.Queue[*pipeline.Item]) {
	startup.LogShutdownStep("Closing display")
	if err := display.Close(); err != nil {
		logging.Warn("Display close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Display closed")
	}

	q.Close()
	if n := q.Drain(pipeline.ReleaseItem); n > 0 {
		startup.LogShutdownStepComplete("Released queued items")
		logging.Debug("  %d queued items released", n)
	}

	if srv != nil {
		startup.LogShutdownStep("Shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Status server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Status server stopped")
		}
	}
}

func newDecoderConfig(config *startup.Config) media.DecoderConfig {
	c := media.DefaultDecoderConfig()
	c.MinWidth = config.MinImageWidth
	c.MinHeight = config.MinImageHeight
	return c
}

func newPresenterConfig(config *startup.Config, session string) pipeline.PresenterConfig {
	return pipeline.PresenterConfig{
		SlideDuration:        config.SlideDuration,
		AnnouncementDuration: config.AnnouncementDuration,
		FadeDuration:         config.FadeDuration,
		VideoFadeIn:          config.VideoFadeIn,
		VideoFadeOut:         config.VideoFadeOut,
		Session:              session,
	}
}

// connectEvents connects the MQTT publisher when a broker is configured.
// A broker that cannot be reached disables publishing for this run.
func connectEvents(config *startup.Config, session string) *events.Publisher {
	if config.MQTTBroker == "" {
		return nil
	}
	publisher, err := events.Connect(events.Config{
		Broker:   config.MQTTBroker,
		Topic:    config.MQTTTopic,
		ClientID: "media-slideshow-" + session[:8],
	})
	if err != nil {
		logging.Warn("MQTT events disabled: %v", err)
		return nil
	}
	return publisher
}

// startStatusServer serves the status API when a port is configured.
func startStatusServer(config *startup.Config, presenter *pipeline.Presenter, history *database.Database, session string) *http.Server {
	if config.StatusPort == "" {
		return nil
	}

	var store handlers.HistoryStore
	if history != nil {
		store = history
	}
	router := handlers.NewRouter(handlers.New(presenter, store, session))
	startup.LogHTTPRoutes(router)

	srv := &http.Server{
		Addr:              ":" + config.StatusPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Status server error: %v", err)
		}
	}()
	return srv
}

// exitCode maps the presenter result onto the process exit code.
func exitCode(ctx context.Context, runErr error) int {
	if ctx.Err() != nil {
		return input.ExitCode(context.Cause(ctx))
	}
	if runErr != nil {
		return input.ExitFailure
	}
	return input.ExitUser
}

func shutdownReason(monitor *input.Monitor, runErr error) string {
	if q := monitor.Reason(); q != nil {
		return q.Reason
	}
	if runErr != nil {
		return runErr.Error()
	}
	return "presenter stopped"
}
