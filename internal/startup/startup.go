package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"media-slideshow/internal/logging"
	"media-slideshow/internal/memory"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// LoadConfig loads the config file at path, applies environment overrides
// and prepares the optional log and database directories. Errors wrap
// ErrFatalConfig.
func LoadConfig(path string) (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Config file:           %s", path)

	fc, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	config, err := buildConfig(fc, os.Getenv)
	if err != nil {
		return nil, err
	}

	logging.Info("  MEDIA_DIR:             %s", config.MediaDir)
	logging.Info("  ANNOUNCEMENT_DIR:      %s", config.AnnouncementDir)
	logging.Info("  SLIDE_DURATION:        %v", config.SlideDuration)
	logging.Info("  ANNOUNCEMENT_DURATION: %v", config.AnnouncementDuration)
	logging.Info("  FADE_DURATION:         %v", config.FadeDuration)
	logging.Info("  VIDEO_FADE:            %v in, %v out", config.VideoFadeIn, config.VideoFadeOut)
	logging.Info("  QUEUE_CAPACITY:        %d", config.QueueCapacity)
	logging.Info("  MIN_IMAGE_SIZE:        %dx%d", config.MinImageWidth, config.MinImageHeight)
	logging.Info("  IDLE_RESCAN:           %v", config.IdleRescanInterval)
	logging.Info("  STATUS_PORT:           %s", valueOr(config.StatusPort, "(disabled)"))
	logging.Info("  TERMINAL_INPUT:        %v", config.TerminalInput)
	logging.Info("  MQTT_BROKER:           %s", valueOr(config.MQTTBroker, "(disabled)"))
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if config.MediaDir, err = filepath.Abs(config.MediaDir); err != nil {
		return nil, fmt.Errorf("%w: failed to resolve media directory path: %w", ErrFatalConfig, err)
	}
	logging.Info("  Media directory (absolute): %s", config.MediaDir)

	if config.AnnouncementDir, err = filepath.Abs(config.AnnouncementDir); err != nil {
		return nil, fmt.Errorf("%w: failed to resolve announcement directory path: %w", ErrFatalConfig, err)
	}
	logging.Info("  Announcement directory (absolute): %s", config.AnnouncementDir)

	// Missing media roots are rescanned every cycle, so they only warn.
	checkMediaDirectory(config.MediaDir, "media")
	checkMediaDirectory(config.AnnouncementDir, "announcement")

	if config.LogDir != "" {
		if config.LogDir, err = filepath.Abs(config.LogDir); err == nil {
			config.LoggingToFile = setupOptionalDir(config.LogDir, "log")
		}
	}
	if config.DatabaseDir != "" {
		if config.DatabaseDir, err = filepath.Abs(config.DatabaseDir); err == nil {
			config.HistoryEnabled = setupOptionalDir(config.DatabaseDir, "database")
		}
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Log file:      %s", enabledString(config.LoggingToFile))
	logging.Info("    Play history:  %s", enabledString(config.HistoryEnabled))
	logging.Info("    Status server: %s", enabledString(config.StatusPort != ""))
	logging.Info("    MQTT events:   %s", enabledString(config.MQTTBroker != ""))

	return config, nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := ensureDirectory(path, name); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// LogMemoryConfig logs how GOMEMLIMIT was configured
func LogMemoryConfig(result memory.ConfigResult) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if !result.Configured {
		logging.Info("  No memory limit configured")
		logging.Info("  (set MEMORY_LIMIT or GOMEMLIMIT to enable backpressure)")
		return
	}
	logging.Info("  [OK] %s", result)
}

// LogDecoderInit logs decoder setup and checks the external tools
func LogDecoderInit(vipsAvailable bool, ffmpegPath, ffprobePath string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DECODER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if vipsAvailable {
		logging.Info("  [OK] libvips fallback decoder available")
	} else {
		logging.Warn("  libvips unavailable, image fallback uses FFmpeg only")
	}

	for _, tool := range []string{ffmpegPath, ffprobePath} {
		if err := checkTool(tool); err != nil {
			logging.Warn("  %s check failed: %v", tool, err)
			logging.Warn("  Videos will be skipped")
		} else {
			logging.Info("  [OK] %s is available", tool)
		}
	}
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Play history database initialized in %v", duration)
}

// LogDisplayInit logs the display surface size
func LogDisplayInit(width, height int, title string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DISPLAY INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Window:     %s", title)
	logging.Info("  Resolution: %dx%d", width, height)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs the status server routes at debug level
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STATUS SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if !logging.IsDebugEnabled() {
		logging.Info("  Routes registered (set LOG_LEVEL=debug to list)")
		return
	}

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}

	logging.Debug("  Registered routes (%d total):", len(routes))

	groups := make(map[string][]RouteInfo)
	for _, route := range routes {
		prefix := getRouteGroup(route.Path)
		groups[prefix] = append(groups[prefix], route)
	}

	groupKeys := make([]string, 0, len(groups))
	for k := range groups {
		groupKeys = append(groupKeys, k)
	}
	sort.Strings(groupKeys)

	for _, group := range groupKeys {
		if group != "" {
			logging.Debug("  [%s]", group)
		} else {
			logging.Debug("  [root]")
		}
		for _, route := range groups[group] {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// RunInfo holds what the started log reports
type RunInfo struct {
	StatusPort      string
	Session         string
	StartupDuration time.Duration
}

// LogSlideshowStarted logs a successful start
func LogSlideshowStarted(info RunInfo) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SLIDESHOW STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", info.StartupDuration)
	logging.Info("  Session:         %s", info.Session)
	if info.StatusPort != "" {
		logging.Info("  Status:          http://0.0.0.0:%s/api/status", info.StatusPort)
		logging.Info("  Metrics:         http://0.0.0.0:%s/metrics", info.StatusPort)
	} else {
		logging.Info("  Status server:   DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Esc or q to stop")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(reason string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (%s)", reason)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete(code int) {
	logging.Info("  [OK] Shutdown complete (exit code %d)", code)
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   _____ ___     __          __
  / ___// (_)___/ /__  _____/ /_  ____ _      __
  \__ \/ / / __  / _ \/ ___/ __ \/ __ \ | /| / /
 ___/ / / / /_/ /  __(__  ) / / / /_/ / |/ |/ /
/____/_/_/\__,_/\___/____/_/ /_/\____/|__/|__/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// checkMediaDirectory logs the state of a scan root without creating it.
func checkMediaDirectory(path, name string) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		logging.Warn("  %s directory unavailable: %v", name, err)
		logging.Warn("  It will be treated as empty until it appears")
		return
	case !info.IsDir():
		logging.Warn("  %s path is not a directory: %s", name, path)
		return
	}

	logging.Debug("    [OK] %s directory exists", name)

	if logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			fileCount, dirCount := 0, 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    Contents: %d files, %d directories (top level)", fileCount, dirCount)
		}
	}
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func checkTool(name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	logging.Debug("  %s path: %s", name, path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", name, err)
	}

	if line, _, _ := strings.Cut(string(output), "\n"); line != "" {
		logging.Debug("  %s version: %s", name, strings.TrimSpace(line))
	}

	return nil
}
