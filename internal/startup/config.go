package startup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"media-slideshow/internal/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrFatalConfig is returned when the configuration cannot be used.
var ErrFatalConfig = errors.New("fatal configuration error")

// DefaultConfigPath is read when neither -config nor SLIDESHOW_CONFIG is set.
const DefaultConfigPath = "config.json"

// Defaults for optional keys.
const (
	DefaultFadeSeconds         = 1.0
	DefaultVideoFadeSeconds    = 1.0
	DefaultQueueCapacity       = 5
	DefaultMinImageWidth       = 1280
	DefaultMinImageHeight      = 720
	DefaultIdleRescanSeconds   = 1.0
	DefaultWindowTitle         = "LCS Slideshow"
	DefaultMQTTTopic           = "slideshow"
	defaultTerminalInputEnable = true
)

// Config holds all application configuration
type Config struct {
	MediaDir             string
	AnnouncementDir      string
	SlideDuration        time.Duration
	AnnouncementDuration time.Duration

	LogDir      string
	DatabaseDir string

	FadeDuration       time.Duration
	VideoFadeIn        time.Duration
	VideoFadeOut       time.Duration
	QueueCapacity      int
	MinImageWidth      int
	MinImageHeight     int
	IdleRescanInterval time.Duration
	StatusPort         string
	TerminalInput      bool
	WindowTitle        string
	MQTTBroker         string
	MQTTTopic          string

	// Feature flags based on directory availability
	LoggingToFile  bool
	HistoryEnabled bool
}

// fileConfig mirrors the config file. Pointers distinguish absent keys.
type fileConfig struct {
	LocalMediaDirectory   *string  `json:"local_media_directory" yaml:"local_media_directory"`
	AnnouncementDirectory *string  `json:"announcement_directory" yaml:"announcement_directory"`
	SlideDuration         *float64 `json:"slide_duration" yaml:"slide_duration"`
	AnnouncementDuration  *float64 `json:"announcement_duration" yaml:"announcement_duration"`

	LogDirectory       *string  `json:"log_directory" yaml:"log_directory"`
	DatabaseDirectory  *string  `json:"database_directory" yaml:"database_directory"`
	FadeDuration       *float64 `json:"fade_duration" yaml:"fade_duration"`
	VideoFadeIn        *float64 `json:"video_fade_in" yaml:"video_fade_in"`
	VideoFadeOut       *float64 `json:"video_fade_out" yaml:"video_fade_out"`
	QueueCapacity      *int     `json:"queue_capacity" yaml:"queue_capacity"`
	MinImageWidth      *int     `json:"min_image_width" yaml:"min_image_width"`
	MinImageHeight     *int     `json:"min_image_height" yaml:"min_image_height"`
	IdleRescanInterval *float64 `json:"idle_rescan_interval" yaml:"idle_rescan_interval"`
	StatusPort         *string  `json:"status_port" yaml:"status_port"`
	TerminalInput      *bool    `json:"terminal_input" yaml:"terminal_input"`
	WindowTitle        *string  `json:"window_title" yaml:"window_title"`
	MQTTBroker         *string  `json:"mqtt_broker" yaml:"mqtt_broker"`
	MQTTTopic          *string  `json:"mqtt_topic" yaml:"mqtt_topic"`
}

// ConfigPath picks the config file: the flag value, then SLIDESHOW_CONFIG,
// then DefaultConfigPath.
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return getEnv("SLIDESHOW_CONFIG", DefaultConfigPath)
}

// LoadEnvFile loads KEY=VALUE lines from path into the environment.
// Variables already set win, and a missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// readConfigFile parses path as YAML for .yaml/.yml and JSON otherwise.
func readConfigFile(path string) (fileConfig, error) {
	var fc fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("%w: cannot read %s: %w", ErrFatalConfig, path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("%w: cannot parse %s: %w", ErrFatalConfig, path, err)
	}
	return fc, nil
}

// buildConfig applies environment overrides and defaults to fc and
// validates the result.
func buildConfig(fc fileConfig, getenv func(string) string) (*Config, error) {
	override := func(field **string, key string) {
		if v := getenv(key); v != "" {
			*field = &v
		}
	}
	override(&fc.LocalMediaDirectory, "MEDIA_DIR")
	override(&fc.AnnouncementDirectory, "ANNOUNCEMENT_DIR")
	override(&fc.LogDirectory, "LOG_DIR")
	override(&fc.DatabaseDirectory, "DATABASE_DIR")
	override(&fc.StatusPort, "STATUS_PORT")
	override(&fc.MQTTBroker, "MQTT_BROKER")
	override(&fc.MQTTTopic, "MQTT_TOPIC")

	var missing []string
	if fc.LocalMediaDirectory == nil || *fc.LocalMediaDirectory == "" {
		missing = append(missing, "local_media_directory")
	}
	if fc.AnnouncementDirectory == nil || *fc.AnnouncementDirectory == "" {
		missing = append(missing, "announcement_directory")
	}
	if fc.SlideDuration == nil {
		missing = append(missing, "slide_duration")
	}
	if fc.AnnouncementDuration == nil {
		missing = append(missing, "announcement_duration")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required keys: %s", ErrFatalConfig, strings.Join(missing, ", "))
	}

	config := &Config{
		MediaDir:             *fc.LocalMediaDirectory,
		AnnouncementDir:      *fc.AnnouncementDirectory,
		SlideDuration:        seconds(*fc.SlideDuration),
		AnnouncementDuration: seconds(*fc.AnnouncementDuration),
		LogDir:               stringOr(fc.LogDirectory, ""),
		DatabaseDir:          stringOr(fc.DatabaseDirectory, ""),
		FadeDuration:         seconds(floatOr(fc.FadeDuration, DefaultFadeSeconds)),
		VideoFadeIn:          seconds(floatOr(fc.VideoFadeIn, DefaultVideoFadeSeconds)),
		VideoFadeOut:         seconds(floatOr(fc.VideoFadeOut, DefaultVideoFadeSeconds)),
		QueueCapacity:        intOr(fc.QueueCapacity, DefaultQueueCapacity),
		MinImageWidth:        intOr(fc.MinImageWidth, DefaultMinImageWidth),
		MinImageHeight:       intOr(fc.MinImageHeight, DefaultMinImageHeight),
		IdleRescanInterval:   seconds(floatOr(fc.IdleRescanInterval, DefaultIdleRescanSeconds)),
		StatusPort:           stringOr(fc.StatusPort, ""),
		TerminalInput:        defaultTerminalInputEnable,
		WindowTitle:          stringOr(fc.WindowTitle, DefaultWindowTitle),
		MQTTBroker:           stringOr(fc.MQTTBroker, ""),
		MQTTTopic:            stringOr(fc.MQTTTopic, DefaultMQTTTopic),
	}
	if fc.TerminalInput != nil {
		config.TerminalInput = *fc.TerminalInput
	}
	if raw := getenv("TERMINAL_INPUT"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			config.TerminalInput = v
		} else {
			logging.Warn("Invalid boolean value for TERMINAL_INPUT: %q, using %v", raw, config.TerminalInput)
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	var problems []string
	if c.SlideDuration <= 0 {
		problems = append(problems, "slide_duration must be positive")
	}
	if c.AnnouncementDuration <= 0 {
		problems = append(problems, "announcement_duration must be positive")
	}
	if c.FadeDuration < 0 || c.VideoFadeIn < 0 || c.VideoFadeOut < 0 {
		problems = append(problems, "fade durations must not be negative")
	}
	if c.QueueCapacity < 1 {
		problems = append(problems, "queue_capacity must be at least 1")
	}
	if c.MinImageWidth < 0 || c.MinImageHeight < 0 {
		problems = append(problems, "minimum image size must not be negative")
	}
	if c.IdleRescanInterval <= 0 {
		problems = append(problems, "idle_rescan_interval must be positive")
	}
	if c.StatusPort != "" {
		if port, err := strconv.Atoi(c.StatusPort); err != nil || port < 1 || port > 65535 {
			problems = append(problems, fmt.Sprintf("status_port %q is not a valid port", c.StatusPort))
		}
	}
	if c.MQTTBroker != "" && !strings.Contains(c.MQTTBroker, "://") {
		problems = append(problems, fmt.Sprintf("mqtt_broker %q must be a URL such as tcp://host:1883", c.MQTTBroker))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrFatalConfig, strings.Join(problems, "; "))
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
