// Package config loads runtime configuration for gazewaldo.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/frudas24/gazewaldo/internal/frame"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Tracker bridge policies for a second connection.
const (
	PolicyReplace = "replace"
	PolicyReject  = "reject"
)

// Config holds runtime configuration values.
type Config struct {
	ListenAddr string        `mapstructure:"listen_addr"`
	DataDir    string        `mapstructure:"data_dir"`
	ScenesPath string        `mapstructure:"scenes_path"`
	Display    DisplayConfig `mapstructure:"display"`
	Surface    SurfaceConfig `mapstructure:"surface"`
	Frame      FrameConfig   `mapstructure:"frame"`
	Tracker    TrackerConfig `mapstructure:"tracker"`
	Dwell      DwellConfig   `mapstructure:"dwell"`
	Game       GameConfig    `mapstructure:"game"`
	Cursor     CursorConfig  `mapstructure:"cursor"`
	Preview    PreviewConfig `mapstructure:"preview"`
	Log        LogConfig     `mapstructure:"log"`
}

// DisplayConfig describes the physical screen the tracker reports against.
type DisplayConfig struct {
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`
	DPIX   float64 `mapstructure:"dpi_x"`
	DPIY   float64 `mapstructure:"dpi_y"`
	Index  int     `mapstructure:"index"`
}

// SurfaceConfig is the logical drawing surface size.
type SurfaceConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// FrameConfig controls the render loop.
type FrameConfig struct {
	FPS int `mapstructure:"fps"`
}

// TrackerConfig controls the tracker bridge.
type TrackerConfig struct {
	RateHz float64 `mapstructure:"rate_hz"`
	Policy string  `mapstructure:"policy"`
}

// DwellConfig tunes activation timing.
type DwellConfig struct {
	ActivationMs int  `mapstructure:"activation_ms"`
	GraceMs      int  `mapstructure:"grace_ms"`
	SingleFire   bool `mapstructure:"single_fire"`
}

// GameConfig tunes a play round.
type GameConfig struct {
	WinMs        int `mapstructure:"win_ms"`
	RoundSeconds int `mapstructure:"round_seconds"`
}

// CursorConfig controls OS cursor following.
type CursorConfig struct {
	Follow bool `mapstructure:"follow"`
}

// PreviewConfig controls the MJPEG preview stream.
type PreviewConfig struct {
	IntervalMs int `mapstructure:"interval_ms"`
	Quality    int `mapstructure:"quality"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Dir   string `mapstructure:"dir"`
	Debug bool   `mapstructure:"debug"`
}

// Activation returns the dwell activation threshold.
func (d DwellConfig) Activation() time.Duration {
	return time.Duration(d.ActivationMs) * time.Millisecond
}

// Grace returns the dwell leaving grace period.
func (d DwellConfig) Grace() time.Duration {
	return time.Duration(d.GraceMs) * time.Millisecond
}

// Win returns the look time needed to win a round.
func (g GameConfig) Win() time.Duration {
	return time.Duration(g.WinMs) * time.Millisecond
}

// Round returns the round countdown length.
func (g GameConfig) Round() time.Duration {
	return time.Duration(g.RoundSeconds) * time.Second
}

// Interval returns the preview frame interval.
func (p PreviewConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", "0.0.0.0:8790")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("scenes_path", filepath.Join("data", "scenes", "scenes.json"))

	v.SetDefault("display.width", 1920)
	v.SetDefault("display.height", 1080)
	v.SetDefault("display.dpi_x", 96.0)
	v.SetDefault("display.dpi_y", 96.0)
	v.SetDefault("display.index", 1)

	v.SetDefault("surface.width", 1280)
	v.SetDefault("surface.height", 720)

	v.SetDefault("frame.fps", 30)

	v.SetDefault("tracker.rate_hz", 125.0)
	v.SetDefault("tracker.policy", PolicyReplace)

	v.SetDefault("dwell.activation_ms", 1000)
	v.SetDefault("dwell.grace_ms", 250)
	v.SetDefault("dwell.single_fire", true)

	v.SetDefault("game.win_ms", 3000)
	v.SetDefault("game.round_seconds", 120)

	v.SetDefault("cursor.follow", false)

	v.SetDefault("preview.interval_ms", 100)
	v.SetDefault("preview.quality", 60)

	v.SetDefault("log.dir", "")
	v.SetDefault("log.debug", false)
}

// Loader reads configuration from file and environment and can watch for changes.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader searching dataDir for config.yaml.
func NewLoader(dataDir string) *Loader {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dataDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("GAZE") // e.g. GAZE_DWELL_GRACE_MS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// SetConfigFile points the loader at an explicit file.
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
}

// Load reads the config file if present and returns the validated config.
func (l *Loader) Load() (Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return l.decode()
}

// Watch reloads the config on file changes and calls onChange with valid results.
func (l *Loader) Watch(log *zap.Logger, onChange func(Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("configuration file changed, reloading", zap.String("file", e.Name))
		cfg, err := l.decode()
		if err != nil {
			log.Error("reload configuration", zap.Error(err))
			return
		}
		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}

// decode unmarshals and validates the current viper state.
func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Tracker.Policy = normalizePolicy(cfg.Tracker.Policy)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads configuration from ./data/config.yaml and GAZE_* environment variables.
func Load() (Config, error) {
	return NewLoader("./data").Load()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Display.Width <= 0 || c.Display.Height <= 0:
		return fmt.Errorf("display size must be > 0")
	case c.Display.DPIX <= 0 || c.Display.DPIY <= 0:
		return fmt.Errorf("display dpi must be > 0")
	case c.Surface.Width <= 0 || c.Surface.Height <= 0:
		return fmt.Errorf("surface size must be > 0")
	case c.Frame.FPS <= 0 || c.Frame.FPS > frame.MaxFPS:
		return fmt.Errorf("frame.fps must be 1-%d", frame.MaxFPS)
	case c.Tracker.RateHz <= 0:
		return fmt.Errorf("tracker.rate_hz must be > 0")
	case c.Dwell.ActivationMs <= 0:
		return fmt.Errorf("dwell.activation_ms must be > 0")
	case c.Dwell.GraceMs < 0:
		return fmt.Errorf("dwell.grace_ms must be >= 0")
	case c.Game.WinMs <= 0:
		return fmt.Errorf("game.win_ms must be > 0")
	case c.Game.RoundSeconds <= 0:
		return fmt.Errorf("game.round_seconds must be > 0")
	case c.Preview.IntervalMs <= 0:
		return fmt.Errorf("preview.interval_ms must be > 0")
	case c.Preview.Quality <= 0 || c.Preview.Quality > 100:
		return fmt.Errorf("preview.quality must be 1-100")
	}
	return nil
}

// normalizePolicy ensures a supported tracker policy value.
func normalizePolicy(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case PolicyReject:
		return PolicyReject
	default:
		return PolicyReplace
	}
}
