// Package config loads plotmap settings from a TOML file.
//
// A missing file is not an error: every field has a default and the CLI
// overrides individual values from flags. Durations are written as Go
// duration strings ("14ms", "10m").
//
//	[view]
//	min_zoom = 0.3
//	max_zoom = 5.0
//
//	[animation]
//	stagger = "14ms"
//
//	[server]
//	addr = ":8080"
//	idle_timeout = "10m"
//
//	[cache]
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/plotmap/pkg/core/anim"
	"github.com/matzehuels/plotmap/pkg/core/view"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "plotmap"

// Duration is a time.Duration that reads from TOML strings.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full settings tree.
type Config struct {
	View      ViewConfig      `toml:"view"`
	Animation AnimationConfig `toml:"animation"`
	Server    ServerConfig    `toml:"server"`
	Cache     CacheConfig     `toml:"cache"`
	Log       LogConfig       `toml:"log"`
}

// ViewConfig bounds zoom and sets the tilt parameters.
type ViewConfig struct {
	MinZoom float64   `toml:"min_zoom"`
	MaxZoom float64   `toml:"max_zoom"`
	ZoomIn  float64   `toml:"zoom_in"`
	ZoomOut float64   `toml:"zoom_out"`
	Tilted  view.Tilt `toml:"tilted"`
	NorthUp view.Tilt `toml:"north_up"`
}

// AnimationConfig controls the status sweep.
type AnimationConfig struct {
	Stagger Duration `toml:"stagger"`
}

// ServerConfig controls plotmap serve.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	IdleTimeout Duration `toml:"idle_timeout"`
	MaxSessions int      `toml:"max_sessions"`
}

// CacheConfig selects and tunes the artifact cache.
type CacheConfig struct {
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	v := view.DefaultConfig()
	return Config{
		View: ViewConfig{
			MinZoom: v.MinZoom,
			MaxZoom: v.MaxZoom,
			ZoomIn:  v.ZoomIn,
			ZoomOut: v.ZoomOut,
			Tilted:  v.Tilted,
			NorthUp: v.NorthUp,
		},
		Animation: AnimationConfig{Stagger: Duration{anim.DefaultStagger}},
		Server: ServerConfig{
			Addr:        ":8080",
			IdleTimeout: Duration{10 * time.Minute},
			MaxSessions: 256,
		},
		Cache: CacheConfig{TTL: Duration{24 * time.Hour}},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads path on top of the defaults. A missing file yields the
// defaults; a malformed or invalid file yields INVALID_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "unknown key %s", undec[0])
	}
	return cfg.Validate()
}

// Validate rejects settings no component can work with.
func (c Config) Validate() error {
	v := c.View
	switch {
	case v.MinZoom <= 0:
		return perrors.New(perrors.ErrCodeInvalidConfig, "view.min_zoom must be positive")
	case v.MaxZoom < v.MinZoom:
		return perrors.New(perrors.ErrCodeInvalidConfig, "view.max_zoom %g below min_zoom %g", v.MaxZoom, v.MinZoom)
	case v.ZoomIn <= 1:
		return perrors.New(perrors.ErrCodeInvalidConfig, "view.zoom_in must be greater than 1")
	case v.ZoomOut <= 0 || v.ZoomOut >= 1:
		return perrors.New(perrors.ErrCodeInvalidConfig, "view.zoom_out must be in (0, 1)")
	case c.Animation.Stagger.Duration <= 0:
		return perrors.New(perrors.ErrCodeInvalidConfig, "animation.stagger must be positive")
	case c.Server.IdleTimeout.Duration < 0:
		return perrors.New(perrors.ErrCodeInvalidConfig, "server.idle_timeout must not be negative")
	}
	if err := v.Tilted.Validate(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "view.tilted")
	}
	if err := v.NorthUp.Validate(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "view.north_up")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "log.level")
	}
	return nil
}

// ViewStack converts the [view] section for view.NewStack.
func (c Config) ViewStack() view.Config {
	return view.Config{
		MinZoom: c.View.MinZoom,
		MaxZoom: c.View.MaxZoom,
		ZoomIn:  c.View.ZoomIn,
		ZoomOut: c.View.ZoomOut,
		Tilted:  c.View.Tilted,
		NorthUp: c.View.NorthUp,
	}
}

// LogLevel returns the configured log level.
func (c Config) LogLevel() log.Level {
	l, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// DefaultPath returns $XDG_CONFIG_HOME/plotmap/config.toml
// (~/.config/plotmap/config.toml when unset).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the artifact cache directory: the configured one, or
// $XDG_CACHE_HOME/plotmap (~/.cache/plotmap).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
