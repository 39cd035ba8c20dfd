package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load(missing) = %v", err)
	}
	if cfg.Animation.Stagger.Duration != 14*time.Millisecond {
		t.Errorf("stagger = %v", cfg.Animation.Stagger)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[view]
max_zoom = 8.0

[view.north_up]
perspective = 1000
rotate_x = 45
rotate_z = -60
scale = 0.8

[animation]
stagger = "20ms"

[server]
addr = "127.0.0.1:9000"
idle_timeout = "90s"

[cache]
redis_addr = "localhost:6379"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.View.MaxZoom != 8 || cfg.View.MinZoom != 0.3 {
		t.Errorf("zoom bounds = %v..%v", cfg.View.MinZoom, cfg.View.MaxZoom)
	}
	if cfg.View.NorthUp.Distance != 1000 || cfg.View.NorthUp.Scale != 0.8 {
		t.Errorf("north_up = %+v", cfg.View.NorthUp)
	}
	if cfg.Animation.Stagger.Duration != 20*time.Millisecond {
		t.Errorf("stagger = %v", cfg.Animation.Stagger)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.IdleTimeout.Duration != 90*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("redis = %q", cfg.Cache.RedisAddr)
	}
	if cfg.LogLevel().String() != "debug" {
		t.Errorf("level = %s", cfg.LogLevel())
	}
	if got := cfg.ViewStack(); got.MaxZoom != 8 {
		t.Errorf("ViewStack().MaxZoom = %v", got.MaxZoom)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[view\nmin_zoom = 1"},
		{"unknown key", "[view]\nzoomiest = 3"},
		{"inverted zoom", "[view]\nmin_zoom = 4.0\nmax_zoom = 2.0"},
		{"zero min zoom", "[view]\nmin_zoom = 0.0"},
		{"zoom in below one", "[view]\nzoom_in = 0.9"},
		{"zoom out above one", "[view]\nzoom_out = 1.2"},
		{"bad duration", "[animation]\nstagger = \"soon\""},
		{"zero stagger", "[animation]\nstagger = \"0s\""},
		{"bad level", "[log]\nlevel = \"loud\""},
		{"zero tilted scale", "[view.tilted]\nscale = 0.0"},
		{"negative north-up scale", "[view.north_up]\nscale = -0.5"},
		{"zero perspective", "[view.tilted]\nperspective = 0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := Parse([]byte(tt.data), &cfg); err == nil {
				t.Errorf("Parse(%q) expected error", tt.data)
			}
		})
	}
}

func TestValidateTilt(t *testing.T) {
	cfg := Default()
	cfg.View.Tilted.Scale = 0
	err := cfg.Validate()
	if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Fatalf("Validate = %v, want INVALID_CONFIG", err)
	}
	if !strings.Contains(err.Error(), "view.tilted") {
		t.Errorf("error %q should name the section", err)
	}
}

func TestLoadWrapsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[view]\nmin_zoom = -1.0"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Errorf("Load = %v, want INVALID_CONFIG", err)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	if p, _ := DefaultPath(); p != "/tmp/xdg-config/plotmap/config.toml" {
		t.Errorf("DefaultPath() = %s", p)
	}
	if d, _ := Default().CacheDir(); d != "/tmp/xdg-cache/plotmap" {
		t.Errorf("CacheDir() = %s", d)
	}
	cfg := Default()
	cfg.Cache.Dir = "/srv/cache"
	if d, _ := cfg.CacheDir(); d != "/srv/cache" {
		t.Errorf("CacheDir() with override = %s", d)
	}
}
