package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// runCLI executes the root command with args in an isolated home and
// returns what the command wrote to its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return execute(t, args...)
}

// execute runs the root command against the caller's XDG_CACHE_HOME.
// The user's config file is never read.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	c := New(io.Discard, log.InfoLevel)
	c.out = &out

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParcelsCommand(t *testing.T) {
	out, err := runCLI(t, "parcels")
	if err != nil {
		t.Fatalf("parcels: %v", err)
	}
	for _, want := range []string{"Plot", "Status", "109 parcels", "builder"} {
		if !strings.Contains(out, want) {
			t.Errorf("parcels output missing %q", want)
		}
	}
}

func TestParcelsCommandFilter(t *testing.T) {
	out, err := runCLI(t, "parcels", "--status", "builder")
	if err != nil {
		t.Fatalf("parcels --status builder: %v", err)
	}
	if !strings.Contains(out, " 40 ") {
		t.Errorf("builder listing does not contain plot 40:\n%s", out)
	}
	if strings.Contains(out, "available ") {
		t.Errorf("builder listing contains available parcels:\n%s", out)
	}

	_, err = runCLI(t, "parcels", "--status", "reserved")
	if !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("unknown status error = %v, want INVALID_INPUT", err)
	}
}

func TestParcelCommand(t *testing.T) {
	out, err := runCLI(t, "parcel", "40")
	if err != nil {
		t.Fatalf("parcel 40: %v", err)
	}
	for _, want := range []string{"Plot #40", "Builder", "sector", "cell"} {
		if !strings.Contains(out, want) {
			t.Errorf("parcel 40 output missing %q:\n%s", want, out)
		}
	}

	tests := []struct {
		arg  string
		code perrors.Code
	}{
		{"999", perrors.ErrCodeParcelNotFound},
		{"abc", perrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		_, err := runCLI(t, "parcel", tt.arg)
		if !perrors.Is(err, tt.code) {
			t.Errorf("parcel %s error = %v, want %s", tt.arg, err, tt.code)
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	out, err := runCLI(t, "layout", "--no-cache")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	var doc struct {
		Width   float64           `json:"width"`
		Parcels []json.RawMessage `json:"parcels"`
		Sectors []json.RawMessage `json:"sectors"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("layout output is not JSON: %v", err)
	}
	if len(doc.Parcels) != 109 || len(doc.Sectors) == 0 || doc.Width == 0 {
		t.Errorf("layout = %d parcels, %d sectors, width %g", len(doc.Parcels), len(doc.Sectors), doc.Width)
	}

	dot, err := runCLI(t, "layout", "-f", "dot", "--no-cache")
	if err != nil {
		t.Fatalf("layout -f dot: %v", err)
	}
	if !strings.HasPrefix(dot, "digraph") {
		t.Errorf("dot export starts with %.20q", dot)
	}

	if _, err := runCLI(t, "layout", "-f", "gif"); !perrors.Is(err, perrors.ErrCodeInvalidFormat) {
		t.Errorf("layout -f gif error = %v, want INVALID_FORMAT", err)
	}
}

func TestLayoutCommandOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	out, err := runCLI(t, "layout", "-f", "yaml", "-o", path)
	if err != nil {
		t.Fatalf("layout -o: %v", err)
	}
	if out != "" {
		t.Errorf("layout -o wrote to output: %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("parcels:")) {
		t.Errorf("yaml export missing parcels key")
	}
}

func TestRenderCommand(t *testing.T) {
	base := filepath.Join(t.TempDir(), "snap")
	_, err := runCLI(t, "render", "--no-cache", "-f", "svg,json", "-o", base,
		"--status-view", "--select", "40", "--mode", "north-up")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("svg output is not an SVG document")
	}

	raw, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	var snap struct {
		Selected   int  `json:"selected"`
		StatusView bool `json:"status_view"`
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if snap.Selected != 40 || !snap.StatusView {
		t.Errorf("snapshot = %+v, want plot 40 selected with status view on", snap)
	}
}

func TestRenderCommandRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", "-f", "gif"}},
		{"bad pan", []string{"render", "--pan", "1"}},
		{"bad viewport", []string{"render", "--viewport", "0x10"}},
		{"bad mode", []string{"render", "--no-cache", "--mode", "sideways"}},
		{"unknown parcel", []string{"render", "--no-cache", "--select", "500"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Errorf("%v succeeded, want error", tt.args)
			}
		})
	}
}

func TestConfigErrors(t *testing.T) {
	cfg := writeConfig(t, "[view]\nmin_zoom = -1\n")
	_, err := runCLI(t, "--config", cfg, "parcels")
	if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Errorf("invalid config error = %v, want INVALID_CONFIG", err)
	}

	missing := filepath.Join(t.TempDir(), "absent.toml")
	if _, err := runCLI(t, "--config", missing, "parcels"); err != nil {
		t.Errorf("missing config file: %v", err)
	}
}
