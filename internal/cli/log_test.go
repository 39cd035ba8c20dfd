package cli

import (
	"bytes"
	"io"
	"regexp"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggerLevelFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		verbose bool
		want    log.Level
	}{
		{"default", "", false, log.InfoLevel},
		{"configured debug", "[log]\nlevel = \"debug\"\n", false, log.DebugLevel},
		{"configured warn", "[log]\nlevel = \"warn\"\n", false, log.WarnLevel},
		{"verbose wins", "[log]\nlevel = \"error\"\n", true, log.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			t.Setenv("XDG_CACHE_HOME", t.TempDir())

			c := New(io.Discard, log.InfoLevel)
			c.out = io.Discard
			args := []string{"cache", "path"}
			if tt.config != "" {
				args = append(args, "--config", writeConfig(t, tt.config))
			}
			if tt.verbose {
				args = append(args, "-v")
			}
			root := c.RootCommand()
			root.SetArgs(args)
			if err := root.Execute(); err != nil {
				t.Fatal(err)
			}
			if got := c.Logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Exported layout as yaml")

	if !regexp.MustCompile(`Exported layout as yaml \(\d+(\.\d+)?(ns|µs|ms|s)\)`).Match(buf.Bytes()) {
		t.Errorf("output %q lacks message with elapsed time", buf.String())
	}
}

func TestProgressHiddenBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.WarnLevel)).done("Rendered svg")
	if buf.Len() != 0 {
		t.Errorf("info progress should be filtered at warn level, got %q", buf.String())
	}
}
