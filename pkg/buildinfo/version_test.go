package buildinfo

import (
	"strings"
	"testing"
)

func TestServerHeader(t *testing.T) {
	oldV, oldC := Version, Commit
	defer func() { Version, Commit = oldV, oldC }()

	Version, Commit = "v1.2.3", "0123456789abcdef"
	if got := ServerHeader(); got != "plotmap/v1.2.3 (0123456)" {
		t.Errorf("ServerHeader() = %q", got)
	}
	Commit = "none"
	if got := ServerHeader(); got != "plotmap/v1.2.3 (none)" {
		t.Errorf("ServerHeader() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.Contains(String(), "commit: ") {
		t.Errorf("String() = %q", String())
	}
}
