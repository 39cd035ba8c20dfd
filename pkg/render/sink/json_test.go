package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
)

func TestNewDocument(t *testing.T) {
	reg := parcel.Default()
	doc := NewDocument(reg, layout.Default(reg))

	if len(doc.Parcels) != 109 {
		t.Fatalf("len(Parcels) = %d, want 109", len(doc.Parcels))
	}
	if len(doc.Sectors) != 12 {
		t.Errorf("len(Sectors) = %d, want 12", len(doc.Sectors))
	}
	p40 := doc.Parcels[39]
	if p40.ID != 40 || p40.Sector != "B top-right" || p40.Cell != (layout.Cell{X: 194, Y: 62, W: 53, H: 28}) {
		t.Errorf("parcel 40 = %+v", p40)
	}
	if doc.Palettes["status"]["sold"].Fill != "#e05252" || doc.Palettes["neutral"]["sold"].Fill != "#c8b89a" {
		t.Errorf("palettes = %+v", doc.Palettes)
	}
	if _, ok := doc.Palettes["neutral"]["neutral"]; !ok {
		t.Error("neutral colour missing from palette")
	}
}

func TestRenderJSON(t *testing.T) {
	reg := parcel.Default()
	data, err := RenderJSON(NewDocument(reg, layout.Default(reg)))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var out struct {
		Parcels []map[string]any `json:"parcels"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	first := out.Parcels[0]
	for _, k := range []string{"id", "status", "area_sq_m", "cell", "sector", "index"} {
		if _, ok := first[k]; !ok {
			t.Errorf("parcel JSON missing %q", k)
		}
	}
	if !strings.Contains(string(data), "BOX CRICKET · MULTI PURPOSE COURT") {
		t.Error("site labels missing from JSON")
	}
}

func TestRenderYAML(t *testing.T) {
	reg := parcel.Default()
	data, err := RenderYAML(NewDocument(reg, layout.Default(reg)))
	if err != nil {
		t.Fatalf("RenderYAML: %v", err)
	}

	var out struct {
		Parcels []struct {
			ID     int    `yaml:"id"`
			Status string `yaml:"status"`
			Sector string `yaml:"sector"`
		} `yaml:"parcels"`
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Parcels) != 109 || out.Parcels[4].Status != "builder" {
		t.Errorf("parcels = %d, #5 status %q", len(out.Parcels), out.Parcels[4].Status)
	}
}
