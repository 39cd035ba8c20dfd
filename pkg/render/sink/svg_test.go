package sink

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/plotmap/pkg/core/view"
	"github.com/matzehuels/plotmap/pkg/engine"
)

var viewport = view.Size{W: 800, H: 600}

func wellFormed(t *testing.T, svg []byte) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("malformed SVG: %v", err)
		}
	}
}

func TestRenderSVGPlan(t *testing.T) {
	e := engine.Default()
	svg := string(RenderSVG(e.Snapshot(viewport)))
	wellFormed(t, []byte(svg))

	if !strings.Contains(svg, `viewBox="0 0 660 720"`) {
		t.Error("plan view should use the content size")
	}
	if n := strings.Count(svg, `class="parcel `); n != 109 {
		t.Errorf("drew %d parcels, want 109", n)
	}
	if !strings.Contains(svg, `x="194" y="62" width="53" height="28" rx="3" id="parcel-40"`) {
		t.Error("parcel 40 not at its cell")
	}
	if !strings.Contains(svg, `data-status="neutral" fill="#c8b89a"`) {
		t.Error("parcels should start neutral")
	}
	if strings.Contains(svg, `class="legend"`) {
		t.Error("legend drawn with the status view off")
	}
	if !strings.Contains(svg, "NAKSHATRA NADI RD") {
		t.Error("site labels missing")
	}
}

func TestRenderSVGStatusView(t *testing.T) {
	e := engine.Default()
	e.SetStatusView(true)
	e.FinishAnimation()
	svg := string(RenderSVG(e.Snapshot(viewport)))

	if !strings.Contains(svg, `id="parcel-7" class="parcel normal" data-status="sold" fill="#e05252"`) {
		t.Error("sold parcel 7 should be red with the status view on")
	}
	if !strings.Contains(svg, `id="parcel-40" class="parcel normal" data-status="builder" fill="#d4a017"`) {
		t.Error("builder parcel 40 should be gold")
	}
	if !strings.Contains(svg, `class="legend"`) {
		t.Error("legend missing")
	}
	if strings.Contains(string(RenderSVG(e.Snapshot(viewport), WithoutLegend())), `class="legend"`) {
		t.Error("WithoutLegend still drew the legend")
	}
}

func TestRenderSVGEmphasis(t *testing.T) {
	e := engine.Default()
	if err := e.ClickParcel(40); err != nil {
		t.Fatal(err)
	}
	e.SearchInput("4")
	svg := string(RenderSVG(e.Snapshot(viewport)))
	wellFormed(t, []byte(svg))

	if !strings.Contains(svg, `id="parcel-40" class="parcel selected"`) {
		t.Error("parcel 40 should be selected")
	}
	if !strings.Contains(svg, `stroke="#ffffff" stroke-width="2" stroke-dasharray="4,2"`) {
		t.Error("selected outline missing")
	}
	if !strings.Contains(svg, `id="parcel-14" class="parcel matched"`) || !strings.Contains(svg, `stroke="#ffffffcc"`) {
		t.Error("parcel 14 should match search 4")
	}
	if !strings.Contains(svg, `id="parcel-7" class="parcel dimmed"`) || !strings.Contains(svg, `fill-opacity="0.12"`) {
		t.Error("parcel 7 should be dimmed")
	}
	if strings.Contains(svg, `>7</text>`) {
		t.Error("dimmed parcels must not be labelled")
	}
	if !strings.Contains(svg, "m² · ") {
		t.Error("selected area annotation missing")
	}
	// The selected parcel is painted last.
	if strings.LastIndex(svg, `class="parcel `) != strings.Index(svg, `id="parcel-40"`)+len(`id="parcel-40" `) {
		t.Error("selected parcel should be drawn on top")
	}
}

func TestRenderSVGProjection(t *testing.T) {
	for _, mode := range []view.Mode{view.ModeFlat, view.ModeTilted, view.ModeNorthUp} {
		t.Run(string(mode), func(t *testing.T) {
			e := engine.Default()
			e.SetMode(mode)
			svg := string(RenderSVG(e.Snapshot(viewport), WithProjection()))
			wellFormed(t, []byte(svg))

			if !strings.Contains(svg, `viewBox="0 0 800 600"`) {
				t.Error("projected view should use the viewport size")
			}
			if n := strings.Count(svg, `<polygon points=`); n < 109 {
				t.Errorf("only %d polygons drawn", n)
			}
			if strings.Contains(svg, `<rect x=`) {
				t.Error("projected view should not draw site rectangles")
			}
		})
	}
}
