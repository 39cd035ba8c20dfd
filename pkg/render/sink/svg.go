package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/selection"
	"github.com/matzehuels/plotmap/pkg/core/view"
	"github.com/matzehuels/plotmap/pkg/engine"
	"github.com/matzehuels/plotmap/pkg/render/styles"
)

const parcelCSS = `
    .parcel { cursor: pointer; transition: fill 0.3s ease; }
    .label { pointer-events: none; user-select: none; font-family: 'Segoe UI', system-ui, sans-serif; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	site      layout.Site
	projected bool
	legend    bool
}

// WithSite replaces the static features drawn around the parcels.
func WithSite(s layout.Site) SVGOption { return func(r *svgRenderer) { r.site = s } }

// WithProjection draws through the snapshot's screen transform.
func WithProjection() SVGOption { return func(r *svgRenderer) { r.projected = true } }

// WithoutLegend hides the status legend.
func WithoutLegend() SVGOption { return func(r *svgRenderer) { r.legend = false } }

// RenderSVG draws a snapshot.
func RenderSVG(snap engine.Snapshot, opts ...SVGOption) []byte {
	r := svgRenderer{site: layout.DefaultSite(), legend: true}
	for _, opt := range opts {
		opt(&r)
	}

	frame := frameSize(snap, r.projected)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(frame.W), num(frame.H), num(frame.W), num(frame.H))
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", parcelCSS)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", styles.Background)

	c := canvas{buf: &buf, t: snap.Transform, projected: r.projected, zoom: 1}
	if r.projected && snap.View.Zoom > 0 {
		c.zoom = snap.View.Zoom
	}

	renderSite(&c, r.site)

	var selected *engine.ParcelView
	for i := range snap.Parcels {
		pv := &snap.Parcels[i]
		if pv.Emphasis == selection.Selected {
			selected = pv
			continue
		}
		renderParcel(&c, *pv, snap.StatusView)
	}
	if selected != nil {
		renderParcel(&c, *selected, snap.StatusView)
		renderAnnotations(&c, *selected)
	}

	if r.legend && snap.StatusView {
		renderLegend(&buf)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func frameSize(snap engine.Snapshot, projected bool) view.Size {
	if projected && snap.Viewport.W > 0 && snap.Viewport.H > 0 {
		return snap.Viewport
	}
	if snap.Content.W > 0 && snap.Content.H > 0 {
		return snap.Content
	}
	return engine.Content
}

func renderSite(c *canvas, site layout.Site) {
	for _, f := range site.Features {
		c.rect(f.Rect, 3, fmt.Sprintf(`class="feature %s" fill="%s"`, f.Kind, styles.FeatureFill(f.Kind)))
		if f.Label == "" || f.Kind == layout.FeatureCourt {
			continue
		}
		size := 8.0
		if f.Kind == layout.FeatureAllotted {
			size = 5.5
		}
		c.text(f.Rect.CenterX(), f.Rect.CenterY()+size/3, size, 0,
			fmt.Sprintf(`fill="%s" font-weight="700"`, styles.FeatureText(f.Kind)), f.Label)
	}
	for _, l := range site.Labels {
		c.text(l.X, l.Y, l.Size, l.Rotate, fmt.Sprintf(`fill="%s"`, styles.RoadText), l.Text)
	}
}

func renderParcel(c *canvas, pv engine.ParcelView, statusOn bool) {
	col := styles.For(pv.Displayed, statusOn)

	stroke, width, dash := col.Stroke, 0.6, ""
	switch pv.Emphasis {
	case selection.Selected:
		stroke, width, dash = styles.SelectedStroke, 2, ` stroke-dasharray="4,2"`
	case selection.Matched:
		stroke = styles.MatchedStroke
	}
	opacity := ""
	if pv.Emphasis == selection.Dimmed {
		opacity = fmt.Sprintf(` fill-opacity="%s"`, num(styles.DimmedOpacity))
	}

	c.rect(pv.Cell, 3, fmt.Sprintf(`id="parcel-%d" class="parcel %s" data-status="%s" fill="%s"%s stroke="%s" stroke-width="%s"%s`,
		pv.ID, pv.Emphasis, pv.Displayed, col.Fill, opacity, stroke, num(width), dash))

	if pv.Emphasis == selection.Dimmed || pv.Emphasis == selection.Selected {
		return
	}
	c.text(pv.Cell.CenterX(), pv.Cell.CenterY()+4, 9, 0,
		fmt.Sprintf(`fill="%s" font-weight="600"`, col.Text), strconv.Itoa(pv.ID))
}

// renderAnnotations draws the dimension lines and area text of the selected
// parcel.
func renderAnnotations(c *canvas, pv engine.ParcelView) {
	cell := pv.Cell
	line := fmt.Sprintf(`stroke="%s" stroke-width="0.8" stroke-dasharray="3,2"`, "#fff")
	note := fmt.Sprintf(`fill="%s"`, styles.Annotation)

	c.line(cell.X, cell.Y-5, cell.Right(), cell.Y-5, line)
	c.text(cell.CenterX(), cell.Y-8, 7, 0, note, num(pv.LengthM)+"m")
	c.line(cell.X-5, cell.Y, cell.X-5, cell.Bottom(), line)
	c.text(cell.X-10, cell.CenterY()+3, 7, -90, note, num(pv.WidthM)+"m")

	c.text(cell.CenterX(), cell.CenterY()+1, 8, 0, `fill="#fff" font-weight="700"`, strconv.Itoa(pv.ID))
	c.text(cell.CenterX(), cell.CenterY()+10, 6, 0, `fill="#ddd"`,
		num(pv.AreaSqM)+"m² · "+num(pv.AreaSqYd)+"yd²")
}

// renderLegend draws the legend in frame coordinates, unaffected by the
// transform.
func renderLegend(buf *bytes.Buffer) {
	buf.WriteString(`  <g class="legend">` + "\n")
	x := 56.0
	for _, e := range styles.Legend() {
		fmt.Fprintf(buf, `    <rect x="%s" y="10" width="10" height="10" rx="2" fill="%s" stroke="%s"/>`+"\n",
			num(x), e.Colors.Fill, e.Colors.Stroke)
		fmt.Fprintf(buf, `    <text class="label" x="%s" y="19" font-size="9" fill="#ccc">%s</text>`+"\n",
			num(x+14), escape(e.Label))
		x += 80
	}
	buf.WriteString("  </g>\n")
}

// canvas writes shapes in site coordinates, either directly or through a
// screen transform.
type canvas struct {
	buf       *bytes.Buffer
	t         view.Transform
	projected bool
	zoom      float64
}

func (c *canvas) rect(r layout.Cell, rx float64, attrs string) {
	if !c.projected {
		fmt.Fprintf(c.buf, `  <rect x="%s" y="%s" width="%s" height="%s" rx="%s" %s/>`+"\n",
			num(r.X), num(r.Y), num(r.W), num(r.H), num(rx), attrs)
		return
	}
	q, ok := c.t.Quad(r.X, r.Y, r.W, r.H)
	if !ok {
		return
	}
	pts := make([]string, len(q))
	for i, p := range q {
		pts[i] = num(p.X) + "," + num(p.Y)
	}
	fmt.Fprintf(c.buf, `  <polygon points="%s" %s/>`+"\n", strings.Join(pts, " "), attrs)
}

func (c *canvas) line(x1, y1, x2, y2 float64, attrs string) {
	a, b := view.Point{X: x1, Y: y1}, view.Point{X: x2, Y: y2}
	if c.projected {
		var ok1, ok2 bool
		a, ok1 = c.t.Project(a)
		b, ok2 = c.t.Project(b)
		if !ok1 || !ok2 {
			return
		}
	}
	fmt.Fprintf(c.buf, `  <line x1="%s" y1="%s" x2="%s" y2="%s" %s/>`+"\n",
		num(a.X), num(a.Y), num(b.X), num(b.Y), attrs)
}

// text draws centred text. Rotation is only applied in plan coordinates.
func (c *canvas) text(x, y, size, rotate float64, attrs, s string) {
	p := view.Point{X: x, Y: y}
	if c.projected {
		var ok bool
		if p, ok = c.t.Project(p); !ok {
			return
		}
		size *= c.zoom
		rotate = 0
	}
	transform := ""
	if rotate != 0 {
		transform = fmt.Sprintf(` transform="rotate(%s,%s,%s)"`, num(rotate), num(p.X), num(p.Y))
	}
	fmt.Fprintf(c.buf, `  <text class="label" x="%s" y="%s" text-anchor="middle" font-size="%s" %s%s>%s</text>`+"\n",
		num(p.X), num(p.Y), num(size), attrs, transform, escape(s))
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
