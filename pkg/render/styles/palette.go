// Package styles holds the colours of the site plan.
//
// Parcels use one of two palettes. With the status view off every sold and
// neutral parcel is beige; with it on, sold parcels turn red. Available and
// builder parcels look the same in both.
package styles

import (
	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
)

// Colors is the fill, outline and label colour of one parcel.
type Colors struct {
	Fill   string `json:"fill" yaml:"fill"`
	Stroke string `json:"stroke" yaml:"stroke"`
	Text   string `json:"text" yaml:"text"`
}

var (
	blue  = Colors{Fill: "#4a9fd4", Stroke: "#2980b9", Text: "#fff"}
	beige = Colors{Fill: "#c8b89a", Stroke: "#9a8060", Text: "#333"}
	gold  = Colors{Fill: "#d4a017", Stroke: "#b8860b", Text: "#fff"}
	red   = Colors{Fill: "#e05252", Stroke: "#c0392b", Text: "#fff"}
)

var (
	neutralPalette = map[parcel.Status]Colors{
		parcel.Available: blue,
		parcel.Sold:      beige,
		parcel.Builder:   gold,
		parcel.Neutral:   beige,
	}
	statusPalette = map[parcel.Status]Colors{
		parcel.Available: blue,
		parcel.Sold:      red,
		parcel.Builder:   gold,
		parcel.Neutral:   beige,
	}
)

// For returns the colours of a parcel showing st.
func For(st parcel.Status, statusOn bool) Colors {
	p := neutralPalette
	if statusOn {
		p = statusPalette
	}
	if c, ok := p[st]; ok {
		return c
	}
	return beige
}

// Emphasis strokes.
const (
	SelectedStroke = "#ffffff"
	MatchedStroke  = "#ffffffcc"
	DimmedOpacity  = 0.12

	Background = "#111111"
	RoadText   = "#555555"
	Annotation = "#eeeeee"
)

// FeatureFill returns the fill of a static site feature.
func FeatureFill(k layout.FeatureKind) string {
	switch k {
	case layout.FeatureLawn:
		return "#1e3c1e"
	case layout.FeatureSlab:
		return "#1a1a1a"
	case layout.FeatureAmenity:
		return "#202020"
	case layout.FeaturePlayground:
		return "#252525"
	case layout.FeatureAllotted:
		return "#5a4010"
	case layout.FeatureClub:
		return "#3a5a1a"
	case layout.FeaturePartyPlot:
		return "#2a4a2a"
	case layout.FeatureCourt:
		return "#1e2e1e"
	case layout.FeatureRoad:
		return "#161616"
	case layout.FeaturePark:
		return "#1a3a1a"
	case layout.FeatureGate:
		return "#2255aa"
	}
	return "#202020"
}

// FeatureText returns the label colour of a static site feature.
func FeatureText(k layout.FeatureKind) string {
	switch k {
	case layout.FeatureAllotted:
		return "#d4a050"
	case layout.FeatureClub:
		return "#8acc50"
	case layout.FeaturePartyPlot:
		return "#6aaa5a"
	case layout.FeatureCourt:
		return "#4a8a4a"
	}
	return RoadText
}

// LegendEntry is one row of the status legend.
type LegendEntry struct {
	Status parcel.Status `json:"status" yaml:"status"`
	Label  string        `json:"label" yaml:"label"`
	Colors Colors        `json:"colors" yaml:"colors"`
}

// Legend returns the legend rows shown while the status view is on.
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, 3)
	for _, st := range []parcel.Status{parcel.Available, parcel.Sold, parcel.Builder} {
		out = append(out, LegendEntry{Status: st, Label: st.Label(), Colors: For(st, true)})
	}
	return out
}
