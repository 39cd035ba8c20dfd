package sink

import (
	"bytes"
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/render/styles"
)

// Document is the exported site plan: every parcel with its cell, the
// sectors it is sequenced in, and the static features.
type Document struct {
	Width    float64                             `json:"width" yaml:"width"`
	Height   float64                             `json:"height" yaml:"height"`
	Sectors  []DocumentSector                    `json:"sectors" yaml:"sectors"`
	Parcels  []DocumentParcel                    `json:"parcels" yaml:"parcels"`
	Site     layout.Site                         `json:"site" yaml:"site"`
	Palettes map[string]map[string]styles.Colors `json:"palettes" yaml:"palettes"`
	Legend   []styles.LegendEntry                `json:"legend" yaml:"legend"`
}

// DocumentSector is one sector of the plan.
type DocumentSector struct {
	Name   string      `json:"name" yaml:"name"`
	Axis   string      `json:"axis" yaml:"axis"`
	Bounds layout.Cell `json:"bounds" yaml:"bounds"`
	IDs    []int       `json:"ids" yaml:"ids"`
}

// DocumentParcel is a parcel with its placement.
type DocumentParcel struct {
	parcel.Parcel `yaml:",inline"`
	Cell          layout.Cell `json:"cell" yaml:"cell"`
	Sector        string      `json:"sector" yaml:"sector"`
	Index         int         `json:"index" yaml:"index"`
}

// NewDocument builds the layout document of a registry placed by res.
func NewDocument(reg *parcel.Registry, res *layout.Resolver) Document {
	doc := Document{
		Width:  layout.CanvasW,
		Height: layout.CanvasH,
		Site:   res.Site(),
		Legend: styles.Legend(),
		Palettes: map[string]map[string]styles.Colors{
			"neutral": palette(false),
			"status":  palette(true),
		},
	}
	for _, s := range res.Sectors() {
		axis := "down"
		if s.Axis == layout.Across {
			axis = "across"
		}
		doc.Sectors = append(doc.Sectors, DocumentSector{Name: s.Name, Axis: axis, Bounds: s.Bounds(), IDs: s.IDs})
	}
	for _, p := range reg.All() {
		cell, err := res.Resolve(p.ID)
		if err != nil {
			continue
		}
		dp := DocumentParcel{Parcel: p, Cell: cell}
		if pl, ok := res.Placement(p.ID); ok {
			dp.Sector, dp.Index = pl.Sector, pl.Index
		}
		doc.Parcels = append(doc.Parcels, dp)
	}
	return doc
}

func palette(statusOn bool) map[string]styles.Colors {
	out := make(map[string]styles.Colors, len(parcel.Statuses)+1)
	for _, st := range append(slices.Clone(parcel.Statuses), parcel.Neutral) {
		out[string(st)] = styles.For(st, statusOn)
	}
	return out
}

// RenderJSON encodes v as indented JSON.
func RenderJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderYAML encodes v as YAML.
func RenderYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
