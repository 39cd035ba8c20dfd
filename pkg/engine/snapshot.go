package engine

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/plotmap/pkg/core/anim"
	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/core/selection"
	"github.com/matzehuels/plotmap/pkg/core/view"
)

// ParcelView is everything a surface needs to draw one parcel.
type ParcelView struct {
	parcel.Parcel `yaml:",inline"`
	Cell          layout.Cell        `json:"cell" yaml:"cell"`
	Displayed     parcel.Status      `json:"displayed" yaml:"displayed"`
	Emphasis      selection.Emphasis `json:"emphasis" yaml:"emphasis"`
}

// Snapshot is the read model of an engine at one instant.
type Snapshot struct {
	Parcels    []ParcelView   `json:"parcels" yaml:"parcels"`
	View       view.State     `json:"view" yaml:"view"`
	Viewport   view.Size      `json:"viewport" yaml:"viewport"`
	Content    view.Size      `json:"content" yaml:"content"`
	Transform  view.Transform `json:"transform" yaml:"transform"`
	StatusView bool           `json:"status_view" yaml:"status_view"`
	Animating  bool           `json:"animating" yaml:"animating"`
	Phase      anim.Phase     `json:"phase" yaml:"phase"`
	Generation uint64         `json:"generation" yaml:"generation"`
	Selected   int            `json:"selected,omitempty" yaml:"selected,omitempty"`
	Search     string         `json:"search" yaml:"search"`
	Card       *Card          `json:"card,omitempty" yaml:"card,omitempty"`
}

// Snapshot captures the full engine state for a viewport.
func (e *Engine) Snapshot(viewport view.Size) Snapshot {
	ps := e.reg.All()
	out := make([]ParcelView, len(ps))
	for i, p := range ps {
		c, _ := e.res.Resolve(p.ID)
		st, _ := e.seq.Displayed(p.ID)
		out[i] = ParcelView{
			Parcel:    p,
			Cell:      c,
			Displayed: st,
			Emphasis:  e.filter.Emphasis(p.ID),
		}
	}
	snap := Snapshot{
		Parcels:    out,
		View:       e.view.State(),
		Viewport:   viewport,
		Content:    Content,
		Transform:  e.view.Transform(viewport, Content),
		StatusView: e.statusOn,
		Animating:  e.seq.Active(),
		Phase:      e.seq.Phase(),
		Generation: e.seq.Generation(),
		Search:     e.filter.Search(),
	}
	if id, ok := e.filter.Selected(); ok {
		snap.Selected = id
		if card, ok := e.SelectedCard(); ok {
			snap.Card = &card
		}
	}
	return snap
}

// Card is the summary shown for the selected parcel.
type Card struct {
	Number   int           `json:"number" yaml:"number"`
	Title    string        `json:"title" yaml:"title"`
	Status   parcel.Status `json:"status" yaml:"status"`
	Badge    string        `json:"badge" yaml:"badge"`
	Area     string        `json:"area" yaml:"area"`
	AreaSqYd string        `json:"sq_yd" yaml:"sq_yd"`
	Dims     string        `json:"dims" yaml:"dims"`
	Facing   parcel.Facing `json:"facing" yaml:"facing"`
}

// Fields returns the card rows in display order.
func (c Card) Fields() [][2]string {
	return [][2]string{
		{"Area", c.Area},
		{"Sq Yd", c.AreaSqYd},
		{"Dims", c.Dims},
		{"Facing", string(c.Facing)},
	}
}

// NewCard builds the card of p. The badge shows the true status, not the
// animated one.
func NewCard(p parcel.Parcel) Card {
	return Card{
		Number:   p.ID,
		Title:    fmt.Sprintf("Plot #%d", p.ID),
		Status:   p.Status,
		Badge:    p.Status.Label(),
		Area:     num(p.AreaSqM) + " m²",
		AreaSqYd: num(p.AreaSqYd) + " yd²",
		Dims:     num(p.WidthM) + "×" + num(p.LengthM) + "m",
		Facing:   p.Facing,
	}
}

// SelectedCard returns the card of the selected parcel.
func (e *Engine) SelectedCard() (Card, bool) {
	id, ok := e.filter.Selected()
	if !ok {
		return Card{}, false
	}
	p, err := e.reg.Get(id)
	if err != nil {
		return Card{}, false
	}
	return NewCard(p), true
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
