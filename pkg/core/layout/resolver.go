package layout

import (
	"slices"

	"github.com/matzehuels/plotmap/pkg/core/parcel"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// Identities is the identity set a resolver must cover.
// *parcel.Registry satisfies it.
type Identities interface {
	IDs() []int
}

// Placement locates a parcel within its sector.
type Placement struct {
	Sector string `json:"sector" yaml:"sector"`
	Index  int    `json:"index" yaml:"index"`
}

type slot struct {
	cell   Cell
	place  Placement
	placed bool
}

// Resolver is the precomputed identity → cell table.
// It is immutable after construction and safe for concurrent reads.
type Resolver struct {
	slots   []slot // indexed by identity
	ids     []int
	sectors []Sector
	bounds  Cell
}

// New builds the cell table for every identity in ids from sectors.
//
// It fails with LAYOUT_INVALID when an identity is assigned twice, when a
// sector names an identity that is not registered, when a registered identity
// is missing from every sector, or when two cells overlap.
func New(ids Identities, sectors []Sector) (*Resolver, error) {
	want := ids.IDs()
	if len(want) == 0 {
		return nil, perrors.New(perrors.ErrCodeLayoutInvalid, "no identities to place")
	}
	for _, id := range want {
		if id < 1 {
			return nil, perrors.New(perrors.ErrCodeLayoutInvalid, "identity %d is not positive", id)
		}
	}
	maxID := slices.Max(want)
	registered := make([]bool, maxID+1)
	for _, id := range want {
		registered[id] = true
	}

	r := &Resolver{
		slots:   make([]slot, maxID+1),
		ids:     slices.Sorted(slices.Values(want)),
		sectors: cloneSectors(sectors),
	}
	first := true
	for _, s := range r.sectors {
		for k, id := range s.IDs {
			if id < 1 || id > maxID || !registered[id] {
				return nil, perrors.New(perrors.ErrCodeLayoutInvalid, "sector %q places unregistered identity %d", s.Name, id)
			}
			if r.slots[id].placed {
				return nil, perrors.New(perrors.ErrCodeLayoutInvalid,
					"identity %d placed twice (%q and %q)", id, r.slots[id].place.Sector, s.Name)
			}
			c := s.Cell(k)
			r.slots[id] = slot{cell: c, place: Placement{Sector: s.Name, Index: k}, placed: true}
			if first {
				r.bounds, first = c, false
			} else {
				r.bounds = r.bounds.Union(c)
			}
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Default builds the resolver for the default registry and sectors.
// It panics if the built-in plan is inconsistent.
func Default(reg *parcel.Registry) *Resolver {
	r, err := New(reg, DefaultSectors())
	if err != nil {
		panic(err)
	}
	return r
}

// Validate re-checks partition completeness and the no-overlap property.
func (r *Resolver) Validate() error {
	for _, id := range r.ids {
		if !r.slots[id].placed {
			return perrors.New(perrors.ErrCodeLayoutInvalid, "identity %d is not placed in any sector", id)
		}
	}
	for i, a := range r.ids {
		ca := r.slots[a].cell
		for _, b := range r.ids[i+1:] {
			if ca.Overlaps(r.slots[b].cell) {
				return perrors.New(perrors.ErrCodeLayoutInvalid, "cells of %d and %d overlap", a, b)
			}
		}
	}
	return nil
}

// Resolve returns the cell of id. Unknown identities yield PARCEL_NOT_FOUND.
func (r *Resolver) Resolve(id int) (Cell, error) {
	if id < 1 || id >= len(r.slots) || !r.slots[id].placed {
		return Cell{}, perrors.New(perrors.ErrCodeParcelNotFound, "no cell for parcel %d", id)
	}
	return r.slots[id].cell, nil
}

// Placement returns the sector and step index of id.
func (r *Resolver) Placement(id int) (Placement, bool) {
	if id < 1 || id >= len(r.slots) || !r.slots[id].placed {
		return Placement{}, false
	}
	return r.slots[id].place, true
}

// IDs returns every placed identity in ascending order.
func (r *Resolver) IDs() []int { return slices.Clone(r.ids) }

// Sectors returns a copy of the sectors the resolver was built from.
func (r *Resolver) Sectors() []Sector { return cloneSectors(r.sectors) }

// Bounds returns the rectangle covering every cell.
func (r *Resolver) Bounds() Cell { return r.bounds }

// HitTest returns the parcel whose cell contains the site point (x, y).
func (r *Resolver) HitTest(x, y float64) (int, bool) {
	for _, s := range r.sectors {
		if !s.Bounds().Contains(x, y) {
			continue
		}
		if k := s.indexAt(x, y); k >= 0 {
			return s.IDs[k], true
		}
	}
	return 0, false
}

func cloneSectors(in []Sector) []Sector {
	out := make([]Sector, len(in))
	for i, s := range in {
		s.IDs = slices.Clone(s.IDs)
		out[i] = s
	}
	return out
}
