package parcel

import (
	"slices"

	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// Spec is the generation rule for a registry.
type Spec struct {
	Count     int   // Parcels are numbered 1..Count
	Available []int // Identities overridden to Available
	Builder   []int // Identities overridden to Builder, applied after Available
}

// DefaultSpec returns the 109-parcel dataset of the site plan.
func DefaultSpec() Spec {
	avail := []int{1, 2, 3, 4, 6, 75, 76, 77, 78}
	for i := 93; i <= 109; i++ {
		avail = append(avail, i)
	}
	return Spec{
		Count:     109,
		Available: avail,
		Builder:   []int{5, 25, 26, 27, 28, 29, 30, 39, 40, 51, 52},
	}
}

// Registry is the immutable parcel table. Index i holds parcel i+1.
type Registry struct {
	parcels []Parcel
}

// Build generates a registry from spec. Exception identities outside
// 1..Count are rejected so that a typo in the dataset fails loudly.
func Build(spec Spec) (*Registry, error) {
	if spec.Count <= 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "parcel count must be positive, got %d", spec.Count)
	}
	ps := make([]Parcel, spec.Count)
	for i := range ps {
		ps[i] = generate(i + 1)
	}
	apply := func(ids []int, st Status) error {
		for _, id := range ids {
			if id < 1 || id > spec.Count {
				return perrors.New(perrors.ErrCodeInvalidInput, "%s exception %d outside 1..%d", st, id, spec.Count)
			}
			ps[id-1].Status = st
		}
		return nil
	}
	if err := apply(spec.Available, Available); err != nil {
		return nil, err
	}
	if err := apply(spec.Builder, Builder); err != nil {
		return nil, err
	}
	return &Registry{parcels: ps}, nil
}

// Default builds the registry from [DefaultSpec].
func Default() *Registry {
	r, err := Build(DefaultSpec())
	if err != nil {
		panic(err)
	}
	return r
}

// All returns every parcel in ascending identity order.
// The returned slice is a copy.
func (r *Registry) All() []Parcel {
	return slices.Clone(r.parcels)
}

// IDs returns every identity in ascending order.
func (r *Registry) IDs() []int {
	ids := make([]int, len(r.parcels))
	for i := range r.parcels {
		ids[i] = r.parcels[i].ID
	}
	return ids
}

// Len returns the number of registered parcels.
func (r *Registry) Len() int { return len(r.parcels) }

// Has reports whether id is registered.
func (r *Registry) Has(id int) bool {
	return id >= 1 && id <= len(r.parcels)
}

// Get returns the parcel with the given identity. Unknown identities yield
// a PARCEL_NOT_FOUND error, never a panic.
func (r *Registry) Get(id int) (Parcel, error) {
	if !r.Has(id) {
		return Parcel{}, perrors.New(perrors.ErrCodeParcelNotFound, "parcel %d not found", id)
	}
	return r.parcels[id-1], nil
}

// Count returns how many parcels have the given true status.
func (r *Registry) Count(st Status) int {
	n := 0
	for i := range r.parcels {
		if r.parcels[i].Status == st {
			n++
		}
	}
	return n
}

// Filter returns the parcels with the given status, in identity order.
func (r *Registry) Filter(st Status) []Parcel {
	var out []Parcel
	for _, p := range r.parcels {
		if p.Status == st {
			out = append(out, p)
		}
	}
	return out
}
