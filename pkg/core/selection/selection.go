// Package selection holds the single-selection state and the numeric search
// filter that decide each parcel's visual emphasis.
//
// The filter never draws anything. It answers two predicates per identity,
// [Filter.Matches] and [Filter.IsDimmed], plus the combined [Filter.Emphasis]
// used by renderers.
package selection

import (
	"strconv"
	"strings"
)

// Emphasis is how strongly a parcel is drawn.
type Emphasis string

const (
	// Normal parcels are drawn with their palette colours.
	Normal Emphasis = "normal"
	// Dimmed parcels do not match an active search.
	Dimmed Emphasis = "dimmed"
	// Matched parcels contain the active search text.
	Matched Emphasis = "matched"
	// Selected is the single selected parcel. It wins over search emphasis.
	Selected Emphasis = "selected"
)

// Filter owns the selected parcel and the search text.
// The zero value has no selection and no search.
type Filter struct {
	selected int
	has      bool
	search   string
}

// Select toggles id: selecting the selected parcel clears the selection,
// selecting another parcel replaces it.
func (f *Filter) Select(id int) {
	if f.has && f.selected == id {
		f.Clear()
		return
	}
	f.selected, f.has = id, true
}

// Clear drops the selection unconditionally.
func (f *Filter) Clear() {
	f.selected, f.has = 0, false
}

// Selected returns the selected parcel, if any.
func (f *Filter) Selected() (int, bool) { return f.selected, f.has }

// IsSelected reports whether id is the selected parcel.
func (f *Filter) IsSelected(id int) bool { return f.has && f.selected == id }

// SetSearch replaces the search text. Surrounding whitespace is dropped;
// text that is not a number simply matches nothing.
func (f *Filter) SetSearch(text string) {
	f.search = strings.TrimSpace(text)
}

// Search returns the active search text.
func (f *Filter) Search() string { return f.search }

// Matches reports whether the search is non-empty and the decimal form of
// id contains it.
func (f *Filter) Matches(id int) bool {
	return f.search != "" && strings.Contains(strconv.Itoa(id), f.search)
}

// IsDimmed reports whether a search is active and id does not match it.
func (f *Filter) IsDimmed(id int) bool {
	return f.search != "" && !f.Matches(id)
}

// Emphasis combines selection and search for id.
func (f *Filter) Emphasis(id int) Emphasis {
	switch {
	case f.IsSelected(id):
		return Selected
	case f.Matches(id):
		return Matched
	case f.IsDimmed(id):
		return Dimmed
	default:
		return Normal
	}
}

// MatchCount returns how many of ids match the search.
func (f *Filter) MatchCount(ids []int) int {
	n := 0
	for _, id := range ids {
		if f.Matches(id) {
			n++
		}
	}
	return n
}
