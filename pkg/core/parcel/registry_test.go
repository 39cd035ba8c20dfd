package parcel

import (
	"testing"

	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

func TestDefault(t *testing.T) {
	r := Default()
	if r.Len() != 109 {
		t.Fatalf("Len() = %d, want 109", r.Len())
	}

	counts := map[Status]int{
		Available: 26,
		Builder:   11,
		Sold:      72,
		Neutral:   0,
	}
	for st, want := range counts {
		if got := r.Count(st); got != want {
			t.Errorf("Count(%s) = %d, want %d", st, got, want)
		}
	}
}

func TestGet(t *testing.T) {
	r := Default()

	tests := []struct {
		name   string
		id     int
		want   Parcel
		wantOK bool
	}{
		{
			name:   "builder parcel",
			id:     5,
			want:   Parcel{ID: 5, Status: Builder, AreaSqM: 135, AreaSqYd: 161, WidthM: 5.5, LengthM: 16, Facing: South},
			wantOK: true,
		},
		{
			name:   "available parcel",
			id:     1,
			want:   Parcel{ID: 1, Status: Available, AreaSqM: 91, AreaSqYd: 109, WidthM: 5, LengthM: 17, Facing: South},
			wantOK: true,
		},
		{
			name:   "sold parcel",
			id:     14,
			want:   Parcel{ID: 14, Status: Sold, AreaSqM: 80, AreaSqYd: 96, WidthM: 5.5, LengthM: 20, Facing: East},
			wantOK: true,
		},
		{name: "zero", id: 0},
		{name: "negative", id: -3},
		{name: "past end", id: 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Get(tt.id)
			if !tt.wantOK {
				if !perrors.Is(err, perrors.ErrCodeNotFound) {
					t.Fatalf("Get(%d) error = %v, want not found", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%d) unexpected error: %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("Get(%d) = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}
}

func TestAllOrderedAndCopied(t *testing.T) {
	r := Default()
	all := r.All()
	for i, p := range all {
		if p.ID != i+1 {
			t.Fatalf("All()[%d].ID = %d, want %d", i, p.ID, i+1)
		}
	}

	all[0].Status = Sold
	if p, _ := r.Get(1); p.Status != Available {
		t.Error("mutating All() result changed the registry")
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, _ := Build(DefaultSpec())
	b, _ := Build(DefaultSpec())
	pa, pb := a.All(), b.All()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("parcel %d differs between builds: %+v vs %+v", i+1, pa[i], pb[i])
		}
	}
}

func TestBuildRejects(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"zero count", Spec{Count: 0}},
		{"available out of range", Spec{Count: 3, Available: []int{4}}},
		{"builder out of range", Spec{Count: 3, Builder: []int{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.spec); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
				t.Errorf("Build() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestBuilderOverridesAvailable(t *testing.T) {
	r, err := Build(Spec{Count: 2, Available: []int{1, 2}, Builder: []int{2}})
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := r.Get(2); p.Status != Builder {
		t.Errorf("parcel 2 status = %s, want builder", p.Status)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		in   Status
		want string
	}{
		{Available, "Available"},
		{Sold, "Sold"},
		{Builder, "Builder"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := tt.in.Label(); got != tt.want {
			t.Errorf("%q.Label() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if _, err := ParseStatus("sold"); err != nil {
		t.Errorf("ParseStatus(sold) error: %v", err)
	}
	if _, err := ParseStatus("leased"); err == nil {
		t.Error("ParseStatus(leased) expected error")
	}
}
