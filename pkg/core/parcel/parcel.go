package parcel

import (
	"math"

	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// Status is the sales state of a parcel.
type Status string

const (
	Available Status = "available"
	Sold      Status = "sold"
	Builder   Status = "builder"
	// Neutral is the animation baseline. It is never a parcel's true status.
	Neutral Status = "neutral"
)

// Statuses lists the true statuses in legend order.
var Statuses = []Status{Available, Sold, Builder}

// Valid reports whether s is one of the known statuses, neutral included.
func (s Status) Valid() bool {
	switch s {
	case Available, Sold, Builder, Neutral:
		return true
	}
	return false
}

// Label returns the capitalised form shown on cards and legends.
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// ParseStatus converts user input into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", perrors.New(perrors.ErrCodeInvalidInput, "unknown status %q", s)
	}
	return st, nil
}

// Facing is the cardinal direction a parcel's frontage faces.
type Facing string

const (
	North Facing = "North"
	South Facing = "South"
	East  Facing = "East"
	West  Facing = "West"
)

var facings = [4]Facing{North, South, East, West}

// Parcel is one unit of land. Values are copied out of the registry, so
// callers cannot mutate the source of truth.
type Parcel struct {
	ID       int     `json:"id" yaml:"id"`
	Status   Status  `json:"status" yaml:"status"`
	AreaSqM  float64 `json:"area_sq_m" yaml:"area_sq_m"`
	AreaSqYd float64 `json:"area_sq_yd" yaml:"area_sq_yd"`
	WidthM   float64 `json:"width_m" yaml:"width_m"`
	LengthM  float64 `json:"length_m" yaml:"length_m"`
	Facing   Facing  `json:"facing" yaml:"facing"`
}

// generate derives the attributes of parcel i. Status starts as Sold.
func generate(i int) Parcel {
	return Parcel{
		ID:       i,
		Status:   Sold,
		AreaSqM:  round2(80 + float64(i%7)*11),
		AreaSqYd: round2(96 + float64(i%7)*13),
		WidthM:   round2(4.5 + float64(i%3)*0.5),
		LengthM:  round2(16 + float64(i%5)),
		Facing:   facings[i%4],
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
