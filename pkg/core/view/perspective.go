package view

import (
	"fmt"
	"math"
	"strings"

	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// Tilt holds the parameters of the 3D perspective/rotation transform, in
// the order a browser applies them: perspective, rotateX, rotateZ, scale,
// translate. The zero value is the flat (identity) transform.
type Tilt struct {
	Distance   float64 `json:"perspective" toml:"perspective" yaml:"perspective"`
	RotateXDeg float64 `json:"rotate_x" toml:"rotate_x" yaml:"rotate_x"`
	RotateZDeg float64 `json:"rotate_z" toml:"rotate_z" yaml:"rotate_z"`
	Scale      float64 `json:"scale" toml:"scale" yaml:"scale"`
	TX         float64 `json:"translate_x" toml:"translate_x" yaml:"translate_x"`
	TY         float64 `json:"translate_y" toml:"translate_y" yaml:"translate_y"`
}

// Default tilt parameters.
var (
	DefaultTilt = Tilt{Distance: 700, RotateXDeg: 40, RotateZDeg: -18, Scale: 1}
	NorthUpTilt = Tilt{Distance: 900, RotateXDeg: 42, RotateZDeg: -56, Scale: 0.82, TX: 50, TY: -20}
	flatTilt    = Tilt{}
)

// IsFlat reports whether t is the identity transform.
func (t Tilt) IsFlat() bool { return t == flatTilt }

// Validate rejects a tilt that cannot be drawn: the perspective distance
// and scale must be positive and every parameter finite.
func (t Tilt) Validate() error {
	for _, v := range []float64{t.Distance, t.RotateXDeg, t.RotateZDeg, t.Scale, t.TX, t.TY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return perrors.New(perrors.ErrCodeInvalidInput, "tilt parameters must be finite")
		}
	}
	switch {
	case t.Distance <= 0:
		return perrors.New(perrors.ErrCodeInvalidInput, "perspective must be positive, got %g", t.Distance)
	case t.Scale <= 0:
		return perrors.New(perrors.ErrCodeInvalidInput, "scale must be positive, got %g", t.Scale)
	}
	return nil
}

// Matrix returns P(d) · Rx · Rz · S(k) · T(t).
func (t Tilt) Matrix() Mat4 {
	if t.IsFlat() {
		return Identity()
	}
	return Chain(
		Perspective(t.Distance),
		RotateX(t.RotateXDeg),
		RotateZ(t.RotateZDeg),
		Scale(t.Scale, t.Scale, 1),
		Translate(t.TX, t.TY, 0),
	)
}

// CSS returns the transform as a CSS transform list.
func (t Tilt) CSS() string {
	if t.IsFlat() {
		return "none"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "perspective(%gpx) rotateX(%gdeg) rotateZ(%gdeg) scale(%g)",
		t.Distance, t.RotateXDeg, t.RotateZDeg, t.Scale)
	if t.TX != 0 || t.TY != 0 {
		fmt.Fprintf(&b, " translate(%gpx, %gpx)", t.TX, t.TY)
	}
	return b.String()
}
