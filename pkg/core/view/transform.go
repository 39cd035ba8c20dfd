package view

// Transform is the composed site → screen mapping at one instant.
type Transform struct {
	Matrix   Mat4   `json:"matrix" yaml:"matrix"`
	OuterCSS string `json:"outer_css" yaml:"outer_css"`
	InnerCSS string `json:"inner_css" yaml:"inner_css"`
}

// Apply projects a site point to the screen. Points behind the viewer
// map to the zero point.
func (t Transform) Apply(site Point) Point {
	p, _ := t.Matrix.Project(site)
	return p
}

// Project is Apply with a visibility flag.
func (t Transform) Project(site Point) (Point, bool) {
	return t.Matrix.Project(site)
}

// Invert returns the site point under a screen point, intersecting the
// screen ray with the z=0 site plane. It reports false when the ray misses
// the plane in front of the viewer.
func (t Transform) Invert(screen Point) (Point, bool) {
	if !screen.finite() {
		return Point{}, false
	}
	inv, ok := invert3(t.Matrix.planar())
	if !ok {
		return Point{}, false
	}
	x := inv[0][0]*screen.X + inv[0][1]*screen.Y + inv[0][2]
	y := inv[1][0]*screen.X + inv[1][1]*screen.Y + inv[1][2]
	w := inv[2][0]*screen.X + inv[2][1]*screen.Y + inv[2][2]
	if w == 0 {
		return Point{}, false
	}
	site := Point{x / w, y / w}
	if _, front := t.Matrix.Project(site); !front {
		return Point{}, false
	}
	return site, true
}

// CSS returns the outer (pan/zoom) and inner (perspective) CSS transforms.
func (t Transform) CSS() (outer, inner string) {
	return t.OuterCSS, t.InnerCSS
}

// Quad projects the four corners of a site rectangle, clockwise from the
// top-left. ok is false if any corner is behind the viewer.
func (t Transform) Quad(x, y, w, h float64) (q [4]Point, ok bool) {
	corners := [4]Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i, c := range corners {
		p, front := t.Matrix.Project(c)
		if !front {
			return q, false
		}
		q[i] = p
	}
	return q, true
}
