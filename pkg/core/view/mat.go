package view

import "math"

// Point is a 2D position in site or screen space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p − q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) finite() bool { return finite(p.X) && finite(p.Y) }

// Size is a width and height in pixels.
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Center returns the midpoint of a box of this size anchored at the origin.
func (s Size) Center() Point { return Point{s.W / 2, s.H / 2} }

// Mat4 is a row-major homogeneous 4×4 matrix acting on column vectors.
type Mat4 [4][4]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float64) Mat4 {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = x, y, z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float64) Mat4 {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = x, y, z
	return m
}

// RotateX returns a rotation about the x axis by deg degrees.
func RotateX(deg float64) Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := Identity()
	m[1][1], m[1][2] = c, -s
	m[2][1], m[2][2] = s, c
	return m
}

// RotateZ returns a rotation about the z axis by deg degrees. With y pointing
// down, positive angles turn clockwise on screen.
func RotateZ(deg float64) Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := Identity()
	m[0][0], m[0][1] = c, -s
	m[1][0], m[1][1] = s, c
	return m
}

// Perspective returns a projection with the viewer at distance d on the z
// axis: w' = w − z/d.
func Perspective(d float64) Mat4 {
	m := Identity()
	if d != 0 {
		m[3][2] = -1 / d
	}
	return m
}

// Mul returns m · o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// Chain multiplies matrices left to right.
func Chain(ms ...Mat4) Mat4 {
	r := Identity()
	for _, m := range ms {
		r = r.Mul(m)
	}
	return r
}

// Project maps a point of the z=0 plane and reports false when it lands
// behind the viewer.
func (m Mat4) Project(p Point) (Point, bool) {
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][3]
	if w <= epsilon {
		return Point{}, false
	}
	return Point{x / w, y / w}, true
}

// planar returns the 3×3 homography of the z=0 plane: rows and columns
// 0, 1 and 3 of m.
func (m Mat4) planar() [3][3]float64 {
	idx := [3]int{0, 1, 3}
	var h [3][3]float64
	for i, r := range idx {
		for j, c := range idx {
			h[i][j] = m[r][c]
		}
	}
	return h
}

const epsilon = 1e-12

func invert3(h [3][3]float64) ([3][3]float64, bool) {
	a, b, c := h[0][0], h[0][1], h[0][2]
	d, e, f := h[1][0], h[1][1], h[1][2]
	g, i, k := h[2][0], h[2][1], h[2][2]

	co00 := e*k - f*i
	co01 := -(d*k - f*g)
	co02 := d*i - e*g
	det := a*co00 + b*co01 + c*co02
	if math.Abs(det) < epsilon {
		return [3][3]float64{}, false
	}
	inv := 1 / det
	return [3][3]float64{
		{co00 * inv, -(b*k - c*i) * inv, (b*f - c*e) * inv},
		{co01 * inv, (a*k - c*g) * inv, -(a*f - c*d) * inv},
		{co02 * inv, -(a*i - b*g) * inv, (a*e - b*d) * inv},
	}, true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
