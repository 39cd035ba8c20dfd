package layout

// Cell is the rectangle occupied by one parcel in site space.
type Cell struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Right returns the x coordinate of the right edge.
func (c Cell) Right() float64 { return c.X + c.W }

// Bottom returns the y coordinate of the bottom edge.
func (c Cell) Bottom() float64 { return c.Y + c.H }

// CenterX returns the horizontal center point of the cell.
func (c Cell) CenterX() float64 { return c.X + c.W/2 }

// CenterY returns the vertical center point of the cell.
func (c Cell) CenterY() float64 { return c.Y + c.H/2 }

// Contains reports whether the site point (x, y) lies inside the cell.
// The left and top edges are inclusive, the right and bottom exclusive, so a
// point on a shared edge belongs to exactly one cell.
func (c Cell) Contains(x, y float64) bool {
	return x >= c.X && x < c.Right() && y >= c.Y && y < c.Bottom()
}

// Overlaps reports whether two cells share interior area.
// Cells that only touch along an edge do not overlap.
func (c Cell) Overlaps(o Cell) bool {
	return c.X < o.Right() && o.X < c.Right() && c.Y < o.Bottom() && o.Y < c.Bottom()
}

// Union returns the smallest cell containing both c and o.
func (c Cell) Union(o Cell) Cell {
	x0, y0 := min(c.X, o.X), min(c.Y, o.Y)
	x1, y1 := max(c.Right(), o.Right()), max(c.Bottom(), o.Bottom())
	return Cell{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Corners returns the four corners clockwise from the top-left.
func (c Cell) Corners() [4][2]float64 {
	return [4][2]float64{
		{c.X, c.Y},
		{c.Right(), c.Y},
		{c.Right(), c.Bottom()},
		{c.X, c.Bottom()},
	}
}
