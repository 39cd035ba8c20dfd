package layout

// Axis is the direction a sector steps along.
type Axis int

const (
	// Down steps each cell below the previous one.
	Down Axis = iota
	// Across steps each cell to the right of the previous one.
	Across
)

// Site constants of the default plan.
const (
	CanvasW = 660
	CanvasH = 720

	ColWideW   = 64 // columns A and D
	ColNarrowW = 53 // sub-columns of B and C
	CellH      = 28
	RoadH      = 18
	Gap        = 3

	XA  = 54
	XB1 = 138
	XB2 = XB1 + ColNarrowW + Gap
	XC1 = 306
	XC2 = XC1 + ColNarrowW + Gap
	XD  = 474

	YTop    = 62
	YBottom = 408
)

// Sector is a named run of parcels stepped from an origin.
type Sector struct {
	Name string  `json:"name" yaml:"name"`
	IDs  []int   `json:"ids" yaml:"ids"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	W    float64 `json:"w" yaml:"w"`
	H    float64 `json:"h" yaml:"h"`
	Gap  float64 `json:"gap" yaml:"gap"`
	Axis Axis    `json:"axis" yaml:"axis"`
}

// Cell returns the k-th cell of the sector.
func (s Sector) Cell(k int) Cell {
	c := Cell{X: s.X, Y: s.Y, W: s.W, H: s.H}
	switch s.Axis {
	case Across:
		c.X += float64(k) * (s.W + s.Gap)
	default:
		c.Y += float64(k) * (s.H + s.Gap)
	}
	return c
}

// Bounds returns the rectangle covering every cell of the sector.
func (s Sector) Bounds() Cell {
	if len(s.IDs) == 0 {
		return Cell{X: s.X, Y: s.Y}
	}
	return s.Cell(0).Union(s.Cell(len(s.IDs) - 1))
}

// indexAt returns the step index whose cell contains (x, y), or -1.
func (s Sector) indexAt(x, y float64) int {
	var off, stride float64
	switch s.Axis {
	case Across:
		off, stride = x-s.X, s.W+s.Gap
	default:
		off, stride = y-s.Y, s.H+s.Gap
	}
	if off < 0 || stride <= 0 {
		return -1
	}
	k := int(off / stride)
	if k >= len(s.IDs) || !s.Cell(k).Contains(x, y) {
		return -1
	}
	return k
}

// span returns a..b inclusive, counting down when b < a.
func span(a, b int) []int {
	var ids []int
	if a <= b {
		for i := a; i <= b; i++ {
			ids = append(ids, i)
		}
		return ids
	}
	for i := a; i >= b; i-- {
		ids = append(ids, i)
	}
	return ids
}

func column(name string, x, y, w float64, ids []int) Sector {
	return Sector{Name: name, IDs: ids, X: x, Y: y, W: w, H: CellH, Gap: Gap, Axis: Down}
}

// DefaultSectors returns the twelve sectors of the site plan.
func DefaultSectors() []Sector {
	return []Sector{
		column("A top", XA, YTop, ColWideW, span(1, 10)),
		column("A bottom", XA, YBottom, ColWideW, span(11, 20)),
		column("B top-left", XB1, YTop, ColNarrowW, span(39, 29)),
		column("B top-right", XB2, YTop, ColNarrowW, span(40, 50)),
		column("B bottom-left", XB1, YBottom, ColNarrowW, span(28, 21)),
		column("B bottom-right", XB2, YBottom, ColNarrowW, span(51, 58)),
		column("C top-left", XC1, YTop, ColNarrowW, span(75, 67)),
		column("C top-right", XC2, YTop, ColNarrowW, span(76, 84)),
		column("C bottom-left", XC1, YBottom, ColNarrowW, span(66, 59)),
		column("C bottom-right", XC2, YBottom, ColNarrowW, span(85, 92)),
		column("D top", XD, YTop, ColWideW, span(109, 100)),
		column("D bottom", XD, YBottom, ColWideW, span(99, 93)),
	}
}
