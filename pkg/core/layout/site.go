package layout

// FeatureKind classifies the static drawing elements around the parcels.
type FeatureKind string

const (
	FeatureLawn       FeatureKind = "lawn"
	FeatureSlab       FeatureKind = "slab"
	FeatureAmenity    FeatureKind = "amenity"
	FeaturePlayground FeatureKind = "playground"
	FeatureAllotted   FeatureKind = "allotted"
	FeatureClub       FeatureKind = "club"
	FeaturePartyPlot  FeatureKind = "party_plot"
	FeatureCourt      FeatureKind = "court"
	FeatureRoad       FeatureKind = "road"
	FeaturePark       FeatureKind = "park"
	FeatureGate       FeatureKind = "gate"
)

// Feature is a static rectangle of the site drawing.
type Feature struct {
	Kind  FeatureKind `json:"kind" yaml:"kind"`
	Rect  Cell        `json:"rect" yaml:"rect"`
	Label string      `json:"label,omitempty" yaml:"label,omitempty"`
}

// Label is a piece of static text. Rotate is in degrees around (X, Y).
type Label struct {
	Text   string  `json:"text" yaml:"text"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Size   float64 `json:"size" yaml:"size"`
	Rotate float64 `json:"rotate,omitempty" yaml:"rotate,omitempty"`
}

// Site is everything drawn around the parcels: slab, roads, amenities.
type Site struct {
	Width    float64   `json:"width" yaml:"width"`
	Height   float64   `json:"height" yaml:"height"`
	Features []Feature `json:"features" yaml:"features"`
	Labels   []Label   `json:"labels" yaml:"labels"`
}

// Derived positions of the default plan.
const (
	RoadYTop = YTop + 11*(CellH+Gap) + 4
	RoadYBot = YBottom + 8*(CellH+Gap) + 4

	VRoad1X = XB1 - 14
	VRoad2X = XC1 - 14
	VRoad3X = XD - 14
	VRoadW  = 12

	SlabX = 48
	SlabY = 42
	SlabW = 600
	SlabH = RoadYBot + 18
)

// DefaultSite returns the static features of the default plan, in paint order.
func DefaultSite() Site {
	rect := func(k FeatureKind, x, y, w, h float64, label string) Feature {
		return Feature{Kind: k, Rect: Cell{X: x, Y: y, W: w, H: h}, Label: label}
	}
	stripH := float64(YTop - SlabY)
	courtX := float64(VRoad3X + ColWideW + 2)
	courtH := float64(RoadYTop - SlabY - 2)
	bottom := float64(SlabY + SlabH)

	features := []Feature{
		rect(FeatureLawn, 20, 30, SlabW+78, bottom-10, ""),
		rect(FeatureSlab, SlabX, SlabY, SlabW, SlabH, ""),
		rect(FeatureAmenity, SlabX, SlabY, SlabW, stripH-2, ""),
		rect(FeaturePlayground, SlabX+2, SlabY+2, VRoad1X-SlabX-2, stripH-4, ""),
		rect(FeatureAllotted, SlabX+80, SlabY+4, 32, 14, "ALLOTED"),
		rect(FeatureClub, XB2+ColNarrowW+4, SlabY+4, 42, stripH-8, "CLUB"),
		rect(FeaturePartyPlot, XB2+ColNarrowW+50, SlabY+4, 70, stripH-8, "PARTY PLOT"),
		rect(FeatureCourt, courtX, SlabY+2, SlabX+SlabW-courtX-2, courtH, "BOX CRICKET · MULTI PURPOSE COURT"),
		rect(FeatureRoad, VRoad1X, SlabY, VRoadW, SlabH, ""),
		rect(FeatureRoad, VRoad2X, SlabY, VRoadW, SlabH, ""),
		rect(FeatureRoad, VRoad3X, SlabY, VRoadW, SlabH/2+20, ""),
		rect(FeatureRoad, SlabX, RoadYTop, SlabW, RoadH, ""),
		rect(FeaturePark, SlabX, RoadYBot+20, SlabW, 22, ""),
		rect(FeatureGate, -220, bottom+10, 20, 30, ""),
	}

	stride := float64(CellH + Gap)
	labels := []Label{
		{Text: "7.5 Meter Road", X: VRoad1X + 7, Y: YTop + 5*stride + 10, Size: 6, Rotate: -90},
		{Text: "7.5 Meter Road", X: VRoad2X + 7, Y: YTop + 5*stride + 10, Size: 6, Rotate: -90},
		{Text: "7.5 Meter Road", X: VRoad3X + 7, Y: YBottom + 3*stride + 10, Size: 6, Rotate: -90},
		{Text: "BOX CRICKET · MULTI PURPOSE COURT", X: courtX + 10, Y: SlabY + (RoadYTop-SlabY)/2.0, Size: 6, Rotate: -90},
		{Text: "NAKSHATRA NADI RD", X: SlabX + SlabW/2, Y: RoadYBot + 32, Size: 7},
	}
	for _, x := range []float64{
		XA + ColWideW/2.0,
		XB1 + ColNarrowW + Gap/2.0 + ColNarrowW/2.0,
		XC1 + ColNarrowW + Gap/2.0 + ColNarrowW/2.0,
	} {
		labels = append(labels,
			Label{Text: "↑", X: x, Y: RoadYBot + 12, Size: 11},
			Label{Text: "6 Meter Rd", X: x, Y: RoadYBot + 24, Size: 6},
		)
	}

	return Site{Width: CanvasW, Height: CanvasH, Features: features, Labels: labels}
}

// Site returns the static features drawn around the resolver's parcels.
func (r *Resolver) Site() Site { return DefaultSite() }
