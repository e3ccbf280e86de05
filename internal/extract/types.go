package extract

import (
	"math"
)

// Point represents a single survey return in a projected metric coordinate
// system (easting, northing, elevation in metres).
type Point struct {
	X, Y, Z float64
}

// Point2 is a point projected onto the X-Y plane.
type Point2 struct {
	X, Y float64
}

// PointSet is an unordered collection of points belonging to one semantic
// class within one spatial chunk. It is the unit of work for a pipeline run.
type PointSet struct {
	Chunk  string
	Class  string
	Points []Point
}

// Cluster is a subset of a PointSet assigned one cluster ID by the
// density clusterer. Cluster IDs are assigned in discovery order starting
// at 1 and are unique within a run.
type Cluster struct {
	ID     int
	Points []Point
}

// Flatten projects the cluster onto the X-Y plane.
func (c *Cluster) Flatten() []Point2 {
	out := make([]Point2, len(c.Points))
	for i, p := range c.Points {
		out[i] = Point2{X: p.X, Y: p.Y}
	}
	return out
}

// Ring is an ordered sequence of 2D vertices forming a closed boundary.
// A valid ring repeats its first vertex as its last and has at least four
// vertices including that closing duplicate.
type Ring []Point2

// Closed reports whether the ring's first vertex equals its last.
func (r Ring) Closed() bool {
	if len(r) < 2 {
		return false
	}
	return r[0] == r[len(r)-1]
}

// Valid reports whether the ring is closed and large enough to bound area.
func (r Ring) Valid() bool {
	return len(r) >= 4 && r.Closed()
}

// Area returns the enclosed area in square metres (shoelace formula).
func (r Ring) Area() float64 {
	if len(r) < 4 {
		return 0
	}
	var sum float64
	for i := 0; i < len(r)-1; i++ {
		sum += r[i].X*r[i+1].Y - r[i+1].X*r[i].Y
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the total edge length in metres.
func (r Ring) Perimeter() float64 {
	var sum float64
	for i := 0; i < len(r)-1; i++ {
		dx := r[i+1].X - r[i].X
		dy := r[i+1].Y - r[i].Y
		sum += math.Hypot(dx, dy)
	}
	return sum
}

// Bounds returns the axis-aligned bounding box of the ring.
func (r Ring) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64
	for _, v := range r {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	return minX, minY, maxX, maxY
}

// AspectRatio returns the bounding-box aspect ratio (long side over short
// side, always >= 1). The short side is clamped to aspectEpsilon so
// degenerate boxes yield a large finite ratio instead of dividing by zero.
func (r Ring) AspectRatio() float64 {
	minX, minY, maxX, maxY := r.Bounds()
	w := maxX - minX
	h := maxY - minY
	long := math.Max(w, h)
	short := math.Min(w, h)
	if short <= aspectEpsilon {
		short = aspectEpsilon
	}
	return long / short
}

// aspectEpsilon guards aspect-ratio divisions against zero-width extents.
const aspectEpsilon = 0.1

// FootprintGeometry is a validated closed polygon for an area-like object.
type FootprintGeometry struct {
	ID          string  `json:"id"`
	Chunk       string  `json:"chunk"`
	Class       string  `json:"class"`
	ClusterID   int     `json:"cluster_id"`
	Ring        Ring    `json:"ring"`
	AreaM2      float64 `json:"area_m2"`
	PerimeterM  float64 `json:"perimeter_m"`
	AspectRatio float64 `json:"aspect_ratio"`
	VertexCount int     `json:"vertex_count"`
	PointCount  int     `json:"point_count"`
	Method      string  `json:"method"`
}

// LineGeometry is a validated ordered centerline for a linear object.
// Vertices keep their original 3D coordinates so natural sag survives; only
// their ordering derives from the principal-direction projection.
type LineGeometry struct {
	ID          string  `json:"id"`
	Chunk       string  `json:"chunk"`
	Class       string  `json:"class"`
	ClusterID   int     `json:"cluster_id"`
	Vertices    []Point `json:"vertices"`
	LengthM     float64 `json:"length_m"`
	WidthM      float64 `json:"width_m"`
	AspectRatio float64 `json:"aspect_ratio"`
	MinHeightM  float64 `json:"min_height_m"`
	MaxHeightM  float64 `json:"max_height_m"`
	AvgHeightM  float64 `json:"avg_height_m"`
	PointCount  int     `json:"point_count"`
}

// Rejection reason codes. Reported in QualityReport records and aggregated
// per run; never fatal.
const (
	ReasonTooSmall     = "too_small"
	ReasonTooLarge     = "too_large"
	ReasonTooElongated = "too_elongated"
	ReasonOverlap      = "overlap"
	ReasonTooShort     = "too_short"
	ReasonNotLinear    = "not_linear"
	ReasonTooFewPoints = "too_few_points"
	ReasonDegenerate   = "degenerate"
)

// QualityReport records one accept/reject decision for a candidate
// geometry. Reports are ephemeral: logged and counted, not persisted.
type QualityReport struct {
	ClusterID int     `json:"cluster_id"`
	Accepted  bool    `json:"accepted"`
	Reason    string  `json:"reason,omitempty"`
	Detail    string  `json:"detail,omitempty"`
	Value     float64 `json:"value,omitempty"`
}
