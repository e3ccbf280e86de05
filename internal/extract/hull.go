package extract

import (
	"math"
	"sort"
)

// hullEpsilon is the threshold below which extents and cross products are
// treated as zero during hull construction.
const hullEpsilon = 1e-9

// hullStrategy is one rung of the footprint fallback ladder. Build returns
// a closed ring or an error; a failure advances the ladder to the next
// strategy instead of aborting the cluster.
type hullStrategy interface {
	Name() string
	Build(pts []Point2) (Ring, error)
}

// BuildFootprint converts a flattened cluster into a closed boundary ring.
// Strategies are tried in order from concavity-following to coarse:
// boundary-point hull, full convex hull, oriented rectangle with
// unsupported corners chamfered, axis-aligned box. The name of the winning
// strategy is returned for provenance.
func BuildFootprint(c *Cluster, profile ClassProfile) (Ring, string, error) {
	pts := c.Flatten()
	ladder := []hullStrategy{
		&boundaryHull{alpha: profile.HullAlphaM, neighborThreshold: profile.HullNeighborThreshold},
		convexHullStrategy{},
		orientedRect{supportRadius: profile.HullAlphaM},
		axisAlignedBox{},
	}

	var lastErr error
	for _, s := range ladder {
		ring, err := s.Build(pts)
		if err != nil {
			lastErr = err
			continue
		}
		if !ring.Valid() {
			continue
		}
		return ring, s.Name(), nil
	}

	detail := "no fallback level produced a valid ring"
	if lastErr != nil {
		detail = lastErr.Error()
	}
	return nil, "", &DegenerateGeometryError{ClusterID: c.ID, Stage: "footprint", Detail: detail}
}

// boundaryHull computes the convex hull of the boundary-point subset only.
// A point is a boundary point when it has at most neighborThreshold
// neighbors within alpha; restricting the hull to those points is what
// produces concavity-following behaviour on dense clusters.
type boundaryHull struct {
	alpha             float64
	neighborThreshold int
}

func (s *boundaryHull) Name() string { return "boundary_hull" }

func (s *boundaryHull) Build(pts []Point2) (Ring, error) {
	if len(pts) < 4 {
		return nil, errDegenerateInput("fewer than 4 points")
	}
	boundary := boundaryPoints(pts, s.alpha, s.neighborThreshold)
	if len(boundary) < 4 {
		return nil, errDegenerateInput("fewer than 4 boundary points")
	}
	return convexHull(boundary)
}

// boundaryPoints returns the subset of pts with at most threshold other
// points within radius alpha.
func boundaryPoints(pts []Point2, alpha float64, threshold int) []Point2 {
	points3 := make([]Point, len(pts))
	for i, p := range pts {
		points3[i] = Point{X: p.X, Y: p.Y}
	}
	idx := newGridIndex(points3, alpha, false)

	var boundary []Point2
	for i, p := range pts {
		if idx.countWithin(i, alpha) <= threshold {
			boundary = append(boundary, p)
		}
	}
	return boundary
}

// convexHullStrategy hulls the full cluster, surrendering concavities.
type convexHullStrategy struct{}

func (convexHullStrategy) Name() string { return "convex_hull" }

func (convexHullStrategy) Build(pts []Point2) (Ring, error) {
	return convexHull(pts)
}

// convexHull computes a closed counter-clockwise hull ring using the
// monotone chain construction. Collinear interior points are excluded.
func convexHull(pts []Point2) (Ring, error) {
	uniq := dedupe(pts)
	if len(uniq) < 3 {
		return nil, errDegenerateInput("fewer than 3 distinct points")
	}
	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i].X != uniq[j].X {
			return uniq[i].X < uniq[j].X
		}
		return uniq[i].Y < uniq[j].Y
	})

	n := len(uniq)
	hull := make([]Point2, 0, 2*n)

	// Lower chain.
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= hullEpsilon {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// Upper chain.
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= hullEpsilon {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// The construction ends back at the start point, closing the ring.

	if len(hull) < 4 {
		return nil, errDegenerateInput("collinear input")
	}
	return Ring(hull), nil
}

func cross(o, a, b Point2) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func dedupe(pts []Point2) []Point2 {
	seen := make(map[Point2]struct{}, len(pts))
	out := make([]Point2, 0, len(pts))
	for _, p := range pts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// orientedRect fits a minimum rectangle aligned to the cluster's principal
// axis, then chamfers corners that no cluster point supports. The principal
// axis comes from the closed-form eigendecomposition of the 2x2 X-Y
// covariance matrix.
type orientedRect struct {
	// supportRadius is the distance within which a cluster point must lie
	// for a rectangle corner to be kept sharp. Unsupported corners are
	// chamfered at 25% of each adjacent edge.
	supportRadius float64
}

func (orientedRect) Name() string { return "oriented_rect" }

func (s orientedRect) Build(pts []Point2) (Ring, error) {
	if len(pts) < 3 {
		return nil, errDegenerateInput("fewer than 3 points")
	}

	var meanX, meanY float64
	for _, p := range pts {
		meanX += p.X
		meanY += p.Y
	}
	nf := float64(len(pts))
	meanX /= nf
	meanY /= nf

	var c00, c01, c11 float64
	for _, p := range pts {
		dx := p.X - meanX
		dy := p.Y - meanY
		c00 += dx * dx
		c01 += dx * dy
		c11 += dy * dy
	}
	c00 /= nf
	c01 /= nf
	c11 /= nf

	evX, evY := principalAxis2x2(c00, c01, c11)

	// Extents along the principal and perpendicular axes.
	minA, maxA := math.MaxFloat64, -math.MaxFloat64
	minB, maxB := math.MaxFloat64, -math.MaxFloat64
	for _, p := range pts {
		dx := p.X - meanX
		dy := p.Y - meanY
		a := dx*evX + dy*evY
		b := dx*(-evY) + dy*evX
		minA = math.Min(minA, a)
		maxA = math.Max(maxA, a)
		minB = math.Min(minB, b)
		maxB = math.Max(maxB, b)
	}
	if maxA-minA <= hullEpsilon || maxB-minB <= hullEpsilon {
		return nil, errDegenerateInput("zero rectangle extent")
	}

	corner := func(a, b float64) Point2 {
		return Point2{
			X: meanX + a*evX + b*(-evY),
			Y: meanY + a*evY + b*evX,
		}
	}
	corners := []Point2{
		corner(minA, minB),
		corner(maxA, minB),
		corner(maxA, maxB),
		corner(minA, maxB),
	}

	radius := s.supportRadius
	if radius <= 0 {
		radius = 0.1 * math.Hypot(maxA-minA, maxB-minB)
	}

	ring := make(Ring, 0, 9)
	for i, c := range corners {
		if cornerSupported(c, pts, radius) {
			ring = append(ring, c)
			continue
		}
		prev := corners[(i+3)%4]
		next := corners[(i+1)%4]
		ring = append(ring,
			Point2{X: c.X + 0.25*(prev.X-c.X), Y: c.Y + 0.25*(prev.Y-c.Y)},
			Point2{X: c.X + 0.25*(next.X-c.X), Y: c.Y + 0.25*(next.Y-c.Y)},
		)
	}
	ring = append(ring, ring[0])
	if !ring.Valid() {
		return nil, errDegenerateInput("truncated rectangle collapsed")
	}
	return ring, nil
}

// principalAxis2x2 returns the unit eigenvector of the larger eigenvalue of
// the symmetric matrix [c00 c01; c01 c11]. Diagonal matrices fall back to
// the dominant coordinate axis.
func principalAxis2x2(c00, c01, c11 float64) (evX, evY float64) {
	if math.Abs(c01) <= hullEpsilon {
		if c00 >= c11 {
			return 1, 0
		}
		return 0, 1
	}
	trace := c00 + c11
	det := c00*c11 - c01*c01
	disc := trace*trace - 4*det
	lambda1 := c00
	if disc >= 0 {
		lambda1 = (trace + math.Sqrt(disc)) / 2
	}
	evX = c01
	evY = lambda1 - c00
	mag := math.Hypot(evX, evY)
	if mag <= hullEpsilon {
		return 1, 0
	}
	return evX / mag, evY / mag
}

func cornerSupported(c Point2, pts []Point2, radius float64) bool {
	r2 := radius * radius
	for _, p := range pts {
		dx := p.X - c.X
		dy := p.Y - c.Y
		if dx*dx+dy*dy <= r2 {
			return true
		}
	}
	return false
}

// axisAlignedBox is the last rung: the plain bounding box of the cluster.
// Two-point clusters are rejected here as well, so a cluster that survives
// no earlier rung still fails over to a degenerate rejection.
type axisAlignedBox struct{}

func (axisAlignedBox) Name() string { return "bounding_box" }

func (axisAlignedBox) Build(pts []Point2) (Ring, error) {
	if len(dedupe(pts)) < 3 {
		return nil, errDegenerateInput("fewer than 3 distinct points")
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if maxX-minX <= hullEpsilon || maxY-minY <= hullEpsilon {
		return nil, errDegenerateInput("zero box extent")
	}
	return Ring{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
		{X: minX, Y: minY},
	}, nil
}

type degenerateInputError string

func (e degenerateInputError) Error() string { return string(e) }

func errDegenerateInput(detail string) error { return degenerateInputError(detail) }
