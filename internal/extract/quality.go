package extract

import (
	"fmt"
)

// QualityGate validates candidate geometries against class thresholds and
// against geometries already accepted in the same (chunk, class) scope.
//
// The overlap rule is strict first-accepted-wins: candidates must be
// offered in a fixed deterministic order (ascending cluster ID) and the
// accepted accumulator mutates sequentially. A gate is therefore scoped to
// one run and must not be shared across scopes.
type QualityGate struct {
	profile  ClassProfile
	accepted []Ring
}

// NewQualityGate creates an empty gate for one (chunk, class) scope.
func NewQualityGate(profile ClassProfile) *QualityGate {
	return &QualityGate{profile: profile}
}

// CheckPolygon applies the polygon rules in order: area bounds, bounding
// aspect ratio, overlap with previously accepted polygons. The first
// failing rule wins. Accepted rings join the overlap accumulator.
func (g *QualityGate) CheckPolygon(clusterID int, ring Ring) QualityReport {
	area := ring.Area()
	if area < g.profile.MinAreaM2 {
		return reject(clusterID, ReasonTooSmall, area,
			fmt.Sprintf("area %.1f m² below minimum %.1f m²", area, g.profile.MinAreaM2))
	}
	if area > g.profile.MaxAreaM2 {
		return reject(clusterID, ReasonTooLarge, area,
			fmt.Sprintf("area %.1f m² above maximum %.1f m²", area, g.profile.MaxAreaM2))
	}
	aspect := ring.AspectRatio()
	if aspect > g.profile.MaxAspectRatio {
		return reject(clusterID, ReasonTooElongated, aspect,
			fmt.Sprintf("aspect ratio %.1f:1 above maximum %.1f:1", aspect, g.profile.MaxAspectRatio))
	}
	for _, prior := range g.accepted {
		if ringsOverlap(ring, prior) {
			return reject(clusterID, ReasonOverlap, 0, "intersects a previously accepted footprint")
		}
	}
	g.accepted = append(g.accepted, ring)
	return QualityReport{ClusterID: clusterID, Accepted: true}
}

// CheckLine applies the line rules in order: length, aspect ratio, point
// count. Lines carry no overlap rule; parallel spans are legitimate.
func (g *QualityGate) CheckLine(line *LineGeometry) QualityReport {
	if line.LengthM < g.profile.MinLengthM {
		return reject(line.ClusterID, ReasonTooShort, line.LengthM,
			fmt.Sprintf("length %.1f m below minimum %.1f m", line.LengthM, g.profile.MinLengthM))
	}
	if line.AspectRatio < g.profile.MinAspectRatio {
		return reject(line.ClusterID, ReasonNotLinear, line.AspectRatio,
			fmt.Sprintf("aspect ratio %.1f:1 below minimum %.1f:1", line.AspectRatio, g.profile.MinAspectRatio))
	}
	if line.PointCount < g.profile.MinPoints {
		return reject(line.ClusterID, ReasonTooFewPoints, float64(line.PointCount),
			fmt.Sprintf("%d points below minimum %d", line.PointCount, g.profile.MinPoints))
	}
	return QualityReport{ClusterID: line.ClusterID, Accepted: true}
}

func reject(clusterID int, reason string, value float64, detail string) QualityReport {
	return QualityReport{ClusterID: clusterID, Reason: reason, Value: value, Detail: detail}
}

// ringsOverlap reports whether two closed rings share nonzero area: either
// an edge of one properly crosses an edge of the other, or a vertex of one
// lies strictly inside the other. Shared boundaries alone do not count as
// overlap.
func ringsOverlap(a, b Ring) bool {
	aMinX, aMinY, aMaxX, aMaxY := a.Bounds()
	bMinX, bMinY, bMaxX, bMaxY := b.Bounds()
	if aMaxX < bMinX || aMinX > bMaxX || aMaxY < bMinY || aMinY > bMaxY {
		return false
	}

	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			if segmentsCross(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	for _, v := range a[:len(a)-1] {
		if !pointOnRing(v, b) && pointInRing(v, b) {
			return true
		}
	}
	for _, v := range b[:len(b)-1] {
		if !pointOnRing(v, a) && pointInRing(v, a) {
			return true
		}
	}
	// Coincident rings have no proper crossings and no strictly interior
	// vertices; the centroid test still catches them.
	if pointInRing(centroid(a), b) || pointInRing(centroid(b), a) {
		return true
	}
	return false
}

// centroid is the vertex average over the open portion of the ring. For the
// convex and near-convex rings the builders produce it is strictly interior.
func centroid(ring Ring) Point2 {
	var cx, cy float64
	n := len(ring) - 1
	for _, v := range ring[:n] {
		cx += v.X
		cy += v.Y
	}
	return Point2{X: cx / float64(n), Y: cy / float64(n)}
}

// pointOnRing reports whether p lies on any edge of the ring.
func pointOnRing(p Point2, ring Ring) bool {
	for i := 0; i < len(ring)-1; i++ {
		a := ring[i]
		b := ring[i+1]
		if cross(a, b, p) != 0 {
			continue
		}
		if p.X < min(a.X, b.X) || p.X > max(a.X, b.X) ||
			p.Y < min(a.Y, b.Y) || p.Y > max(a.Y, b.Y) {
			continue
		}
		return true
	}
	return false
}

// segmentsCross reports whether segments p1-p2 and q1-q2 properly
// intersect, i.e. cross at a single interior point of both.
func segmentsCross(p1, p2, q1, q2 Point2) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// pointInRing reports whether p lies strictly inside the closed ring using
// an even-odd ray cast.
func pointInRing(p Point2, ring Ring) bool {
	inside := false
	for i := 0; i < len(ring)-1; i++ {
		a := ring[i]
		b := ring[i+1]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}
