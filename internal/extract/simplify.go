package extract

import (
	"math"
)

// SimplifyRing reduces the vertex count of a closed ring with the
// Douglas-Peucker algorithm, treating the ring as an open path from its
// first to its last vertex. Output vertices are always a subset of the
// input, the endpoints are always retained (so closure is preserved), and
// the vertex count never increases with tolerance.
//
// A result with fewer than 4 vertices no longer bounds area and is reported
// as a degenerate failure for the cluster.
func SimplifyRing(ring Ring, tolerance float64, clusterID int) (Ring, error) {
	if !ring.Valid() {
		return nil, &DegenerateGeometryError{ClusterID: clusterID, Stage: "simplify", Detail: "input ring not closed"}
	}
	if tolerance <= 0 {
		return ring, nil
	}

	keep := douglasPeucker(ring, tolerance)
	out := make(Ring, 0, len(ring))
	for i, kept := range keep {
		if kept {
			out = append(out, ring[i])
		}
	}
	if len(out) < 4 {
		return nil, &DegenerateGeometryError{ClusterID: clusterID, Stage: "simplify", Detail: "ring collapsed below 4 vertices"}
	}
	return out, nil
}

// douglasPeucker marks the vertices to retain. It uses an explicit stack of
// segment ranges rather than recursion so pathological high-vertex rings
// cannot exhaust the call stack.
func douglasPeucker(pts []Point2, tolerance float64) []bool {
	keep := make([]bool, len(pts))
	keep[0] = true
	keep[len(pts)-1] = true

	type span struct{ first, last int }
	stack := []span{{0, len(pts) - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.last-s.first < 2 {
			continue
		}

		maxDist := 0.0
		maxIdx := s.first
		for i := s.first + 1; i < s.last; i++ {
			d := perpendicularDistance(pts[i], pts[s.first], pts[s.last])
			if d > maxDist {
				maxDist = d
				maxIdx = i
			}
		}

		if maxDist > tolerance {
			keep[maxIdx] = true
			stack = append(stack, span{s.first, maxIdx}, span{maxIdx, s.last})
		}
	}
	return keep
}

// perpendicularDistance returns the distance from p to the infinite line
// through a and b. Coincident endpoints degrade to point distance, which is
// what makes closed rings (first == last) split on their farthest vertex.
func perpendicularDistance(p, a, b Point2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	den := math.Hypot(dx, dy)
	if den == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	return num / den
}
