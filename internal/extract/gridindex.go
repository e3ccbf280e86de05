package extract

import (
	"math"
	"sort"
)

// gridIndex provides neighbor queries over a point slice using a uniform
// hash grid. Cell size should approximately match the query radius. In 2D
// mode the Z coordinate is ignored for both cell assignment and distance.
//
// Neighbor results are deterministic: cells are scanned in a fixed loop
// order and each cell holds indices in input order.
type gridIndex struct {
	cellSize float64
	use3D    bool
	points   []Point
	cells    map[gridCell][]int
}

type gridCell struct {
	x, y, z int32
}

const estimatedPointsPerCell = 4

func newGridIndex(points []Point, cellSize float64, use3D bool) *gridIndex {
	g := &gridIndex{
		cellSize: cellSize,
		use3D:    use3D,
		points:   points,
		cells:    make(map[gridCell][]int, len(points)/estimatedPointsPerCell+1),
	}
	for i, p := range points {
		c := g.cellOf(p)
		g.cells[c] = append(g.cells[c], i)
	}
	return g
}

func (g *gridIndex) cellOf(p Point) gridCell {
	c := gridCell{
		x: int32(math.Floor(p.X / g.cellSize)),
		y: int32(math.Floor(p.Y / g.cellSize)),
	}
	if g.use3D {
		c.z = int32(math.Floor(p.Z / g.cellSize))
	}
	return c
}

func (g *gridIndex) dist2(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	d2 := dx*dx + dy*dy
	if g.use3D {
		dz := a.Z - b.Z
		d2 += dz * dz
	}
	return d2
}

// neighborsWithin returns indices of all points within radius of points[idx],
// excluding idx itself, in deterministic order.
func (g *gridIndex) neighborsWithin(idx int, radius float64) []int {
	p := g.points[idx]
	center := g.cellOf(p)
	reach := int32(math.Ceil(radius / g.cellSize))
	r2 := radius * radius

	var zLo, zHi int32
	if g.use3D {
		zLo, zHi = -reach, reach
	}

	var neighbors []int
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := zLo; dz <= zHi; dz++ {
				cell := gridCell{x: center.x + dx, y: center.y + dy, z: center.z + dz}
				for _, j := range g.cells[cell] {
					if j == idx {
						continue
					}
					if g.dist2(p, g.points[j]) <= r2 {
						neighbors = append(neighbors, j)
					}
				}
			}
		}
	}
	return neighbors
}

// countWithin returns the number of points within radius of points[idx],
// excluding idx itself.
func (g *gridIndex) countWithin(idx int, radius float64) int {
	p := g.points[idx]
	center := g.cellOf(p)
	reach := int32(math.Ceil(radius / g.cellSize))
	r2 := radius * radius

	var zLo, zHi int32
	if g.use3D {
		zLo, zHi = -reach, reach
	}

	count := 0
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := zLo; dz <= zHi; dz++ {
				cell := gridCell{x: center.x + dx, y: center.y + dy, z: center.z + dz}
				for _, j := range g.cells[cell] {
					if j == idx {
						continue
					}
					if g.dist2(p, g.points[j]) <= r2 {
						count++
					}
				}
			}
		}
	}
	return count
}

// meanKNearestDist returns the mean distance from points[idx] to its k
// nearest neighbors. The scan expands ring by ring until the kth neighbor
// is provably inside the scanned area. Requires len(points) > k.
func (g *gridIndex) meanKNearestDist(idx, k int) float64 {
	if len(g.points) <= 1 {
		return 0
	}
	p := g.points[idx]
	center := g.cellOf(p)

	var dists []float64
	seenReach := int32(0)
	for reach := int32(1); ; reach++ {
		dists = dists[:0]
		var zLo, zHi int32
		if g.use3D {
			zLo, zHi = -reach, reach
		}
		for dx := -reach; dx <= reach; dx++ {
			for dy := -reach; dy <= reach; dy++ {
				for dz := zLo; dz <= zHi; dz++ {
					cell := gridCell{x: center.x + dx, y: center.y + dy, z: center.z + dz}
					for _, j := range g.cells[cell] {
						if j == idx {
							continue
						}
						dists = append(dists, math.Sqrt(g.dist2(p, g.points[j])))
					}
				}
			}
		}
		seenReach = reach
		if len(dists) >= k {
			sort.Float64s(dists)
			// The kth distance must fit inside the guaranteed-covered
			// radius, otherwise a closer point could hide one ring out.
			covered := float64(seenReach) * g.cellSize
			if dists[k-1] <= covered {
				break
			}
		}
		// Stop expanding once the scan covers every occupied cell.
		if int(reach)*2+1 > g.spanCells() {
			sort.Float64s(dists)
			break
		}
	}

	if len(dists) == 0 {
		return 0
	}
	if len(dists) > k {
		dists = dists[:k]
	}
	var sum float64
	for _, d := range dists {
		sum += d
	}
	return sum / float64(len(dists))
}

// spanCells returns the cell count of the widest grid axis.
func (g *gridIndex) spanCells() int {
	if len(g.cells) == 0 {
		return 0
	}
	var minX, maxX, minY, maxY, minZ, maxZ int32
	first := true
	for c := range g.cells {
		if first {
			minX, maxX, minY, maxY, minZ, maxZ = c.x, c.x, c.y, c.y, c.z, c.z
			first = false
			continue
		}
		if c.x < minX {
			minX = c.x
		}
		if c.x > maxX {
			maxX = c.x
		}
		if c.y < minY {
			minY = c.y
		}
		if c.y > maxY {
			maxY = c.y
		}
		if c.z < minZ {
			minZ = c.z
		}
		if c.z > maxZ {
			maxZ = c.z
		}
	}
	span := int(maxX-minX) + 1
	if s := int(maxY-minY) + 1; s > span {
		span = s
	}
	if s := int(maxZ-minZ) + 1; s > span {
		span = s
	}
	return span
}
