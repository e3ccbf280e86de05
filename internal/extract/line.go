package extract

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// BuildLine fits an ordered centerline through a 3D cluster. The principal
// direction is the eigenvector of the larger eigenvalue of the X-Y
// covariance matrix; length and width are the projection extents along and
// across it. The output vertices are up to MaxSamplePoints evenly spaced
// samples of the projection-sorted original points, so the line keeps its
// natural sag while the ordering comes from the 1D projection.
//
// Height statistics cover the entire cluster, not just the sampled
// vertices. Threshold checks (length, aspect, point count) belong to the
// quality gate, not this builder.
func BuildLine(c *Cluster, profile ClassProfile) (*LineGeometry, error) {
	n := len(c.Points)
	if n < 2 {
		return nil, &DegenerateGeometryError{ClusterID: c.ID, Stage: "line", Detail: "fewer than 2 points"}
	}

	var meanX, meanY float64
	for _, p := range c.Points {
		meanX += p.X
		meanY += p.Y
	}
	nf := float64(n)
	meanX /= nf
	meanY /= nf

	var c00, c01, c11 float64
	for _, p := range c.Points {
		dx := p.X - meanX
		dy := p.Y - meanY
		c00 += dx * dx
		c01 += dx * dy
		c11 += dy * dy
	}
	c00 /= nf
	c01 /= nf
	c11 /= nf

	dirX, dirY, err := principalDirection(c00, c01, c11)
	if err != nil {
		return nil, &DegenerateGeometryError{ClusterID: c.ID, Stage: "line", Detail: err.Error()}
	}

	projections := make([]float64, n)
	minProj, maxProj := math.MaxFloat64, -math.MaxFloat64
	minPerp, maxPerp := math.MaxFloat64, -math.MaxFloat64
	for i, p := range c.Points {
		dx := p.X - meanX
		dy := p.Y - meanY
		along := dx*dirX + dy*dirY
		across := dx*(-dirY) + dy*dirX
		projections[i] = along
		minProj = math.Min(minProj, along)
		maxProj = math.Max(maxProj, along)
		minPerp = math.Min(minPerp, across)
		maxPerp = math.Max(maxPerp, across)
	}

	length := maxProj - minProj
	if length <= hullEpsilon {
		return nil, &DegenerateGeometryError{ClusterID: c.ID, Stage: "line", Detail: "zero extent along principal direction"}
	}
	width := maxPerp - minPerp
	aspect := length / math.Max(width, aspectEpsilon)

	// Order original indices along the line. Projection ties break on
	// index so the ordering is deterministic.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return projections[order[i]] < projections[order[j]]
	})

	sampleCount := profile.MaxSamplePoints
	if sampleCount <= 0 || sampleCount > n {
		sampleCount = n
	}
	vertices := make([]Point, 0, sampleCount)
	for i := 0; i < sampleCount; i++ {
		var pos int
		if sampleCount == 1 {
			pos = 0
		} else {
			pos = int(math.Round(float64(i) * float64(n-1) / float64(sampleCount-1)))
		}
		vertices = append(vertices, c.Points[order[pos]])
	}

	minZ, maxZ := math.MaxFloat64, -math.MaxFloat64
	var sumZ float64
	for _, p := range c.Points {
		minZ = math.Min(minZ, p.Z)
		maxZ = math.Max(maxZ, p.Z)
		sumZ += p.Z
	}

	return &LineGeometry{
		ClusterID:   c.ID,
		Vertices:    vertices,
		LengthM:     length,
		WidthM:      width,
		AspectRatio: aspect,
		MinHeightM:  minZ,
		MaxHeightM:  maxZ,
		AvgHeightM:  sumZ / nf,
		PointCount:  n,
	}, nil
}

// principalDirection eigendecomposes the symmetric 2x2 covariance matrix
// [c00 c01; c01 c11] and returns the unit eigenvector of the larger
// eigenvalue.
func principalDirection(c00, c01, c11 float64) (float64, float64, error) {
	cov := mat.NewSymDense(2, []float64{c00, c01, c01, c11})

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return 0, 0, errDegenerateInput("covariance eigendecomposition failed")
	}

	// EigenSym orders eigenvalues ascending; the principal direction is
	// the last column.
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	dirX := vecs.At(0, 1)
	dirY := vecs.At(1, 1)

	mag := math.Hypot(dirX, dirY)
	if mag <= hullEpsilon {
		return 0, 0, errDegenerateInput("zero principal eigenvector")
	}
	return dirX / mag, dirY / mag, nil
}
