package extract

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Preprocess denoises and downsamples a raw point set before clustering.
// It applies, in order: voxel-grid downsampling, height-percentile
// filtering, and statistical outlier removal. The input slice is never
// mutated; callers may release the raw point set once this returns.
//
// The result preserves input order, so identical input yields identical
// output.
func Preprocess(ps PointSet, profile ClassProfile) PointSet {
	pts := voxelDownsample(ps.Points, profile.VoxelSizeM)
	pts = heightFilter(pts, profile.HeightPercentile)
	pts = removeOutliers(pts, profile.OutlierK, profile.OutlierSigmaMultiplier)
	return PointSet{Chunk: ps.Chunk, Class: ps.Class, Points: pts}
}

// voxelDownsample partitions space into cubes of side size and keeps the
// first point encountered in each occupied cube. Typical reduction on dense
// survey chunks is 90-97%.
func voxelDownsample(points []Point, size float64) []Point {
	if len(points) == 0 {
		return nil
	}
	seen := make(map[gridCell]struct{}, len(points)/estimatedPointsPerCell+1)
	out := make([]Point, 0, len(points)/8+1)
	for _, p := range points {
		c := gridCell{
			x: int32(math.Floor(p.X / size)),
			y: int32(math.Floor(p.Y / size)),
			z: int32(math.Floor(p.Z / size)),
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, p)
	}
	return out
}

// heightFilter drops points whose elevation falls below the given
// percentile of the set's Z values. This strips ground clutter; the
// percentile is class-tuned (10th for wires, 25th for buildings).
func heightFilter(points []Point, percentile float64) []Point {
	if len(points) == 0 || percentile <= 0 {
		return points
	}
	zs := make([]float64, len(points))
	for i, p := range points {
		zs[i] = p.Z
	}
	sort.Float64s(zs)
	threshold := stat.Quantile(percentile/100, stat.Empirical, zs, nil)

	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Z >= threshold {
			out = append(out, p)
		}
	}
	return out
}

// removeOutliers drops points whose mean distance to their k nearest X-Y
// neighbors exceeds the global mean by more than sigma standard deviations.
// If fewer than k+1 points remain the step is skipped entirely so sparse
// sets pass through unchanged.
func removeOutliers(points []Point, k int, sigma float64) []Point {
	if len(points) < k+1 {
		return points
	}

	idx := newGridIndex(points, outlierCellSize(points), false)
	meanDists := make([]float64, len(points))
	for i := range points {
		meanDists[i] = idx.meanKNearestDist(i, k)
	}

	mean, std := stat.MeanStdDev(meanDists, nil)
	threshold := mean + sigma*std

	out := make([]Point, 0, len(points))
	for i, p := range points {
		if meanDists[i] <= threshold {
			out = append(out, p)
		}
	}
	return out
}

// outlierCellSize derives a neighbor-search cell size from point density so
// the expanding ring scan terminates quickly on both dense and sparse sets.
func outlierCellSize(points []Point) float64 {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	area := (maxX - minX) * (maxY - minY)
	if area <= 0 {
		return 0.5
	}
	size := 2 * math.Sqrt(area/float64(len(points)))
	if size < 0.5 {
		size = 0.5
	}
	return size
}
