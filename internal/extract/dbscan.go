package extract

// Density-based instance clustering. A point is a core point when at least
// minPts points (counting itself) lie within eps; clusters are maximal
// sets of points density-connected through core points. Points reachable
// from no core point are noise and dropped.
//
// The partition is deterministic for a given input order and parameters:
// seeds are visited in input order and cluster IDs are assigned in
// discovery order.

// ClusterPoints partitions a cleaned point set into instance candidates.
// In 2D mode points are projected onto the X-Y plane; 3D mode keeps
// elevation so spans at different heights separate.
func ClusterPoints(points []Point, profile ClassProfile) []Cluster {
	if len(points) == 0 {
		return nil
	}

	use3D := profile.ClusterMode == Cluster3D
	idx := newGridIndex(points, profile.ClusterEpsM, use3D)

	const (
		labelUnvisited = 0
		labelNoise     = -1
	)
	labels := make([]int, len(points))
	clusterID := 0

	for i := range points {
		if labels[i] != labelUnvisited {
			continue
		}
		neighbors := idx.neighborsWithin(i, profile.ClusterEpsM)
		// The point itself lies within eps of itself and counts toward
		// the density threshold; neighborsWithin excludes it.
		if len(neighbors)+1 < profile.ClusterMinPoints {
			labels[i] = labelNoise
			continue
		}
		clusterID++
		expandCluster(idx, labels, i, neighbors, clusterID, profile)
	}

	return collectClusters(points, labels, clusterID)
}

// expandCluster grows cluster id outward from the core point at seed using
// a queue of reachable neighbors.
func expandCluster(idx *gridIndex, labels []int, seed int, neighbors []int, id int, profile ClassProfile) {
	labels[seed] = id

	for j := 0; j < len(neighbors); j++ {
		n := neighbors[j]
		if labels[n] == -1 {
			labels[n] = id // noise becomes a border point
		}
		if labels[n] != 0 {
			continue
		}
		labels[n] = id
		next := idx.neighborsWithin(n, profile.ClusterEpsM)
		if len(next)+1 >= profile.ClusterMinPoints {
			neighbors = append(neighbors, next...)
		}
	}
}

func collectClusters(points []Point, labels []int, maxID int) []Cluster {
	if maxID == 0 {
		return nil
	}
	clusters := make([]Cluster, maxID)
	for i := range clusters {
		clusters[i].ID = i + 1
	}
	for i, label := range labels {
		if label > 0 {
			c := &clusters[label-1]
			c.Points = append(c.Points, points[i])
		}
	}
	out := clusters[:0]
	for _, c := range clusters {
		if len(c.Points) > 0 {
			out = append(out, c)
		}
	}
	return out
}
