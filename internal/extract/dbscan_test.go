package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clusterProfile(mode ClusterMode, eps float64, minPts int) ClassProfile {
	return ClassProfile{
		Class:            "test",
		Kind:             KindPolygon,
		ClusterMode:      mode,
		ClusterEpsM:      eps,
		ClusterMinPoints: minPts,
	}
}

// blob returns count points packed within radius 0.5 of (cx, cy, cz).
func blob(cx, cy, cz float64, count int) []Point {
	pts := make([]Point, 0, count)
	for i := 0; i < count; i++ {
		pts = append(pts, Point{
			X: cx + float64(i%3)*0.2,
			Y: cy + float64((i/3)%3)*0.2,
			Z: cz + float64(i/9)*0.2,
		})
	}
	return pts
}

func TestClusterPoints_TwoBlobs(t *testing.T) {
	pts := append(blob(0, 0, 0, 12), blob(20, 20, 0, 12)...)
	clusters := ClusterPoints(pts, clusterProfile(Cluster2D, 1.0, 4))

	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}
	if clusters[0].ID != 1 || clusters[1].ID != 2 {
		t.Errorf("cluster IDs = %d, %d; want 1, 2", clusters[0].ID, clusters[1].ID)
	}
	if len(clusters[0].Points) != 12 || len(clusters[1].Points) != 12 {
		t.Errorf("cluster sizes = %d, %d; want 12, 12",
			len(clusters[0].Points), len(clusters[1].Points))
	}
	// IDs follow input order: the blob at the origin was first.
	if clusters[0].Points[0].X > 10 {
		t.Error("cluster 1 should contain the origin blob")
	}
}

func TestClusterPoints_NoiseDropped(t *testing.T) {
	pts := append(blob(0, 0, 0, 12), Point{X: 100, Y: 100})
	clusters := ClusterPoints(pts, clusterProfile(Cluster2D, 1.0, 4))

	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	total := 0
	for _, c := range clusters {
		total += len(c.Points)
	}
	if total != 12 {
		t.Errorf("clustered %d points, want 12 (noise point must be dropped)", total)
	}
}

func TestClusterPoints_Deterministic(t *testing.T) {
	pts := append(blob(0, 0, 0, 15), blob(8, 3, 0, 15)...)
	pts = append(pts, Point{X: 50, Y: 50})

	first := ClusterPoints(pts, clusterProfile(Cluster2D, 1.2, 5))
	for run := 0; run < 5; run++ {
		again := ClusterPoints(pts, clusterProfile(Cluster2D, 1.2, 5))
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d produced a different partition:\n%s", run, diff)
		}
	}
}

// Two wire spans stacked 6 m apart vertically share X-Y ground tracks. 2D
// clustering merges them; 3D clustering keeps them separate.
func TestClusterPoints_3DSeparatesStackedSpans(t *testing.T) {
	var pts []Point
	for i := 0; i < 30; i++ {
		x := float64(i) * 0.4
		pts = append(pts, Point{X: x, Y: 0, Z: 8})
		pts = append(pts, Point{X: x, Y: 0.1, Z: 14})
	}

	flat := ClusterPoints(pts, clusterProfile(Cluster2D, 1.0, 3))
	if len(flat) != 1 {
		t.Errorf("2D mode: got %d clusters, want 1 (spans share ground track)", len(flat))
	}

	spatial := ClusterPoints(pts, clusterProfile(Cluster3D, 1.0, 3))
	if len(spatial) != 2 {
		t.Errorf("3D mode: got %d clusters, want 2 (spans are 6 m apart)", len(spatial))
	}
}

// A group of exactly min_points mutually-close points must form a cluster:
// the density threshold counts the point itself.
func TestClusterPoints_ExactlyMinPoints(t *testing.T) {
	pts := []Point{
		{X: 0, Y: 0},
		{X: 0.3, Y: 0},
		{X: 0, Y: 0.3},
		{X: 0.3, Y: 0.3},
	}
	clusters := ClusterPoints(pts, clusterProfile(Cluster2D, 1.0, 4))
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	if len(clusters[0].Points) != 4 {
		t.Errorf("cluster has %d points, want all 4", len(clusters[0].Points))
	}

	// One fewer point than the threshold stays noise.
	clusters = ClusterPoints(pts[:3], clusterProfile(Cluster2D, 1.0, 4))
	if len(clusters) != 0 {
		t.Errorf("got %d clusters from 3 points with min_points=4, want 0", len(clusters))
	}
}

func TestClusterPoints_Empty(t *testing.T) {
	if got := ClusterPoints(nil, clusterProfile(Cluster2D, 1.0, 3)); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestClusterPoints_AllNoise(t *testing.T) {
	pts := []Point{{X: 0}, {X: 100}, {X: 200}}
	if got := ClusterPoints(pts, clusterProfile(Cluster2D, 1.0, 3)); len(got) != 0 {
		t.Errorf("expected no clusters from isolated points, got %d", len(got))
	}
}
