package extract

import (
	"fmt"
)

// GeometryKind selects which builder a class routes through.
type GeometryKind string

const (
	// KindPolygon routes clusters through the footprint builder and
	// simplifier (buildings, vegetation, masts).
	KindPolygon GeometryKind = "polygon"
	// KindLine routes clusters through the principal-direction line
	// builder (wires and similar spans).
	KindLine GeometryKind = "line"
)

// ClusterMode selects the distance metric used for density clustering.
type ClusterMode string

const (
	// Cluster2D projects points onto the X-Y plane before clustering.
	// Used for compact area classes.
	Cluster2D ClusterMode = "2d"
	// Cluster3D retains elevation so spans at different heights separate
	// and wire sag is followed.
	Cluster3D ClusterMode = "3d"
)

// ClassProfile holds every tunable for one semantic class. A profile is
// passed explicitly into each pipeline invocation; there is no process-wide
// parameter state.
type ClassProfile struct {
	Class string       `json:"class"`
	Kind  GeometryKind `json:"kind"`

	// Preprocessing.
	VoxelSizeM             float64 `json:"voxel_size_m"`
	HeightPercentile       float64 `json:"height_percentile"`
	OutlierK               int     `json:"outlier_k"`
	OutlierSigmaMultiplier float64 `json:"outlier_sigma_multiplier"`

	// Clustering.
	ClusterMode      ClusterMode `json:"cluster_mode"`
	ClusterEpsM      float64     `json:"cluster_eps_m"`
	ClusterMinPoints int         `json:"cluster_min_points"`

	// Footprint construction (polygon kinds).
	HullAlphaM            float64 `json:"hull_alpha_m"`
	HullNeighborThreshold int     `json:"hull_neighbor_threshold"`
	SimplifyToleranceM    float64 `json:"simplify_tolerance_m"`

	// Polygon quality thresholds.
	MinAreaM2      float64 `json:"min_area_m2"`
	MaxAreaM2      float64 `json:"max_area_m2"`
	MaxAspectRatio float64 `json:"max_aspect_ratio"`

	// Line construction and quality thresholds (line kinds).
	MinLengthM      float64 `json:"min_length_m"`
	MinAspectRatio  float64 `json:"min_aspect_ratio"`
	MinPoints       int     `json:"min_points"`
	MaxSamplePoints int     `json:"max_sample_points"`
}

// Validate checks the profile for values the pipeline cannot run with.
func (p *ClassProfile) Validate() error {
	if p.Class == "" {
		return fmt.Errorf("class name is required")
	}
	if p.Kind != KindPolygon && p.Kind != KindLine {
		return fmt.Errorf("unknown geometry kind %q", p.Kind)
	}
	if p.VoxelSizeM <= 0 {
		return fmt.Errorf("voxel_size_m must be positive, got %g", p.VoxelSizeM)
	}
	if p.HeightPercentile < 0 || p.HeightPercentile >= 100 {
		return fmt.Errorf("height_percentile must be in [0, 100), got %g", p.HeightPercentile)
	}
	if p.OutlierK < 1 {
		return fmt.Errorf("outlier_k must be at least 1, got %d", p.OutlierK)
	}
	if p.OutlierSigmaMultiplier <= 0 {
		return fmt.Errorf("outlier_sigma_multiplier must be positive, got %g", p.OutlierSigmaMultiplier)
	}
	if p.ClusterMode != Cluster2D && p.ClusterMode != Cluster3D {
		return fmt.Errorf("unknown cluster mode %q", p.ClusterMode)
	}
	if p.ClusterEpsM <= 0 {
		return fmt.Errorf("cluster_eps_m must be positive, got %g", p.ClusterEpsM)
	}
	if p.ClusterMinPoints < 1 {
		return fmt.Errorf("cluster_min_points must be at least 1, got %d", p.ClusterMinPoints)
	}
	switch p.Kind {
	case KindPolygon:
		if p.HullAlphaM <= 0 {
			return fmt.Errorf("hull_alpha_m must be positive, got %g", p.HullAlphaM)
		}
		if p.HullNeighborThreshold < 1 {
			return fmt.Errorf("hull_neighbor_threshold must be at least 1, got %d", p.HullNeighborThreshold)
		}
		if p.SimplifyToleranceM < 0 {
			return fmt.Errorf("simplify_tolerance_m must not be negative, got %g", p.SimplifyToleranceM)
		}
		if p.MinAreaM2 < 0 || p.MaxAreaM2 <= p.MinAreaM2 {
			return fmt.Errorf("area bounds invalid: [%g, %g]", p.MinAreaM2, p.MaxAreaM2)
		}
		if p.MaxAspectRatio < 1 {
			return fmt.Errorf("max_aspect_ratio must be at least 1, got %g", p.MaxAspectRatio)
		}
	case KindLine:
		if p.MinLengthM <= 0 {
			return fmt.Errorf("min_length_m must be positive, got %g", p.MinLengthM)
		}
		if p.MinAspectRatio < 1 {
			return fmt.Errorf("min_aspect_ratio must be at least 1, got %g", p.MinAspectRatio)
		}
		if p.MinPoints < 2 {
			return fmt.Errorf("min_points must be at least 2, got %d", p.MinPoints)
		}
		if p.MaxSamplePoints < 2 {
			return fmt.Errorf("max_sample_points must be at least 2, got %d", p.MaxSamplePoints)
		}
	}
	return nil
}

// DefaultProfiles returns the tuned per-class parameter table. Voxel sizes,
// percentiles, clustering radii and quality bounds come from production
// tuning on urban survey chunks: buildings cluster tightly with strict size
// bounds, vegetation tolerates elongation, wires cluster in 3D to separate
// stacked spans.
func DefaultProfiles() map[string]ClassProfile {
	profiles := []ClassProfile{
		{
			Class:                  "6_Buildings",
			Kind:                   KindPolygon,
			VoxelSizeM:             0.25,
			HeightPercentile:       25,
			OutlierK:               10,
			OutlierSigmaMultiplier: 1.2,
			ClusterMode:            Cluster2D,
			ClusterEpsM:            2.0,
			ClusterMinPoints:       400,
			HullAlphaM:             3.0,
			HullNeighborThreshold:  8,
			SimplifyToleranceM:     0.5,
			MinAreaM2:              40,
			MaxAreaM2:              500,
			MaxAspectRatio:         8,
		},
		{
			Class:                  "7_Trees",
			Kind:                   KindPolygon,
			VoxelSizeM:             0.4,
			HeightPercentile:       20,
			OutlierK:               10,
			OutlierSigmaMultiplier: 1.5,
			ClusterMode:            Cluster2D,
			ClusterEpsM:            4.0,
			ClusterMinPoints:       80,
			HullAlphaM:             3.0,
			HullNeighborThreshold:  8,
			SimplifyToleranceM:     0.5,
			MinAreaM2:              10,
			MaxAreaM2:              2000,
			MaxAspectRatio:         15,
		},
		{
			Class:                  "8_OtherVegetation",
			Kind:                   KindPolygon,
			VoxelSizeM:             0.4,
			HeightPercentile:       20,
			OutlierK:               10,
			OutlierSigmaMultiplier: 1.5,
			ClusterMode:            Cluster2D,
			ClusterEpsM:            4.0,
			ClusterMinPoints:       80,
			HullAlphaM:             3.0,
			HullNeighborThreshold:  8,
			SimplifyToleranceM:     0.5,
			MinAreaM2:              10,
			MaxAreaM2:              2000,
			MaxAspectRatio:         15,
		},
		{
			Class:                  "11_Wires",
			Kind:                   KindLine,
			VoxelSizeM:             0.2,
			HeightPercentile:       10,
			OutlierK:               8,
			OutlierSigmaMultiplier: 2.5,
			ClusterMode:            Cluster3D,
			ClusterEpsM:            5.0,
			ClusterMinPoints:       30,
			MinLengthM:             5,
			MinAspectRatio:         3,
			MinPoints:              20,
			MaxSamplePoints:        50,
		},
		{
			Class:                  "12_Masts",
			Kind:                   KindPolygon,
			VoxelSizeM:             0.2,
			HeightPercentile:       10,
			OutlierK:               8,
			OutlierSigmaMultiplier: 2.0,
			ClusterMode:            Cluster2D,
			ClusterEpsM:            2.0,
			ClusterMinPoints:       15,
			HullAlphaM:             1.5,
			HullNeighborThreshold:  8,
			SimplifyToleranceM:     0.2,
			MinAreaM2:              0.5,
			MaxAreaM2:              30,
			MaxAspectRatio:         4,
		},
	}

	table := make(map[string]ClassProfile, len(profiles))
	for _, p := range profiles {
		table[p.Class] = p
	}
	return table
}
