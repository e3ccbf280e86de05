package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// GeoJSON encoding of run results. Coordinates are emitted in the same
// projected system the pipeline received; reprojection to WGS84 belongs to
// the downstream serving layer.

type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   geoJSONGeometry        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type geoJSONCollection struct {
	Type       string                 `json:"type"`
	Features   []geoJSONFeature       `json:"features"`
	Properties map[string]interface{} `json:"properties"`
}

// MarshalGeoJSON encodes a run result as a GeoJSON FeatureCollection:
// Polygon features for footprints, LineString features for centerlines,
// run statistics on the collection itself.
func MarshalGeoJSON(result *RunResult) ([]byte, error) {
	features := make([]geoJSONFeature, 0, len(result.Footprints)+len(result.Lines))

	for i, fp := range result.Footprints {
		ring := make([][]float64, len(fp.Ring))
		for j, v := range fp.Ring {
			ring[j] = []float64{v.X, v.Y}
		}
		features = append(features, geoJSONFeature{
			Type:     "Feature",
			Geometry: geoJSONGeometry{Type: "Polygon", Coordinates: [][][]float64{ring}},
			Properties: map[string]interface{}{
				"polygon_id":   i + 1,
				"object_id":    fp.ID,
				"class":        fp.Class,
				"chunk":        fp.Chunk,
				"area_m2":      round2(fp.AreaM2),
				"perimeter_m":  round2(fp.PerimeterM),
				"point_count":  fp.PointCount,
				"aspect_ratio": round2(fp.AspectRatio),
				"method":       fp.Method,
			},
		})
	}

	for i, line := range result.Lines {
		coords := make([][]float64, len(line.Vertices))
		for j, v := range line.Vertices {
			coords[j] = []float64{v.X, v.Y, v.Z}
		}
		features = append(features, geoJSONFeature{
			Type:     "Feature",
			Geometry: geoJSONGeometry{Type: "LineString", Coordinates: coords},
			Properties: map[string]interface{}{
				"line_id":      i + 1,
				"object_id":    line.ID,
				"class":        line.Class,
				"chunk":        line.Chunk,
				"length_m":     round2(line.LengthM),
				"width_m":      round2(line.WidthM),
				"point_count":  line.PointCount,
				"aspect_ratio": round2(line.AspectRatio),
				"min_height_m": round2(line.MinHeightM),
				"max_height_m": round2(line.MaxHeightM),
				"avg_height_m": round2(line.AvgHeightM),
			},
		})
	}

	collection := geoJSONCollection{
		Type:     "FeatureCollection",
		Features: features,
		Properties: map[string]interface{}{
			"class": result.Class,
			"chunk": result.Chunk,
			"results": map[string]interface{}{
				"input_points":   result.Stats.InputPoints,
				"clean_points":   result.Stats.CleanPoints,
				"clusters_found": result.Stats.ClustersFound,
				"accepted":       result.Stats.Accepted,
				"rejected":       result.Stats.Rejected,
			},
		},
	}
	return json.MarshalIndent(collection, "", "  ")
}

// WriteGeoJSON writes a run result to path as a GeoJSON document.
func WriteGeoJSON(path string, result *RunResult) error {
	data, err := MarshalGeoJSON(result)
	if err != nil {
		return fmt.Errorf("marshal geojson for %s/%s: %w", result.Chunk, result.Class, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
