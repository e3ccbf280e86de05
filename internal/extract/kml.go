package extract

import (
	"fmt"
	"io"
	"os"

	"github.com/twpayne/go-kml/v2"
)

// WriteKML renders a run result as a KML document: one Placemark per
// accepted geometry, Polygon for footprints and LineString for
// centerlines. Coordinates pass through untransformed, so consumers that
// need WGS84 must reproject first, exactly as with the GeoJSON output.
func WriteKML(w io.Writer, result *RunResult) error {
	var placemarks []kml.Element

	for i, fp := range result.Footprints {
		coords := make([]kml.Coordinate, len(fp.Ring))
		for j, v := range fp.Ring {
			coords[j] = kml.Coordinate{Lon: v.X, Lat: v.Y}
		}
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(fmt.Sprintf("%s %s footprint %d", result.Chunk, result.Class, i+1)),
			kml.Description(fmt.Sprintf("area %.1f m², perimeter %.1f m, %d points",
				fp.AreaM2, fp.PerimeterM, fp.PointCount)),
			kml.Polygon(
				kml.OuterBoundaryIs(
					kml.LinearRing(kml.Coordinates(coords...)),
				),
			),
		))
	}

	for i, line := range result.Lines {
		coords := make([]kml.Coordinate, len(line.Vertices))
		for j, v := range line.Vertices {
			coords[j] = kml.Coordinate{Lon: v.X, Lat: v.Y, Alt: v.Z}
		}
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(fmt.Sprintf("%s %s line %d", result.Chunk, result.Class, i+1)),
			kml.Description(fmt.Sprintf("length %.1f m, aspect %.1f:1, %d points",
				line.LengthM, line.AspectRatio, line.PointCount)),
			kml.LineString(kml.Coordinates(coords...)),
		))
	}

	doc := kml.KML(kml.Document(placemarks...))
	return doc.WriteIndent(w, "", "  ")
}

// WriteKMLFile writes a run result to path as KML.
func WriteKMLFile(path string, result *RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create kml file: %w", err)
	}
	if err := WriteKML(f, result); err != nil {
		f.Close()
		return fmt.Errorf("write kml for %s/%s: %w", result.Chunk, result.Class, err)
	}
	return f.Close()
}
