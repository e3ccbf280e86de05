package extract

import (
	"errors"
	"io"
	"log"
	"testing"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// buildingProfile is a small-scale polygon profile so tests run on modest
// synthetic clusters instead of survey-sized ones.
func buildingProfile() ClassProfile {
	return ClassProfile{
		Class:                  "building",
		Kind:                   KindPolygon,
		VoxelSizeM:             0.25,
		HeightPercentile:       0,
		OutlierK:               4,
		OutlierSigmaMultiplier: 5.0,
		ClusterMode:            Cluster2D,
		ClusterEpsM:            1.0,
		ClusterMinPoints:       4,
		HullAlphaM:             2.0,
		HullNeighborThreshold:  8,
		SimplifyToleranceM:     0.1,
		MinAreaM2:              10,
		MaxAreaM2:              500,
		MaxAspectRatio:         8,
	}
}

func testProfiles() map[string]ClassProfile {
	p := buildingProfile()
	return map[string]ClassProfile{p.Class: p}
}

// buildingSet is a dense half-metre grid covering w x h metres at z = 5.
func buildingSet(chunk string, w, h float64) PointSet {
	ps := PointSet{Chunk: chunk, Class: "building"}
	for x := 0.0; x <= w; x += 0.5 {
		for y := 0.0; y <= h; y += 0.5 {
			ps.Points = append(ps.Points, Point{X: x, Y: y, Z: 5})
		}
	}
	return ps
}

func TestPipeline_Run_AcceptsBuilding(t *testing.T) {
	pl := NewPipeline(testProfiles(), quietLogger())
	result, err := pl.Run(buildingSet("c1", 20, 10))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Stats.Accepted != 1 {
		t.Fatalf("accepted = %d, want 1 (stats: %+v)", result.Stats.Accepted, result.Stats)
	}
	if len(result.Footprints) != 1 {
		t.Fatalf("got %d footprints, want 1", len(result.Footprints))
	}

	fp := result.Footprints[0]
	if fp.ID == "" {
		t.Error("footprint has no ID")
	}
	if fp.Chunk != "c1" || fp.Class != "building" {
		t.Errorf("footprint scope = %s/%s, want c1/building", fp.Chunk, fp.Class)
	}
	if fp.AreaM2 < 150 || fp.AreaM2 > 250 {
		t.Errorf("area = %g, want ~200", fp.AreaM2)
	}
	if !fp.Ring.Valid() {
		t.Error("footprint ring is not closed")
	}
	if result.Stats.ExtractionMethods[fp.Method] != 1 {
		t.Errorf("method %q not counted in stats: %+v", fp.Method, result.Stats.ExtractionMethods)
	}
}

func TestPipeline_Run_TinyClusterRejectedAsDegenerate(t *testing.T) {
	profile := buildingProfile()
	profile.ClusterMinPoints = 1
	pl := NewPipeline(map[string]ClassProfile{profile.Class: profile}, quietLogger())

	ps := PointSet{
		Chunk:  "c1",
		Class:  "building",
		Points: []Point{{X: 0, Y: 0, Z: 5}, {X: 0.6, Y: 0.6, Z: 5}},
	}
	result, err := pl.Run(ps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Stats.Accepted != 0 {
		t.Errorf("accepted = %d, want 0", result.Stats.Accepted)
	}
	if result.Stats.RejectedByReason[ReasonDegenerate] != 1 {
		t.Errorf("degenerate rejections = %d, want 1 (stats: %+v)",
			result.Stats.RejectedByReason[ReasonDegenerate], result.Stats)
	}
	if len(result.Rejections) != 1 {
		t.Fatalf("got %d rejection records, want 1", len(result.Rejections))
	}
	if result.Rejections[0].Reason != ReasonDegenerate {
		t.Errorf("rejection reason = %q, want %q", result.Rejections[0].Reason, ReasonDegenerate)
	}
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	pl := NewPipeline(testProfiles(), quietLogger())
	result, err := pl.Run(PointSet{Chunk: "c1", Class: "building"})
	if err != nil {
		t.Fatalf("empty input must not fail the run: %v", err)
	}
	if result.Stats.Accepted != 0 || result.Stats.ClustersFound != 0 {
		t.Errorf("empty input produced geometry: %+v", result.Stats)
	}
}

func TestPipeline_Run_UnknownClass(t *testing.T) {
	pl := NewPipeline(testProfiles(), quietLogger())
	_, err := pl.Run(PointSet{Chunk: "c1", Class: "nope", Points: []Point{{X: 1}}})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *ConfigurationError", err)
	}
}

func TestPipeline_Run_InvalidProfile(t *testing.T) {
	profile := buildingProfile()
	profile.VoxelSizeM = 0
	pl := NewPipeline(map[string]ClassProfile{profile.Class: profile}, quietLogger())

	_, err := pl.Run(PointSet{Chunk: "c1", Class: "building", Points: []Point{{X: 1}}})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *ConfigurationError", err)
	}
}

func TestPipeline_Run_WireSpan(t *testing.T) {
	profile := DefaultProfiles()["11_Wires"]
	profile.ClusterMinPoints = 3
	profile.MinPoints = 10
	pl := NewPipeline(map[string]ClassProfile{"11_Wires": profile}, quietLogger())

	ps := PointSet{Chunk: "c2", Class: "11_Wires"}
	for i := 0; i < 60; i++ {
		ps.Points = append(ps.Points, Point{X: float64(i) * 0.5, Y: 0, Z: 9})
	}

	result, err := pl.Run(ps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Kind != KindLine {
		t.Errorf("result kind = %q, want %q", result.Kind, KindLine)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("got %d lines, want 1 (rejections: %+v)", len(result.Lines), result.Rejections)
	}
	line := result.Lines[0]
	if line.ID == "" {
		t.Error("line has no ID")
	}
	if line.LengthM < 25 {
		t.Errorf("length = %g, want >= 25", line.LengthM)
	}
	if result.Stats.TotalLengthM != line.LengthM {
		t.Errorf("stats total length %g != line length %g", result.Stats.TotalLengthM, line.LengthM)
	}
}

func TestPipeline_RunAll_OrderAndErrors(t *testing.T) {
	pl := NewPipeline(testProfiles(), quietLogger())
	sets := []PointSet{
		buildingSet("a", 15, 10),
		{Chunk: "b", Class: "missing", Points: []Point{{X: 1}}},
		buildingSet("c", 15, 10),
	}

	results, err := pl.RunAll(sets, 2)
	if err == nil {
		t.Fatal("expected an error for the unconfigured class")
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0] == nil || results[0].Chunk != "a" {
		t.Errorf("results[0] = %+v, want chunk a", results[0])
	}
	if results[1] != nil {
		t.Errorf("failed run should yield a nil result, got %+v", results[1])
	}
	if results[2] == nil || results[2].Chunk != "c" {
		t.Errorf("results[2] = %+v, want chunk c", results[2])
	}
}
