package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/groundplan/internal/extract"
)

func sampleResults() []*extract.RunResult {
	return []*extract.RunResult{
		{
			Chunk: "c1",
			Class: "6_Buildings",
			Kind:  extract.KindPolygon,
			Footprints: []extract.FootprintGeometry{{
				ID:    "fp-1",
				Ring:  extract.Ring{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}},
				Class: "6_Buildings",
				Chunk: "c1",
			}},
			Stats: extract.RunStats{
				Accepted: 1,
				Rejected: 2,
				RejectedByReason: map[string]int{
					extract.ReasonTooSmall: 1,
					extract.ReasonOverlap:  1,
				},
			},
		},
		{
			Chunk: "c1",
			Class: "11_Wires",
			Kind:  extract.KindLine,
			Lines: []extract.LineGeometry{{
				ID:       "ln-1",
				Vertices: []extract.Point{{X: 0, Y: 5, Z: 9}, {X: 15, Y: 5.1, Z: 8.5}, {X: 30, Y: 5, Z: 9}},
				Class:    "11_Wires",
				Chunk:    "c1",
			}},
			Stats: extract.RunStats{Accepted: 1},
		},
	}
}

func TestWriteSummaryChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.html")
	if err := WriteSummaryChart(path, sampleResults()); err != nil {
		t.Fatalf("WriteSummaryChart: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	html := string(data)
	for _, want := range []string{"6_Buildings", "11_Wires", "too_small", "overlap"} {
		if !strings.Contains(html, want) {
			t.Errorf("summary chart does not mention %q", want)
		}
	}
}

func TestWriteChunkPlot(t *testing.T) {
	dir := t.TempDir()
	n, err := WriteChunkPlot(dir, "c1", sampleResults())
	if err != nil {
		t.Fatalf("WriteChunkPlot: %v", err)
	}
	if n != 2 {
		t.Errorf("drew %d geometries, want 2", n)
	}

	info, err := os.Stat(filepath.Join(dir, "chunk_c1_geometries.png"))
	if err != nil {
		t.Fatalf("plot file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestWriteChunkPlot_OtherChunksIgnored(t *testing.T) {
	dir := t.TempDir()
	n, err := WriteChunkPlot(dir, "c9", sampleResults())
	if err != nil {
		t.Fatalf("WriteChunkPlot: %v", err)
	}
	if n != 0 {
		t.Errorf("drew %d geometries for an absent chunk, want 0", n)
	}
}
