// Command groundplan turns a labeled point export into validated 2D map
// geometries. It reads CSV rows of chunk,class,x,y,z, runs the extraction
// pipeline per (chunk, class) pair and writes GeoJSON alongside optional
// KML, SQLite and report outputs.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/groundplan/internal/extract"
	"github.com/banshee-data/groundplan/internal/geomstore"
	"github.com/banshee-data/groundplan/internal/report"
	"github.com/banshee-data/groundplan/internal/version"
)

var (
	pointsFile = flag.String("points", "", "Input CSV of labeled points (chunk,class,x,y,z)")
	outputDir  = flag.String("out", "output", "Directory for GeoJSON output, one file per chunk/class")
	dbFile     = flag.String("db", "", "Optional SQLite database file to persist accepted geometries")
	writeKML   = flag.Bool("kml", false, "Also write a KML file per chunk/class")
	reportDir  = flag.String("report", "", "Optional directory for summary chart and per-chunk plots")
	workers    = flag.Int("workers", 0, "Concurrent pipeline workers (default: number of CPUs)")
	classList  = flag.String("classes", "", "Comma-separated class filter (default: all configured classes)")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println(version.String())
		return
	}
	if *pointsFile == "" {
		flag.Usage()
		log.Fatal("groundplan: -points is required")
	}

	sets, err := loadPointSets(*pointsFile, classFilter(*classList))
	if err != nil {
		log.Fatalf("groundplan: load points: %v", err)
	}
	if len(sets) == 0 {
		log.Fatal("groundplan: no points matched the configured classes")
	}
	log.Printf("groundplan: loaded %d point sets from %s", len(sets), *pointsFile)

	pipeline := extract.NewPipeline(extract.DefaultProfiles(), log.Default())
	results, err := pipeline.RunAll(sets, *workers)
	if err != nil {
		log.Fatalf("groundplan: pipeline: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("groundplan: create output dir: %v", err)
	}
	for _, r := range results {
		base := filepath.Join(*outputDir, fmt.Sprintf("%s_%s", r.Chunk, sanitize(r.Class)))
		if err := extract.WriteGeoJSON(base+".geojson", r); err != nil {
			log.Fatalf("groundplan: write geojson: %v", err)
		}
		if *writeKML {
			if err := extract.WriteKMLFile(base+".kml", r); err != nil {
				log.Fatalf("groundplan: write kml: %v", err)
			}
		}
	}

	if *dbFile != "" {
		if err := persist(*dbFile, results); err != nil {
			log.Fatalf("groundplan: persist: %v", err)
		}
	}

	if *reportDir != "" {
		if err := writeReports(*reportDir, results); err != nil {
			log.Fatalf("groundplan: report: %v", err)
		}
	}

	logSummary(results)
}

func classFilter(list string) map[string]bool {
	if list == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			filter[c] = true
		}
	}
	return filter
}

// loadPointSets groups CSV rows into one PointSet per (chunk, class) pair.
// Sets come back sorted by chunk then class so runs are reproducible. A
// header row is tolerated; rows for unconfigured classes are skipped and
// counted. A nil filter admits every configured class.
func loadPointSets(path string, filter map[string]bool) ([]extract.PointSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	profiles := extract.DefaultProfiles()
	type key struct{ chunk, class string }
	groups := make(map[key][]extract.Point)

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5
	r.ReuseRecord = true
	line, skipped := 0, 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && isHeader(rec) {
			continue
		}
		chunk, class := rec[0], rec[1]
		if _, ok := profiles[class]; !ok {
			skipped++
			continue
		}
		if filter != nil && !filter[class] {
			skipped++
			continue
		}
		var p extract.Point
		if p.X, err = strconv.ParseFloat(rec[2], 64); err != nil {
			return nil, fmt.Errorf("line %d: x: %w", line, err)
		}
		if p.Y, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("line %d: y: %w", line, err)
		}
		if p.Z, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return nil, fmt.Errorf("line %d: z: %w", line, err)
		}
		k := key{chunk, class}
		groups[k] = append(groups[k], p)
	}
	if skipped > 0 {
		log.Printf("groundplan: skipped %d points outside configured classes", skipped)
	}

	sets := make([]extract.PointSet, 0, len(groups))
	for k, pts := range groups {
		sets = append(sets, extract.PointSet{Chunk: k.chunk, Class: k.class, Points: pts})
	}
	sort.Slice(sets, func(i, j int) bool {
		if sets[i].Chunk != sets[j].Chunk {
			return sets[i].Chunk < sets[j].Chunk
		}
		return sets[i].Class < sets[j].Class
	})
	return sets, nil
}

func isHeader(rec []string) bool {
	if len(rec) < 5 {
		return false
	}
	_, err := strconv.ParseFloat(rec[2], 64)
	return err != nil
}

func persist(path string, results []*extract.RunResult) error {
	store, err := geomstore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, r := range results {
		if err := store.SaveRun(r); err != nil {
			return err
		}
	}

	summaries, err := store.SummarizeByClass()
	if err != nil {
		return err
	}
	for _, s := range summaries {
		log.Printf("groundplan: db: %s: %d footprints, %d lines", s.Class, s.Footprints, s.Lines)
	}
	return nil
}

func writeReports(dir string, results []*extract.RunResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := report.WriteSummaryChart(filepath.Join(dir, "summary.html"), results); err != nil {
		return err
	}
	for _, chunk := range chunks(results) {
		n, err := report.WriteChunkPlot(dir, chunk, results)
		if err != nil {
			return err
		}
		log.Printf("groundplan: plotted %d geometries for chunk %s", n, chunk)
	}
	return nil
}

func chunks(results []*extract.RunResult) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range results {
		if !seen[r.Chunk] {
			seen[r.Chunk] = true
			out = append(out, r.Chunk)
		}
	}
	sort.Strings(out)
	return out
}

func logSummary(results []*extract.RunResult) {
	var accepted, rejected int
	var area, length float64
	for _, r := range results {
		accepted += r.Stats.Accepted
		rejected += r.Stats.Rejected
		area += r.Stats.TotalAreaM2
		length += r.Stats.TotalLengthM
	}
	log.Printf("groundplan: done: %d accepted, %d rejected, %.1f m2 footprint area, %.1f m centerline length",
		accepted, rejected, area, length)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, s)
}
