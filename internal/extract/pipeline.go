package extract

import (
	"errors"
	"log"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// RunStats holds aggregate counts for one (chunk, class) run.
type RunStats struct {
	InputPoints       int            `json:"input_points"`
	CleanPoints       int            `json:"clean_points"`
	ClustersFound     int            `json:"clusters_found"`
	Accepted          int            `json:"accepted"`
	Rejected          int            `json:"rejected"`
	RejectedByReason  map[string]int `json:"rejected_by_reason,omitempty"`
	TotalAreaM2       float64        `json:"total_area_m2,omitempty"`
	TotalLengthM      float64        `json:"total_length_m,omitempty"`
	ExtractionMethods map[string]int `json:"extraction_methods,omitempty"`
}

// RunResult is everything one (chunk, class) run produced. A run always
// returns a result, possibly with zero geometries; per-cluster failures
// become rejection records, never errors.
type RunResult struct {
	Chunk      string              `json:"chunk"`
	Class      string              `json:"class"`
	Kind       GeometryKind        `json:"kind"`
	Footprints []FootprintGeometry `json:"footprints,omitempty"`
	Lines      []LineGeometry      `json:"lines,omitempty"`
	Rejections []QualityReport     `json:"rejections,omitempty"`
	Stats      RunStats            `json:"stats"`
}

// Pipeline sequences preprocessing, clustering, geometry construction and
// quality gating per (chunk, class) pair. Profiles are fixed at
// construction; a Pipeline is safe for concurrent Run calls because each
// run owns all of its mutable state.
type Pipeline struct {
	profiles map[string]ClassProfile
	logger   *log.Logger
}

// NewPipeline creates a pipeline over the given per-class parameter table.
// A nil logger falls back to the standard logger.
func NewPipeline(profiles map[string]ClassProfile, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{profiles: profiles, logger: logger}
}

// Run processes one class-filtered point set end to end. It fails only on
// configuration problems; empty input and per-cluster geometry failures
// produce an empty or partial result instead.
func (pl *Pipeline) Run(ps PointSet) (*RunResult, error) {
	profile, ok := pl.profiles[ps.Class]
	if !ok {
		return nil, &ConfigurationError{Class: ps.Class, Detail: "no profile configured"}
	}
	if err := profile.Validate(); err != nil {
		return nil, &ConfigurationError{Class: ps.Class, Detail: err.Error()}
	}

	result := &RunResult{
		Chunk: ps.Chunk,
		Class: ps.Class,
		Kind:  profile.Kind,
		Stats: RunStats{
			InputPoints:       len(ps.Points),
			RejectedByReason:  make(map[string]int),
			ExtractionMethods: make(map[string]int),
		},
	}

	clean := Preprocess(ps, profile)
	result.Stats.CleanPoints = len(clean.Points)
	if len(clean.Points) == 0 {
		pl.logger.Printf("extract: %s/%s: %v", ps.Chunk, ps.Class, ErrEmptyInput)
		return result, nil
	}

	clusters := ClusterPoints(clean.Points, profile)
	result.Stats.ClustersFound = len(clusters)

	// Clusters arrive in ascending ID order, which fixes the
	// first-accepted-wins ordering of the overlap rule.
	gate := NewQualityGate(profile)
	for i := range clusters {
		cluster := &clusters[i]
		switch profile.Kind {
		case KindLine:
			pl.runLine(cluster, profile, gate, result)
		default:
			pl.runFootprint(cluster, profile, gate, result)
		}
	}

	pl.logger.Printf("extract: %s/%s: %d in, %d clean, %d clusters, %d accepted, %d rejected",
		ps.Chunk, ps.Class, result.Stats.InputPoints, result.Stats.CleanPoints,
		result.Stats.ClustersFound, result.Stats.Accepted, result.Stats.Rejected)
	return result, nil
}

func (pl *Pipeline) runFootprint(cluster *Cluster, profile ClassProfile, gate *QualityGate, result *RunResult) {
	ring, method, err := BuildFootprint(cluster, profile)
	if err != nil {
		pl.recordRejection(result, QualityReport{
			ClusterID: cluster.ID,
			Reason:    ReasonDegenerate,
			Detail:    err.Error(),
		})
		return
	}

	ring, err = SimplifyRing(ring, profile.SimplifyToleranceM, cluster.ID)
	if err != nil {
		pl.recordRejection(result, QualityReport{
			ClusterID: cluster.ID,
			Reason:    ReasonDegenerate,
			Detail:    err.Error(),
		})
		return
	}

	report := gate.CheckPolygon(cluster.ID, ring)
	if !report.Accepted {
		pl.recordRejection(result, report)
		return
	}

	fp := FootprintGeometry{
		ID:          uuid.NewString(),
		Chunk:       result.Chunk,
		Class:       result.Class,
		ClusterID:   cluster.ID,
		Ring:        ring,
		AreaM2:      ring.Area(),
		PerimeterM:  ring.Perimeter(),
		AspectRatio: ring.AspectRatio(),
		VertexCount: len(ring),
		PointCount:  len(cluster.Points),
		Method:      method,
	}
	result.Footprints = append(result.Footprints, fp)
	result.Stats.Accepted++
	result.Stats.TotalAreaM2 += fp.AreaM2
	result.Stats.ExtractionMethods[method]++
}

func (pl *Pipeline) runLine(cluster *Cluster, profile ClassProfile, gate *QualityGate, result *RunResult) {
	line, err := BuildLine(cluster, profile)
	if err != nil {
		pl.recordRejection(result, QualityReport{
			ClusterID: cluster.ID,
			Reason:    ReasonDegenerate,
			Detail:    err.Error(),
		})
		return
	}

	report := gate.CheckLine(line)
	if !report.Accepted {
		pl.recordRejection(result, report)
		return
	}

	line.ID = uuid.NewString()
	line.Chunk = result.Chunk
	line.Class = result.Class
	result.Lines = append(result.Lines, *line)
	result.Stats.Accepted++
	result.Stats.TotalLengthM += line.LengthM
}

func (pl *Pipeline) recordRejection(result *RunResult, report QualityReport) {
	result.Rejections = append(result.Rejections, report)
	result.Stats.Rejected++
	result.Stats.RejectedByReason[report.Reason]++
	pl.logger.Printf("extract: %s/%s: cluster %d rejected (%s): %s",
		result.Chunk, result.Class, report.ClusterID, report.Reason, report.Detail)
}

// RunAll processes independent (chunk, class) point sets on a bounded
// worker pool. Results keep input order. Configuration failures are joined
// into the returned error; successful runs are unaffected by failed ones.
func (pl *Pipeline) RunAll(sets []PointSet, workers int) ([]*RunResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*RunResult, len(sets))
	errs := make([]error, len(sets))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range sets {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = pl.Run(sets[i])
		}(i)
	}
	wg.Wait()

	return results, errors.Join(errs...)
}
