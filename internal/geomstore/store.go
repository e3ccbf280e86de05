// Package geomstore persists accepted map geometries to SQLite. It is the
// collaborator boundary for spatial persistence: the extraction engine
// hands over finished geometry records and never touches SQL itself.
package geomstore

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/groundplan/internal/extract"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding footprint and line geometries.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the geometry database at path and applies any
// pending schema migrations. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open geometry database: %w", err)
	}
	// A single connection keeps writers serialized and makes ":memory:"
	// databases behave: every pooled connection would otherwise get its
	// own empty in-memory database.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrateUp() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("prepare migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}
	// Note: we don't close m because it would close the underlying DB
	// connection.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SaveRun stores every accepted geometry from a run in one transaction.
func (s *Store) SaveRun(result *extract.RunResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	for i := range result.Footprints {
		if err := insertFootprint(tx, &result.Footprints[i]); err != nil {
			return err
		}
	}
	for i := range result.Lines {
		if err := insertLine(tx, &result.Lines[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertFootprint(tx *sql.Tx, fp *extract.FootprintGeometry) error {
	ringJSON, err := json.Marshal(fp.Ring)
	if err != nil {
		return fmt.Errorf("marshal footprint ring: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO footprints (
			object_id, chunk, class, cluster_id, ring_json,
			area_m2, perimeter_m, aspect_ratio, vertex_count, point_count, method
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		fp.ID, fp.Chunk, fp.Class, fp.ClusterID, string(ringJSON),
		fp.AreaM2, fp.PerimeterM, fp.AspectRatio, fp.VertexCount, fp.PointCount, fp.Method,
	)
	if err != nil {
		return fmt.Errorf("insert footprint %s: %w", fp.ID, err)
	}
	return nil
}

func insertLine(tx *sql.Tx, line *extract.LineGeometry) error {
	vertsJSON, err := json.Marshal(line.Vertices)
	if err != nil {
		return fmt.Errorf("marshal line vertices: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO lines (
			object_id, chunk, class, cluster_id, vertices_json,
			length_m, width_m, aspect_ratio,
			min_height_m, max_height_m, avg_height_m, point_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		line.ID, line.Chunk, line.Class, line.ClusterID, string(vertsJSON),
		line.LengthM, line.WidthM, line.AspectRatio,
		line.MinHeightM, line.MaxHeightM, line.AvgHeightM, line.PointCount,
	)
	if err != nil {
		return fmt.Errorf("insert line %s: %w", line.ID, err)
	}
	return nil
}

// ListFootprints returns the stored footprints for one (chunk, class)
// scope in insertion order.
func (s *Store) ListFootprints(chunk, class string) ([]extract.FootprintGeometry, error) {
	rows, err := s.db.Query(`
		SELECT object_id, chunk, class, cluster_id, ring_json,
		       area_m2, perimeter_m, aspect_ratio, vertex_count, point_count, method
		FROM footprints WHERE chunk = ? AND class = ? ORDER BY id
	`, chunk, class)
	if err != nil {
		return nil, fmt.Errorf("list footprints: %w", err)
	}
	defer rows.Close()

	var out []extract.FootprintGeometry
	for rows.Next() {
		var fp extract.FootprintGeometry
		var ringJSON string
		if err := rows.Scan(&fp.ID, &fp.Chunk, &fp.Class, &fp.ClusterID, &ringJSON,
			&fp.AreaM2, &fp.PerimeterM, &fp.AspectRatio, &fp.VertexCount, &fp.PointCount, &fp.Method); err != nil {
			return nil, fmt.Errorf("scan footprint: %w", err)
		}
		if err := json.Unmarshal([]byte(ringJSON), &fp.Ring); err != nil {
			return nil, fmt.Errorf("decode footprint ring: %w", err)
		}
		out = append(out, fp)
	}
	return out, rows.Err()
}

// ListLines returns the stored centerlines for one (chunk, class) scope in
// insertion order.
func (s *Store) ListLines(chunk, class string) ([]extract.LineGeometry, error) {
	rows, err := s.db.Query(`
		SELECT object_id, chunk, class, cluster_id, vertices_json,
		       length_m, width_m, aspect_ratio,
		       min_height_m, max_height_m, avg_height_m, point_count
		FROM lines WHERE chunk = ? AND class = ? ORDER BY id
	`, chunk, class)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer rows.Close()

	var out []extract.LineGeometry
	for rows.Next() {
		var line extract.LineGeometry
		var vertsJSON string
		if err := rows.Scan(&line.ID, &line.Chunk, &line.Class, &line.ClusterID, &vertsJSON,
			&line.LengthM, &line.WidthM, &line.AspectRatio,
			&line.MinHeightM, &line.MaxHeightM, &line.AvgHeightM, &line.PointCount); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if err := json.Unmarshal([]byte(vertsJSON), &line.Vertices); err != nil {
			return nil, fmt.Errorf("decode line vertices: %w", err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

// ClassSummary aggregates stored geometry counts for one class.
type ClassSummary struct {
	Class       string  `json:"class"`
	Footprints  int     `json:"footprints"`
	Lines       int     `json:"lines"`
	TotalAreaM2 float64 `json:"total_area_m2"`
	TotalLenM   float64 `json:"total_length_m"`
}

// SummarizeByClass aggregates stored geometries across all chunks.
func (s *Store) SummarizeByClass() ([]ClassSummary, error) {
	rows, err := s.db.Query(`
		SELECT class,
		       SUM(n_footprints), SUM(n_lines), SUM(area), SUM(length)
		FROM (
			SELECT class, COUNT(*) AS n_footprints, 0 AS n_lines,
			       COALESCE(SUM(area_m2), 0) AS area, 0 AS length
			FROM footprints GROUP BY class
			UNION ALL
			SELECT class, 0, COUNT(*),
			       0, COALESCE(SUM(length_m), 0)
			FROM lines GROUP BY class
		)
		GROUP BY class ORDER BY class
	`)
	if err != nil {
		return nil, fmt.Errorf("summarize by class: %w", err)
	}
	defer rows.Close()

	var out []ClassSummary
	for rows.Next() {
		var cs ClassSummary
		if err := rows.Scan(&cs.Class, &cs.Footprints, &cs.Lines, &cs.TotalAreaM2, &cs.TotalLenM); err != nil {
			return nil, fmt.Errorf("scan class summary: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
