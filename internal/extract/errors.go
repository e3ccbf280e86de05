package extract

import (
	"errors"
	"fmt"
)

// DegenerateGeometryError reports that hull or line construction failed for
// a single cluster. It is caught per cluster: the fallback ladder advances
// or the cluster becomes a rejection record. Never fatal to a run.
type DegenerateGeometryError struct {
	ClusterID int
	Stage     string
	Detail    string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate geometry in cluster %d at %s: %s", e.ClusterID, e.Stage, e.Detail)
}

// ConfigurationError reports a missing or invalid per-class parameter. It is
// fatal for that class run and surfaces to the caller.
type ConfigurationError struct {
	Class  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for class %q: %s", e.Class, e.Detail)
}

// ErrEmptyInput indicates a point set became empty after filtering. The run
// reports zero instances rather than failing.
var ErrEmptyInput = errors.New("point set empty after filtering")

// IsDegenerate reports whether err is a per-cluster geometry failure.
func IsDegenerate(err error) bool {
	var de *DegenerateGeometryError
	return errors.As(err, &de)
}
