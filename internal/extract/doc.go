// Package extract owns the geometric footprint and line extraction engine.
//
// Responsibilities: point-set preprocessing (voxel downsampling, height
// filtering, outlier removal), density-based instance clustering, boundary
// hull construction with a graduated fallback ladder, polygon
// simplification, principal-direction line fitting, and geometric quality
// gating. The pipeline consumes class-filtered survey points in a projected
// metric coordinate system and emits validated 2D map geometries in that
// same coordinate system.
//
// Reprojection, ingestion, and persistence are owned by callers; no SQL or
// CRS code is allowed in this package.
package extract
