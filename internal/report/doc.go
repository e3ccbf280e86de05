// Package report renders run summaries for review: an HTML chart of
// accept/reject counts per class and PNG overview plots of the extracted
// geometries per chunk. Reports are for operators tuning class profiles;
// nothing here feeds back into the pipeline.
package report
