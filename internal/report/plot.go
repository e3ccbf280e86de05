package report

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/groundplan/internal/extract"
)

// WriteChunkPlot draws every accepted geometry from one chunk's runs onto a
// single PNG: footprint rings as filled polygons, centerlines as lines.
// Returns the number of geometries drawn.
func WriteChunkPlot(outputDir, chunk string, results []*extract.RunResult) (int, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Chunk %s - Extracted Geometries", chunk)
	p.X.Label.Text = "Easting (m)"
	p.Y.Label.Text = "Northing (m)"

	drawn := 0
	for _, r := range results {
		if r.Chunk != chunk {
			continue
		}
		for _, fp := range r.Footprints {
			xys := make(plotter.XYs, len(fp.Ring))
			for i, v := range fp.Ring {
				xys[i] = plotter.XY{X: v.X, Y: v.Y}
			}
			poly, err := plotter.NewPolygon(xys)
			if err != nil {
				return drawn, fmt.Errorf("footprint polygon %s: %w", fp.ID, err)
			}
			poly.Color = color.NRGBA{R: 0x4d, G: 0x88, B: 0xc4, A: 0x60}
			poly.LineStyle.Color = color.NRGBA{R: 0x1f, G: 0x4e, B: 0x79, A: 0xff}
			p.Add(poly)
			drawn++
		}
		for _, line := range r.Lines {
			xys := make(plotter.XYs, len(line.Vertices))
			for i, v := range line.Vertices {
				xys[i] = plotter.XY{X: v.X, Y: v.Y}
			}
			l, err := plotter.NewLine(xys)
			if err != nil {
				return drawn, fmt.Errorf("centerline %s: %w", line.ID, err)
			}
			l.Color = color.NRGBA{R: 0xc4, G: 0x4d, B: 0x4d, A: 0xff}
			p.Add(l)
			drawn++
		}
	}

	out := filepath.Join(outputDir, fmt.Sprintf("chunk_%s_geometries.png", chunk))
	if err := p.Save(10*vg.Inch, 10*vg.Inch, out); err != nil {
		return drawn, fmt.Errorf("save chunk plot: %w", err)
	}
	return drawn, nil
}
