package report

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/groundplan/internal/extract"
)

// WriteSummaryChart renders an HTML page with per-class accepted and
// rejected geometry counts, plus a breakdown of rejection reasons, across
// all runs.
func WriteSummaryChart(path string, results []*extract.RunResult) error {
	classes, accepted, rejected := countByClass(results)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Footprint & Line Extraction",
			Subtitle: fmt.Sprintf("%d runs", len(results)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(classes).
		AddSeries("accepted", accepted,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries("rejected", rejected)

	reasonNames, reasonCounts := countByReason(results)
	reasons := charts.NewBar()
	reasons.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Rejections by Reason"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	reasons.SetXAxis(reasonNames).
		AddSeries("rejections", reasonCounts,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(bar, reasons)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary chart: %w", err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render summary chart: %w", err)
	}
	return f.Close()
}

func countByClass(results []*extract.RunResult) (classes []string, accepted, rejected []opts.BarData) {
	acc := make(map[string]int)
	rej := make(map[string]int)
	for _, r := range results {
		acc[r.Class] += r.Stats.Accepted
		rej[r.Class] += r.Stats.Rejected
	}
	for class := range acc {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		accepted = append(accepted, opts.BarData{Value: acc[class]})
		rejected = append(rejected, opts.BarData{Value: rej[class]})
	}
	return classes, accepted, rejected
}

func countByReason(results []*extract.RunResult) (names []string, counts []opts.BarData) {
	byReason := make(map[string]int)
	for _, r := range results {
		for reason, n := range r.Stats.RejectedByReason {
			byReason[reason] += n
		}
	}
	for reason := range byReason {
		names = append(names, reason)
	}
	sort.Strings(names)
	for _, reason := range names {
		counts = append(counts, opts.BarData{Value: byReason[reason]})
	}
	return names, counts
}
