package export

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/freightsim/core/report"
)

// WriteChart renders an HTML bar chart comparing the runs in recs: total
// distance and assigned freights per strategy.
func WriteChart(w io.Writer, recs []*report.RunRecord) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Strategy comparison"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Strategy"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "km / freights"}),
	)

	labels := make([]string, 0, len(recs))
	distance := make([]opts.BarData, 0, len(recs))
	assigned := make([]opts.BarData, 0, len(recs))
	for _, r := range recs {
		labels = append(labels, r.Strategy)
		distance = append(distance, opts.BarData{Value: math.Round(r.Summary.TotalDistanceKm*100) / 100})
		assigned = append(assigned, opts.BarData{Value: r.Summary.Assigned})
	}
	bar.SetXAxis(labels).
		AddSeries("Total distance (km)", distance).
		AddSeries("Assigned freights", assigned)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
