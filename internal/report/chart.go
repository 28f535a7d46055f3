package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/results"
)

// Scatter builds the metric-vs-training-time chart with one series, and one
// averaged point, per method. The highlighted method is drawn larger.
func Scatter(points []leaderboard.PlotPoint, metric results.Metric, subtitle string) *charts.Scatter {
	if !metric.Plottable() {
		metric = results.PSNR
	}

	series := make(map[string][]opts.ScatterData)
	labels := make(map[string]string)
	selected := make(map[string]bool)
	for _, p := range points {
		name := fmt.Sprintf("%s (%d runs)", p.DisplayName, p.Runs)
		if p.Paper {
			name += " (paper)"
		}
		series[p.Method] = append(series[p.Method], opts.ScatterData{
			Name:  name,
			Value: []interface{}{p.Minutes, p.Value},
		})
		labels[p.Method] = p.DisplayName
		if p.Selected {
			selected[p.Method] = true
		}
	}
	methods := make([]string, 0, len(series))
	for m := range series {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: fmt.Sprintf("%s vs Time", metric.Label()), Width: "100%", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s vs Training Time", metric.Label()), Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Time (minutes)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: metric.Label(), NameLocation: "middle", NameGap: 40, Scale: opts.Bool(true)}),
	)
	for _, m := range methods {
		scatter.AddSeries(labels[m], series[m], symbolSize(selected[m]))
	}
	return scatter
}

func symbolSize(selected bool) charts.SeriesOpts {
	if selected {
		return charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 16})
	}
	return charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 9})
}

// RenderScatter writes the chart as a standalone HTML page.
func RenderScatter(w io.Writer, points []leaderboard.PlotPoint, metric results.Metric, subtitle string) error {
	return Scatter(points, metric, subtitle).Render(w)
}

func renderScatterString(points []leaderboard.PlotPoint, metric results.Metric, subtitle string) (string, error) {
	var buf bytes.Buffer
	if err := RenderScatter(&buf, points, metric, subtitle); err != nil {
		return "", fmt.Errorf("render scatter chart: %w", err)
	}
	return buf.String(), nil
}
