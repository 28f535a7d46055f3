package leaderboard

import (
	"sort"

	"github.com/mwiater/nvsbench/internal/registry"
	"github.com/mwiater/nvsbench/internal/results"
)

// Board is a read-only leaderboard over one snapshot of the canonical
// dataset.
type Board struct {
	records []results.Result
	reg     *registry.Registry
}

// Row is one line of the leaderboard table.
type Row struct {
	AveragedResult
	DisplayName string `json:"display_name"`
	URL         string `json:"url,omitempty"`
	Selected    bool   `json:"selected"`
}

// PlotPoint is one method in the metric-vs-time scatter plot: its averaged
// metric against its average training time over the selected records.
type PlotPoint struct {
	Method      string  `json:"method"`
	DisplayName string  `json:"display_name"`
	Runs        int     `json:"runs"`
	Minutes     float64 `json:"minutes"`
	Value       float64 `json:"value"`
	Paper       bool    `json:"paper"`
	Selected    bool    `json:"selected"`
}

// NewBoard copies records into a new board. A nil registry behaves like an
// empty one.
func NewBoard(records []results.Result, reg *registry.Registry) *Board {
	if reg == nil {
		reg = registry.Empty()
	}
	return &Board{
		records: append([]results.Result(nil), records...),
		reg:     reg,
	}
}

// Registry returns the registry the board resolves names with.
func (b *Board) Registry() *registry.Registry {
	return b.reg
}

// Len is the number of records in the snapshot.
func (b *Board) Len() int {
	return len(b.records)
}

// Records returns the records selected by state.
func (b *Board) Records(state State) []results.Result {
	return state.Filter().Apply(b.records)
}

// Rows filters, averages and sorts the snapshot.
func (b *Board) Rows(state State, s SortState) []Row {
	averaged := Sort(Average(b.Records(state)), s)
	rows := make([]Row, 0, len(averaged))
	for _, avg := range averaged {
		row := Row{
			AveragedResult: avg,
			DisplayName:    b.reg.MethodDisplayName(avg.MethodName),
			Selected:       state.Method != "" && avg.MethodName == state.Method,
		}
		if meta, ok := b.reg.Method(avg.MethodName); ok {
			row.URL = meta.MethodURL
		}
		rows = append(rows, row)
	}
	return rows
}

// Points returns one point per method with at least one selected record,
// ordered by method name. The values are the same averages Rows ranks.
func (b *Board) Points(state State) []PlotPoint {
	metric := state.Metric
	if !metric.Plottable() {
		metric = results.PSNR
	}
	averaged := Average(b.Records(state))
	points := make([]PlotPoint, 0, len(averaged))
	for _, avg := range averaged {
		points = append(points, PlotPoint{
			Method:      avg.MethodName,
			DisplayName: b.reg.MethodDisplayName(avg.MethodName),
			Runs:        avg.Count,
			Minutes:     avg.Time / 60,
			Value:       avg.Value(metric),
			Paper:       avg.HasPaper(metric),
			Selected:    state.Method != "" && avg.MethodName == state.Method,
		})
	}
	return points
}

// Datasets lists dataset names in registry order followed by any dataset
// that only appears in records.
func (b *Board) Datasets() []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range b.reg.Datasets() {
		out = append(out, d.DatasetName)
		seen[d.DatasetName] = true
	}
	var extra []string
	for _, r := range b.records {
		if !seen[r.DatasetName] {
			seen[r.DatasetName] = true
			extra = append(extra, r.DatasetName)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Scenes lists the scenes of a dataset in registry order followed by scenes
// only present in records. It is empty for All.
func (b *Board) Scenes(dataset string) []string {
	if isAll(dataset) {
		return nil
	}
	out := b.reg.Scenes(dataset)
	seen := make(map[string]bool, len(out))
	for _, s := range out {
		seen[s] = true
	}
	var extra []string
	for _, r := range b.records {
		if r.DatasetName == dataset && !seen[r.SceneName] {
			seen[r.SceneName] = true
			extra = append(extra, r.SceneName)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Methods lists every method that has at least one record, by name.
func (b *Board) Methods() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range b.records {
		if !seen[r.MethodName] {
			seen[r.MethodName] = true
			out = append(out, r.MethodName)
		}
	}
	sort.Strings(out)
	return out
}
