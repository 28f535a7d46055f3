package leaderboard

import "github.com/mwiater/nvsbench/internal/results"

// All selects every dataset or scene.
const All = "all"

// Filter restricts records to a dataset and, within a specific dataset, a
// scene.
type Filter struct {
	Dataset string `json:"dataset"`
	Scene   string `json:"scene"`
}

func isAll(v string) bool {
	return v == "" || v == All
}

// Match reports whether r passes the filter. The scene is ignored unless a
// specific dataset is selected.
func (f Filter) Match(r results.Result) bool {
	if isAll(f.Dataset) {
		return true
	}
	if r.DatasetName != f.Dataset {
		return false
	}
	return isAll(f.Scene) || r.SceneName == f.Scene
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(records []results.Result) []results.Result {
	out := make([]results.Result, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
