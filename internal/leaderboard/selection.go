package leaderboard

import (
	"strings"

	"github.com/mwiater/nvsbench/internal/results"
)

// State is the selection shared by the table, the plot and the image
// comparison. Transitions return a new State and never modify the receiver.
type State struct {
	Dataset string         `json:"dataset"`
	Scene   string         `json:"scene"`
	Method  string         `json:"method,omitempty"`
	Metric  results.Metric `json:"metric"`
}

// NewState selects every dataset and scene, no method, and plots PSNR.
func NewState() State {
	return State{Dataset: All, Scene: All, Metric: results.PSNR}
}

// WithDataset switches the dataset. The scene falls back to All when the
// dataset changes; the highlighted method is kept.
func (s State) WithDataset(dataset string) State {
	dataset = normalize(dataset)
	if dataset != s.Dataset {
		s.Scene = All
	}
	s.Dataset = dataset
	return s
}

// WithScene switches the scene. It has no effect while every dataset is
// selected.
func (s State) WithScene(scene string) State {
	if isAll(s.Dataset) {
		s.Scene = All
		return s
	}
	s.Scene = normalize(scene)
	return s
}

// ToggleMethod highlights method, or clears the highlight when method is
// already highlighted or empty.
func (s State) ToggleMethod(method string) State {
	method = strings.TrimSpace(method)
	if method == "" || method == s.Method {
		s.Method = ""
		return s
	}
	s.Method = method
	return s
}

// WithMetric changes the plotted metric. Metrics that cannot be plotted
// against time are ignored.
func (s State) WithMetric(m results.Metric) State {
	if m.Plottable() {
		s.Metric = m
	}
	return s
}

// Filter is the record filter implied by the selection.
func (s State) Filter() Filter {
	return Filter{Dataset: normalize(s.Dataset), Scene: normalize(s.Scene)}
}

// ImageKey returns the triple the image comparison should show and whether
// a request should be issued at all.
func (s State) ImageKey() (results.Key, bool) {
	key := results.Key{Method: s.Method, Dataset: s.Dataset, Scene: normalize(s.Scene)}
	return key, s.Method != "" && !isAll(s.Dataset)
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if isAll(v) {
		return All
	}
	return v
}
