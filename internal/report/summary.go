package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/mwiater/nvsbench/internal/registry"
	"github.com/mwiater/nvsbench/internal/results"
	"gonum.org/v1/gonum/stat"
)

// ErrNoResults is returned when a method has no records.
var ErrNoResults = errors.New("no results")

// DefaultDatasetOrder is used for datasets the registry does not list.
var DefaultDatasetOrder = []string{"mipnerf360", "tanksandtemples", "deepblending", "zipnerf"}

// Scores holds the three quality metrics.
type Scores struct {
	PSNR  float64 `json:"psnr" yaml:"psnr"`
	SSIM  float64 `json:"ssim" yaml:"ssim"`
	LPIPS float64 `json:"lpips" yaml:"lpips"`
}

// SceneScores is one scene of a dataset summary.
type SceneScores struct {
	Scene  string `json:"scene" yaml:"scene"`
	Scores `yaml:",inline"`
}

// DatasetSummary lists a method's scenes of one dataset and their mean.
type DatasetSummary struct {
	Dataset     string        `json:"dataset" yaml:"dataset"`
	DisplayName string        `json:"display_name" yaml:"display_name"`
	Scenes      []SceneScores `json:"scenes" yaml:"scenes"`
	Average     Scores        `json:"average" yaml:"average"`
}

// MethodSummary is the benchmark-wide result sheet of one method. Overall is
// the mean of the dataset averages, so every dataset weighs the same.
type MethodSummary struct {
	Method      string           `json:"method" yaml:"method"`
	DisplayName string           `json:"display_name" yaml:"display_name"`
	Datasets    []DatasetSummary `json:"datasets" yaml:"datasets"`
	Overall     Scores           `json:"overall" yaml:"overall"`
}

// Summarize builds the result sheet of method. Datasets follow the registry
// order, then DefaultDatasetOrder, then name.
func Summarize(records []results.Result, method string, reg *registry.Registry) (MethodSummary, error) {
	if reg == nil {
		reg = registry.Empty()
	}
	byDataset := make(map[string][]results.Result)
	for _, r := range records {
		if r.MethodName == method {
			byDataset[r.DatasetName] = append(byDataset[r.DatasetName], r)
		}
	}
	if len(byDataset) == 0 {
		return MethodSummary{}, fmt.Errorf("%w for method %q", ErrNoResults, method)
	}

	summary := MethodSummary{Method: method, DisplayName: reg.MethodDisplayName(method)}
	var psnr, ssim, lpips []float64
	for _, dataset := range datasetOrder(byDataset, reg) {
		scenes := byDataset[dataset]
		sort.Slice(scenes, func(i, j int) bool { return scenes[i].SceneName < scenes[j].SceneName })

		ds := DatasetSummary{Dataset: dataset, DisplayName: reg.DatasetDisplayName(dataset)}
		for _, r := range scenes {
			ds.Scenes = append(ds.Scenes, SceneScores{
				Scene:  r.SceneName,
				Scores: Scores{PSNR: r.PSNR, SSIM: r.SSIM, LPIPS: r.LPIPS},
			})
		}
		ds.Average = meanScores(scenes)
		summary.Datasets = append(summary.Datasets, ds)

		psnr = append(psnr, ds.Average.PSNR)
		ssim = append(ssim, ds.Average.SSIM)
		lpips = append(lpips, ds.Average.LPIPS)
	}
	summary.Overall = Scores{
		PSNR:  stat.Mean(psnr, nil),
		SSIM:  stat.Mean(ssim, nil),
		LPIPS: stat.Mean(lpips, nil),
	}
	return summary, nil
}

func meanScores(records []results.Result) Scores {
	psnr := make([]float64, len(records))
	ssim := make([]float64, len(records))
	lpips := make([]float64, len(records))
	for i, r := range records {
		psnr[i], ssim[i], lpips[i] = r.PSNR, r.SSIM, r.LPIPS
	}
	return Scores{
		PSNR:  stat.Mean(psnr, nil),
		SSIM:  stat.Mean(ssim, nil),
		LPIPS: stat.Mean(lpips, nil),
	}
}

func datasetOrder(present map[string][]results.Result, reg *registry.Registry) []string {
	var order []string
	seen := make(map[string]bool)
	add := func(name string) {
		if _, ok := present[name]; ok && !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, d := range reg.Datasets() {
		add(d.DatasetName)
	}
	for _, name := range DefaultDatasetOrder {
		add(name)
	}
	var rest []string
	for name := range present {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// WriteSummaryMarkdown renders s as a markdown result sheet and returns the
// first error from w.
func WriteSummaryMarkdown(w io.Writer, s MethodSummary) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Results: %s\n\n", s.DisplayName)
	fmt.Fprintln(&b, "Average across the whole benchmark")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "**PSNR:** %.3f | **SSIM:** %.4f | **LPIPS:** %.4f\n\n", s.Overall.PSNR, s.Overall.SSIM, s.Overall.LPIPS)

	for _, ds := range s.Datasets {
		fmt.Fprintf(&b, "## %s\n\n", ds.DisplayName)
		fmt.Fprintln(&b, "| Scene | PSNR | SSIM | LPIPS |")
		fmt.Fprintln(&b, "|-------|------|------|-------|")
		for _, sc := range ds.Scenes {
			fmt.Fprintf(&b, "| %s | %.3f | %.4f | %.4f |\n", sc.Scene, sc.PSNR, sc.SSIM, sc.LPIPS)
		}
		fmt.Fprintf(&b, "| **Average** | **%.3f** | **%.4f** | **%.4f** |\n\n", ds.Average.PSNR, ds.Average.SSIM, ds.Average.LPIPS)
	}
	_, err := w.Write(b.Bytes())
	return err
}
