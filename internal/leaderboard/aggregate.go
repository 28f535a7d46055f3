// internal/leaderboard/aggregate.go
package leaderboard

import (
	"sort"

	"github.com/mwiater/nvsbench/internal/results"
)

// RunningStat is an online mean/variance accumulator.
type RunningStat struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	M2    float64 `json:"-"`
}

// Variance is the sample variance of the values seen so far.
func (rs RunningStat) Variance() float64 {
	if rs.Count < 2 {
		return 0
	}
	return rs.M2 / float64(rs.Count-1)
}

// updateRunningStat folds value into rs using Welford's online algorithm.
func updateRunningStat(rs *RunningStat, value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}

// AveragedResult is the per-method mean over a filtered set of records.
type AveragedResult struct {
	MethodName    string  `json:"method_name"`
	Count         int     `json:"count"`
	PSNR          float64 `json:"psnr"`
	SSIM          float64 `json:"ssim"`
	LPIPS         float64 `json:"lpips"`
	Time          float64 `json:"time"`
	MaxGPUMemory  float64 `json:"max_gpu_memory"`
	HasPaperPSNR  bool    `json:"has_paper_psnr,omitempty"`
	HasPaperSSIM  bool    `json:"has_paper_ssim,omitempty"`
	HasPaperLPIPS bool    `json:"has_paper_lpips,omitempty"`
}

// Value returns the averaged value of metric m.
func (a AveragedResult) Value(m results.Metric) float64 {
	switch m {
	case results.PSNR:
		return a.PSNR
	case results.SSIM:
		return a.SSIM
	case results.LPIPS:
		return a.LPIPS
	case results.Time:
		return a.Time
	case results.MaxGPUMemory:
		return a.MaxGPUMemory
	default:
		return 0
	}
}

// HasPaper reports whether any averaged record took m from a publication.
func (a AveragedResult) HasPaper(m results.Metric) bool {
	switch m {
	case results.PSNR:
		return a.HasPaperPSNR
	case results.SSIM:
		return a.HasPaperSSIM
	case results.LPIPS:
		return a.HasPaperLPIPS
	default:
		return false
	}
}

// TieKey orders averages with equal metric values by method name.
func (a AveragedResult) TieKey() string {
	return a.MethodName
}

type methodStats struct {
	stats map[results.Metric]*RunningStat
	paper map[results.Metric]bool
}

// Average groups records by method and returns the mean of every metric,
// ordered by method name. Methods with no records are absent.
func Average(records []results.Result) []AveragedResult {
	byMethod := make(map[string]*methodStats)
	for _, record := range records {
		ms, ok := byMethod[record.MethodName]
		if !ok {
			ms = &methodStats{
				stats: make(map[results.Metric]*RunningStat),
				paper: make(map[results.Metric]bool),
			}
			for _, m := range results.Metrics() {
				ms.stats[m] = &RunningStat{}
			}
			byMethod[record.MethodName] = ms
		}
		for _, m := range results.Metrics() {
			updateRunningStat(ms.stats[m], record.Value(m))
			if record.HasPaper(m) {
				ms.paper[m] = true
			}
		}
	}

	names := make([]string, 0, len(byMethod))
	for name := range byMethod {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]AveragedResult, 0, len(names))
	for _, name := range names {
		ms := byMethod[name]
		out = append(out, AveragedResult{
			MethodName:    name,
			Count:         ms.stats[results.PSNR].Count,
			PSNR:          ms.stats[results.PSNR].Mean,
			SSIM:          ms.stats[results.SSIM].Mean,
			LPIPS:         ms.stats[results.LPIPS].Mean,
			Time:          ms.stats[results.Time].Mean,
			MaxGPUMemory:  ms.stats[results.MaxGPUMemory].Mean,
			HasPaperPSNR:  ms.paper[results.PSNR],
			HasPaperSSIM:  ms.paper[results.SSIM],
			HasPaperLPIPS: ms.paper[results.LPIPS],
		})
	}
	return out
}

// Spread returns the running statistic of metric m per method, for callers
// that need min/max/variance in addition to the mean.
func Spread(records []results.Result, m results.Metric) map[string]RunningStat {
	out := make(map[string]RunningStat)
	for _, record := range records {
		rs := out[record.MethodName]
		updateRunningStat(&rs, record.Value(m))
		out[record.MethodName] = rs
	}
	return out
}
