// internal/results/types.go
// Package results defines the per-run evaluation record shared by ingestion
// and the leaderboard.
package results

import (
	"encoding/json"
	"fmt"
)

// Result is one evaluation of one method on one scene of one dataset.
type Result struct {
	MethodName    string  `json:"method_name"`
	DatasetName   string  `json:"dataset_name"`
	SceneName     string  `json:"scene_name"`
	PSNR          float64 `json:"psnr"`
	SSIM          float64 `json:"ssim"`
	LPIPS         float64 `json:"lpips"`
	Time          float64 `json:"time"`
	MaxGPUMemory  float64 `json:"max_gpu_memory"`
	HasPaperPSNR  bool    `json:"has_paper_psnr,omitempty"`
	HasPaperSSIM  bool    `json:"has_paper_ssim,omitempty"`
	HasPaperLPIPS bool    `json:"has_paper_lpips,omitempty"`
}

// Key identifies a result by its (method, dataset, scene) triple.
type Key struct {
	Method  string `json:"method_name"`
	Dataset string `json:"dataset_name"`
	Scene   string `json:"scene_name"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Method, k.Dataset, k.Scene)
}

// Key returns the identity triple of the record.
func (r Result) Key() Key {
	return Key{Method: r.MethodName, Dataset: r.DatasetName, Scene: r.SceneName}
}

// Value returns the numeric value of metric m.
func (r Result) Value(m Metric) float64 {
	switch m {
	case PSNR:
		return r.PSNR
	case SSIM:
		return r.SSIM
	case LPIPS:
		return r.LPIPS
	case Time:
		return r.Time
	case MaxGPUMemory:
		return r.MaxGPUMemory
	default:
		return 0
	}
}

// HasPaper reports whether the value of m was taken from a publication.
func (r Result) HasPaper(m Metric) bool {
	switch m {
	case PSNR:
		return r.HasPaperPSNR
	case SSIM:
		return r.HasPaperSSIM
	case LPIPS:
		return r.HasPaperLPIPS
	default:
		return false
	}
}

// AnyPaper reports whether any value of the record came from a publication.
func (r Result) AnyPaper() bool {
	return r.HasPaperPSNR || r.HasPaperSSIM || r.HasPaperLPIPS
}

// TieKey orders records deterministically when metric values are equal.
func (r Result) TieKey() string {
	return r.MethodName + "\x00" + r.DatasetName + "\x00" + r.SceneName
}

// UnmarshalJSON accepts both the snake_case paper flags and the camelCase
// spelling written by older result files.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	aux := struct {
		*plain
		LegacyPaperPSNR  *bool `json:"hasPaperPsnr"`
		LegacyPaperSSIM  *bool `json:"hasPaperSsim"`
		LegacyPaperLPIPS *bool `json:"hasPaperLpips"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.LegacyPaperPSNR != nil && *aux.LegacyPaperPSNR {
		r.HasPaperPSNR = true
	}
	if aux.LegacyPaperSSIM != nil && *aux.LegacyPaperSSIM {
		r.HasPaperSSIM = true
	}
	if aux.LegacyPaperLPIPS != nil && *aux.LegacyPaperLPIPS {
		r.HasPaperLPIPS = true
	}
	return nil
}
