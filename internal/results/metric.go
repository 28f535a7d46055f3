package results

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Metric names one of the numeric fields of a Result.
type Metric string

const (
	PSNR         Metric = "psnr"
	SSIM         Metric = "ssim"
	LPIPS        Metric = "lpips"
	Time         Metric = "time"
	MaxGPUMemory Metric = "max_gpu_memory"
)

// ErrUnknownMetric is returned by ParseMetric for names outside the metric set.
var ErrUnknownMetric = errors.New("unknown metric")

// Metrics returns every numeric metric in table column order.
func Metrics() []Metric {
	return []Metric{PSNR, SSIM, LPIPS, Time, MaxGPUMemory}
}

// PlotMetrics returns the quality metrics that can be plotted against time.
func PlotMetrics() []Metric {
	return []Metric{PSNR, SSIM, LPIPS}
}

// ParseMetric resolves a metric name, case-insensitively. "gpu" and
// "memory" are accepted for max_gpu_memory.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "psnr":
		return PSNR, nil
	case "ssim":
		return SSIM, nil
	case "lpips":
		return LPIPS, nil
	case "time":
		return Time, nil
	case "max_gpu_memory", "gpu", "memory":
		return MaxGPUMemory, nil
	}
	return "", fmt.Errorf("%w %q (want one of psnr, ssim, lpips, time, max_gpu_memory)", ErrUnknownMetric, name)
}

// HigherIsBetter reports the polarity of the metric.
func (m Metric) HigherIsBetter() bool {
	return m == PSNR || m == SSIM
}

// Plottable reports whether m can be plotted against training time.
func (m Metric) Plottable() bool {
	return m == PSNR || m == SSIM || m == LPIPS
}

// Label is the column heading used in tables and charts.
func (m Metric) Label() string {
	switch m {
	case PSNR:
		return "PSNR"
	case SSIM:
		return "SSIM"
	case LPIPS:
		return "LPIPS"
	case Time:
		return "Time"
	case MaxGPUMemory:
		return "GPU Memory"
	default:
		return string(m)
	}
}

// Format renders a value the way the leaderboard table shows it.
func (m Metric) Format(v float64) string {
	switch m {
	case PSNR:
		return fmt.Sprintf("%.2f", v)
	case SSIM, LPIPS:
		return fmt.Sprintf("%.4f", v)
	case Time:
		return FormatDuration(v)
	case MaxGPUMemory:
		return fmt.Sprintf("%.2f GB", v/1024)
	default:
		return fmt.Sprintf("%g", v)
	}
}

// FormatDuration renders seconds as "1h 2m 3s", "2m 3s" or "3s".
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
