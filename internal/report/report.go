// internal/report/report.go
// Package report renders leaderboards, per-method summaries and the
// standalone HTML report.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/results"
	"gopkg.in/yaml.v3"
)

// Format selects a leaderboard output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat resolves a format name. The empty string means table.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table":
		return FormatTable, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, markdown, json or yaml)", name)
}

// Entry is one exported leaderboard row.
type Entry struct {
	Rank         int      `json:"rank" yaml:"rank"`
	Method       string   `json:"method_name" yaml:"method_name"`
	DisplayName  string   `json:"display_name" yaml:"display_name"`
	URL          string   `json:"url,omitempty" yaml:"url,omitempty"`
	Count        int      `json:"count" yaml:"count"`
	PSNR         float64  `json:"psnr" yaml:"psnr"`
	SSIM         float64  `json:"ssim" yaml:"ssim"`
	LPIPS        float64  `json:"lpips" yaml:"lpips"`
	Time         float64  `json:"time" yaml:"time"`
	MaxGPUMemory float64  `json:"max_gpu_memory" yaml:"max_gpu_memory"`
	Paper        []string `json:"paper_metrics,omitempty" yaml:"paper_metrics,omitempty"`
	Selected     bool     `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// Leaderboard is a ranked table together with the selection it was built
// from.
type Leaderboard struct {
	Dataset   string  `json:"dataset" yaml:"dataset"`
	Scene     string  `json:"scene" yaml:"scene"`
	Method    string  `json:"method,omitempty" yaml:"method,omitempty"`
	SortKey   string  `json:"sort_key" yaml:"sort_key"`
	SortOrder string  `json:"sort_order" yaml:"sort_order"`
	Entries   []Entry `json:"entries" yaml:"entries"`
}

// NewLeaderboard converts board rows into an exportable leaderboard.
func NewLeaderboard(rows []leaderboard.Row, state leaderboard.State, sort leaderboard.SortState) Leaderboard {
	lb := Leaderboard{
		Dataset:   state.Dataset,
		Scene:     state.Scene,
		Method:    state.Method,
		SortKey:   string(sort.Key),
		SortOrder: string(sort.Order),
		Entries:   make([]Entry, 0, len(rows)),
	}
	for i, row := range rows {
		var paper []string
		for _, m := range results.PlotMetrics() {
			if row.HasPaper(m) {
				paper = append(paper, string(m))
			}
		}
		lb.Entries = append(lb.Entries, Entry{
			Rank:         i + 1,
			Method:       row.MethodName,
			DisplayName:  row.DisplayName,
			URL:          row.URL,
			Count:        row.Count,
			PSNR:         row.PSNR,
			SSIM:         row.SSIM,
			LPIPS:        row.LPIPS,
			Time:         row.Time,
			MaxGPUMemory: row.MaxGPUMemory,
			Paper:        paper,
			Selected:     row.Selected,
		})
	}
	return lb
}

// Value returns the entry's value of m.
func (e Entry) Value(m results.Metric) float64 {
	switch m {
	case results.PSNR:
		return e.PSNR
	case results.SSIM:
		return e.SSIM
	case results.LPIPS:
		return e.LPIPS
	case results.Time:
		return e.Time
	case results.MaxGPUMemory:
		return e.MaxGPUMemory
	}
	return 0
}

// Cell formats the value of m, marking values taken from a publication.
func (e Entry) Cell(m results.Metric) string {
	text := m.Format(e.Value(m))
	for _, p := range e.Paper {
		if p == string(m) {
			return text + "*"
		}
	}
	return text
}

func (lb Leaderboard) hasPaper() bool {
	for _, e := range lb.Entries {
		if len(e.Paper) > 0 {
			return true
		}
	}
	return false
}

// Write renders lb in the given format.
func Write(w io.Writer, format Format, lb Leaderboard) error {
	switch format {
	case FormatMarkdown:
		return writeMarkdown(lb, w)
	case FormatJSON:
		return writeJSON(lb, w)
	case FormatYAML:
		return writeYAML(lb, w)
	default:
		return writeTable(lb, w)
	}
}

func writeTable(lb Leaderboard, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "dataset=%s scene=%s sort=%s %s\n", lb.Dataset, lb.Scene, lb.SortKey, lb.SortOrder)
	fmt.Fprintln(tw, "\t#\tMETHOD\tPSNR\tSSIM\tLPIPS\tTIME\tGPU MEMORY\tRUNS")
	fmt.Fprintln(tw, strings.Repeat("-", 88))
	for _, e := range lb.Entries {
		marker := ""
		if e.Selected {
			marker = ">"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			marker, e.Rank, e.DisplayName,
			e.Cell(results.PSNR), e.Cell(results.SSIM), e.Cell(results.LPIPS),
			e.Cell(results.Time), e.Cell(results.MaxGPUMemory), e.Count)
	}
	if len(lb.Entries) == 0 {
		fmt.Fprintln(tw, "\t\t(no results)")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if lb.hasPaper() {
		if _, err := fmt.Fprintln(w, "* value reported by the method's paper"); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(lb Leaderboard, w io.Writer) error {
	var b bytes.Buffer
	fmt.Fprintln(&b, "| # | Method | PSNR | SSIM | LPIPS | Time | GPU Memory |")
	fmt.Fprintln(&b, "|---|---|---|---|---|---|---|")
	for _, e := range lb.Entries {
		name := e.DisplayName
		if e.URL != "" {
			name = fmt.Sprintf("[%s](%s)", e.DisplayName, e.URL)
		}
		if e.Selected {
			name = "**" + name + "**"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n",
			e.Rank, name,
			e.Cell(results.PSNR), e.Cell(results.SSIM), e.Cell(results.LPIPS),
			e.Cell(results.Time), e.Cell(results.MaxGPUMemory))
	}
	if lb.hasPaper() {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "\\* value reported by the method's paper")
	}
	_, err := w.Write(b.Bytes())
	return err
}

func writeJSON(lb Leaderboard, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(lb)
}

func writeYAML(lb Leaderboard, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(lb); err != nil {
		return err
	}
	return enc.Close()
}
