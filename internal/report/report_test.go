package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/registry"
	"github.com/mwiater/nvsbench/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRecords() []results.Result {
	return []results.Result{
		{MethodName: "h3dgs", DatasetName: "mipnerf360", SceneName: "bicycle", PSNR: 25, SSIM: 0.75, LPIPS: 0.22, Time: 1800, MaxGPUMemory: 8192},
		{MethodName: "h3dgs", DatasetName: "mipnerf360", SceneName: "garden", PSNR: 27, SSIM: 0.85, LPIPS: 0.12, Time: 2400, MaxGPUMemory: 9216},
		{MethodName: "3dgut", DatasetName: "mipnerf360", SceneName: "bicycle", PSNR: 24, SSIM: 0.72, LPIPS: 0.25, Time: 900, MaxGPUMemory: 4096, HasPaperPSNR: true},
		{MethodName: "h3dgs", DatasetName: "tanksandtemples", SceneName: "truck", PSNR: 23, SSIM: 0.8, LPIPS: 0.2, Time: 1200, MaxGPUMemory: 6144},
	}
}

func sampleRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(
		[]registry.DatasetMeta{
			{DatasetName: "tanksandtemples", DatasetDisplayName: "Tanks and Temples", Scenes: []string{"truck", "train"}},
			{DatasetName: "mipnerf360", DatasetDisplayName: "Mip-NeRF 360", Scenes: []string{"bicycle", "garden"}},
		},
		[]registry.MethodMeta{{MethodName: "h3dgs", MethodDisplayName: "H3DGS", MethodURL: "https://example.org/h3dgs"}},
	)
	require.NoError(t, err)
	return reg
}

func sampleLeaderboard(t *testing.T) Leaderboard {
	board := leaderboard.NewBoard(sampleRecords(), sampleRegistry(t))
	state := leaderboard.NewState().WithDataset("mipnerf360").ToggleMethod("h3dgs")
	return NewLeaderboard(board.Rows(state, leaderboard.DefaultSort()), state, leaderboard.DefaultSort())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "MD": FormatMarkdown, "json": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestNewLeaderboard(t *testing.T) {
	lb := sampleLeaderboard(t)
	require.Len(t, lb.Entries, 2)

	assert.Equal(t, "h3dgs", lb.Entries[0].Method)
	assert.Equal(t, 1, lb.Entries[0].Rank)
	assert.InDelta(t, 26.0, lb.Entries[0].PSNR, 1e-9)
	assert.True(t, lb.Entries[0].Selected)
	assert.Equal(t, "H3DGS", lb.Entries[0].DisplayName)

	assert.Equal(t, "3dgut", lb.Entries[1].Method)
	assert.Equal(t, []string{"psnr"}, lb.Entries[1].Paper)
	assert.Equal(t, "24.00*", lb.Entries[1].Cell(results.PSNR))
	assert.Equal(t, "15m 0s", lb.Entries[1].Cell(results.Time))
	assert.Equal(t, "4.00 GB", lb.Entries[1].Cell(results.MaxGPUMemory))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, sampleLeaderboard(t)))
	out := buf.String()

	assert.Contains(t, out, "METHOD")
	assert.Contains(t, out, "H3DGS")
	assert.Contains(t, out, "26.00")
	assert.Contains(t, out, "* value reported")
	assert.Less(t, strings.Index(out, "H3DGS"), strings.Index(out, "3dgut"))
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatMarkdown, sampleLeaderboard(t)))
	out := buf.String()

	assert.Contains(t, out, "| # | Method |")
	assert.Contains(t, out, "**[H3DGS](https://example.org/h3dgs)**")
	assert.Contains(t, out, "| 2 | 3dgut | 24.00* |")
}

func TestWriteJSONAndYAML(t *testing.T) {
	lb := sampleLeaderboard(t)

	var jsonBuf bytes.Buffer
	require.NoError(t, Write(&jsonBuf, FormatJSON, lb))
	var fromJSON Leaderboard
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Equal(t, "psnr", fromJSON.SortKey)
	assert.Equal(t, "desc", fromJSON.SortOrder)
	assert.Len(t, fromJSON.Entries, 2)

	var yamlBuf bytes.Buffer
	require.NoError(t, Write(&yamlBuf, FormatYAML, lb))
	var fromYAML Leaderboard
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, "mipnerf360", fromYAML.Dataset)
	require.Len(t, fromYAML.Entries, 2)
	assert.Equal(t, "3dgut", fromYAML.Entries[1].Method)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(sampleRecords(), "h3dgs", sampleRegistry(t))
	require.NoError(t, err)

	require.Len(t, s.Datasets, 2)
	assert.Equal(t, "tanksandtemples", s.Datasets[0].Dataset, "registry order first")
	assert.Equal(t, "mipnerf360", s.Datasets[1].Dataset)
	assert.InDelta(t, 26.0, s.Datasets[1].Average.PSNR, 1e-9)
	assert.InDelta(t, 24.5, s.Overall.PSNR, 1e-9, "mean of dataset averages")

	_, err = Summarize(sampleRecords(), "missing", nil)
	assert.True(t, errors.Is(err, ErrNoResults))
}

func TestSummarizeDefaultOrder(t *testing.T) {
	records := []results.Result{
		{MethodName: "m", DatasetName: "zipnerf", SceneName: "a", PSNR: 20},
		{MethodName: "m", DatasetName: "custom", SceneName: "a", PSNR: 20},
		{MethodName: "m", DatasetName: "mipnerf360", SceneName: "a", PSNR: 20},
	}
	s, err := Summarize(records, "m", nil)
	require.NoError(t, err)
	var order []string
	for _, ds := range s.Datasets {
		order = append(order, ds.Dataset)
	}
	assert.Equal(t, []string{"mipnerf360", "zipnerf", "custom"}, order)
}

func TestWriteSummaryMarkdown(t *testing.T) {
	s, err := Summarize(sampleRecords(), "h3dgs", sampleRegistry(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryMarkdown(&buf, s))
	out := buf.String()
	assert.Contains(t, out, "# Results: H3DGS")
	assert.Contains(t, out, "**PSNR:** 24.500")
	assert.Contains(t, out, "## Mip-NeRF 360")
	assert.Contains(t, out, "| garden | 27.000 | 0.8500 | 0.1200 |")
	assert.Contains(t, out, "| **Average** | **26.000** |")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritersReturnWriteErrors(t *testing.T) {
	s, err := Summarize(sampleRecords(), "h3dgs", sampleRegistry(t))
	require.NoError(t, err)
	assert.EqualError(t, WriteSummaryMarkdown(failingWriter{}, s), "disk full")

	lb := sampleLeaderboard(t)
	for _, format := range []Format{FormatTable, FormatMarkdown, FormatJSON} {
		assert.Error(t, Write(failingWriter{}, format, lb), string(format))
	}
}

func TestGenerateHTML(t *testing.T) {
	board := leaderboard.NewBoard(sampleRecords(), sampleRegistry(t))
	page, err := GenerateHTML(HTMLInput{
		Board:     board,
		State:     leaderboard.NewState().WithDataset("mipnerf360").WithMetric(results.SSIM),
		Sort:      leaderboard.DefaultSort(),
		Generated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "Dataset: Mip-NeRF 360")
	assert.Contains(t, page, "Generated 2026-01-02T03:04:05Z")
	assert.Contains(t, page, "SSIM vs Training Time")
	assert.Contains(t, page, `id="leaderboard-data"`)
	assert.Contains(t, page, "srcdoc=")
	assert.Contains(t, page, "echarts")

	_, err = GenerateHTML(HTMLInput{})
	assert.Error(t, err)
}

func TestScatterSeriesPerMethod(t *testing.T) {
	board := leaderboard.NewBoard(sampleRecords(), nil)
	state := leaderboard.NewState().WithDataset("mipnerf360").ToggleMethod("3dgut")

	var buf bytes.Buffer
	require.NoError(t, RenderScatter(&buf, board.Points(state), results.PSNR, "test"))
	out := buf.String()
	assert.Contains(t, out, "h3dgs")
	assert.Contains(t, out, "3dgut")
	assert.Contains(t, out, "Time (minutes)")
}
