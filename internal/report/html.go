package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/results"
)

// HTMLInput selects what the standalone report shows.
type HTMLInput struct {
	Title     string
	Board     *leaderboard.Board
	State     leaderboard.State
	Sort      leaderboard.SortState
	Generated time.Time
}

type htmlRow struct {
	Entry
	Cells []string
}

type htmlReportData struct {
	Title       string
	Dataset     string
	Scene       string
	Method      string
	SortLabel   string
	MetricLabel string
	Generated   string
	Headers     []string
	Rows        []htmlRow
	HasPaper    bool
	ChartHTML   string
	DataJSON    template.JS
}

// GenerateHTML renders a self-contained HTML report: the leaderboard table
// and the metric-vs-time scatter for the selection.
func GenerateHTML(in HTMLInput) (string, error) {
	if in.Board == nil {
		return "", fmt.Errorf("no leaderboard to report")
	}
	if in.Title == "" {
		in.Title = "nvsbench: Novel View Synthesis Leaderboard"
	}
	if in.Generated.IsZero() {
		in.Generated = time.Now()
	}

	board := in.Board
	reg := board.Registry()
	lb := NewLeaderboard(board.Rows(in.State, in.Sort), in.State, in.Sort)

	metric := in.State.Metric
	if !metric.Plottable() {
		metric = results.PSNR
	}
	subtitle := fmt.Sprintf("dataset=%s scene=%s", reg.DatasetDisplayName(in.State.Dataset), in.State.Scene)
	chart, err := renderScatterString(board.Points(in.State), metric, subtitle)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(lb)
	if err != nil {
		return "", fmt.Errorf("marshal leaderboard: %w", err)
	}

	view := htmlReportData{
		Title:       in.Title,
		Dataset:     reg.DatasetDisplayName(in.State.Dataset),
		Scene:       in.State.Scene,
		Method:      reg.MethodDisplayName(in.State.Method),
		SortLabel:   fmt.Sprintf("%s %s", in.Sort.Key.Label(), in.Sort.Order),
		MetricLabel: metric.Label(),
		Generated:   in.Generated.UTC().Format(time.RFC3339),
		HasPaper:    lb.hasPaper(),
		ChartHTML:   chart,
		DataJSON:    template.JS(payload),
	}
	for _, m := range results.Metrics() {
		view.Headers = append(view.Headers, m.Label())
	}
	for _, e := range lb.Entries {
		row := htmlRow{Entry: e}
		for _, m := range results.Metrics() {
			row.Cells = append(row.Cells, e.Cell(m))
		}
		view.Rows = append(view.Rows, row)
	}

	var buf bytes.Buffer
	if err := htmlReportTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// WriteHTML renders the report to w.
func WriteHTML(w io.Writer, in HTMLInput) error {
	page, err := GenerateHTML(in)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, page)
	return err
}

var htmlReportTemplate = template.Must(template.New("leaderboard-report").Parse(htmlReportTemplateHTML))

const htmlReportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
  <style>
    :root {
      --primary: #334155;
      --secondary: #64748B;
      --accent: #3B82F6;
      --light: #F1F5F9;
      --background: #FFFFFF;
      --text: #0F172A;
      --border: #E2E8F0;
    }
    body { background-color: var(--light); color: var(--text); }
    .navbar-dark { background-color: var(--primary) !important; }
    .card { border: 1px solid var(--border); background-color: var(--background); }
    .table tbody tr.selected > td { background-color: #DBEAFE; font-weight: 600; }
    .chart-frame { width: 100%; height: 560px; border: 0; }
    .filters .badge { margin-right: 0.5rem; }
  </style>
</head>
<body>
  <nav class="navbar navbar-dark mb-4">
    <div class="container">
      <span class="navbar-brand">{{ .Title }}</span>
      <span class="text-light small">Generated {{ .Generated }}</span>
    </div>
  </nav>
  <main class="container">
    <div class="filters mb-3">
      <span class="badge bg-secondary">Dataset: {{ .Dataset }}</span>
      <span class="badge bg-secondary">Scene: {{ .Scene }}</span>
      <span class="badge bg-secondary">Sort: {{ .SortLabel }}</span>
      {{ if .Method }}<span class="badge bg-primary">Highlight: {{ .Method }}</span>{{ end }}
    </div>
    <div class="card mb-4">
      <div class="card-body">
        <table class="table table-striped table-bordered" id="leaderboard">
          <thead>
            <tr>
              <th>#</th>
              <th>Method</th>
              {{ range .Headers }}<th>{{ . }}</th>{{ end }}
            </tr>
          </thead>
          <tbody>
            {{ range .Rows }}
            <tr{{ if .Selected }} class="selected"{{ end }}>
              <td>{{ .Rank }}</td>
              <td>{{ if .URL }}<a href="{{ .URL }}">{{ .DisplayName }}</a>{{ else }}{{ .DisplayName }}{{ end }}</td>
              {{ range .Cells }}<td>{{ . }}</td>{{ end }}
            </tr>
            {{ else }}
            <tr><td colspan="7" class="text-center text-muted">No results for this selection.</td></tr>
            {{ end }}
          </tbody>
        </table>
        {{ if .HasPaper }}<p class="small text-muted">* value reported by the method's paper</p>{{ end }}
      </div>
    </div>
    <div class="card mb-4">
      <div class="card-body">
        <h5 class="card-title">{{ .MetricLabel }} vs Training Time</h5>
        <iframe class="chart-frame" title="{{ .MetricLabel }} vs Training Time" srcdoc="{{ .ChartHTML }}"></iframe>
      </div>
    </div>
  </main>
  <script type="application/json" id="leaderboard-data">{{ .DataJSON }}</script>
</body>
</html>
`
