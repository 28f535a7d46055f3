// internal/tui/browser.go
// Package tui implements the interactive terminal leaderboard browser.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/nvsbench/internal/images"
	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/logging"
	"github.com/mwiater/nvsbench/internal/results"
	"github.com/mwiater/nvsbench/internal/util"
)

const (
	plotWidth  = 48
	plotHeight = 10
)

// sortKeys maps the number keys to table columns.
var sortKeys = map[string]results.Metric{
	"1": results.PSNR,
	"2": results.SSIM,
	"3": results.LPIPS,
	"4": results.Time,
	"5": results.MaxGPUMemory,
}

// model is the Bubble Tea model of the leaderboard browser.
type model struct {
	ctx           context.Context
	board         *leaderboard.Board
	provider      images.Provider
	tracker       *images.Tracker
	state         leaderboard.State
	sort          leaderboard.SortState
	rows          []leaderboard.Row
	table         table.Model
	spinner       spinner.Model
	imageKey      results.Key
	width, height int
}

// pairsMsg carries the outcome of an image request.
type pairsMsg struct {
	token images.Token
	pairs []images.Pair
	err   error
}

// initialModel creates the browser with every dataset selected.
func initialModel(ctx context.Context, board *leaderboard.Board, provider images.Provider) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	t := table.New(table.WithFocused(true), table.WithHeight(12))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	t.SetStyles(styles)

	m := &model{
		ctx:      ctx,
		board:    board,
		provider: provider,
		tracker:  images.NewTracker(),
		state:    leaderboard.NewState(),
		sort:     leaderboard.DefaultSort(),
		table:    t,
		spinner:  s,
	}
	m.refresh()
	return m
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, board *leaderboard.Board, provider images.Provider) error {
	m := initialModel(ctx, board, provider)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init starts the spinner animation.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// refresh recomputes the table after a selection or sort change, keeping the
// cursor on the same method when it is still listed.
func (m *model) refresh() {
	current := m.cursorMethod()
	m.rows = m.board.Rows(m.state, m.sort)

	m.table.SetRows(nil)
	m.table.SetColumns(m.columns())
	rows := make([]table.Row, 0, len(m.rows))
	cursor := 0
	for i, r := range m.rows {
		name := r.DisplayName
		if r.Selected {
			name = "● " + name
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			util.TruncateRunes(name, 28),
			results.PSNR.Format(r.PSNR),
			results.SSIM.Format(r.SSIM),
			results.LPIPS.Format(r.LPIPS),
			results.Time.Format(r.Time),
			results.MaxGPUMemory.Format(r.MaxGPUMemory),
		})
		if r.MethodName == current {
			cursor = i
		}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
}

func (m *model) columns() []table.Column {
	cols := []table.Column{{Title: "#", Width: 3}, {Title: "Method", Width: 28}}
	widths := map[results.Metric]int{results.PSNR: 8, results.SSIM: 8, results.LPIPS: 8, results.Time: 12, results.MaxGPUMemory: 11}
	for _, metric := range results.Metrics() {
		title := metric.Label()
		if metric == m.sort.Key {
			if m.sort.Order == leaderboard.Ascending {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		cols = append(cols, table.Column{Title: title, Width: widths[metric]})
	}
	return cols
}

func (m *model) cursorMethod() string {
	if len(m.rows) == 0 {
		return ""
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return ""
	}
	return m.rows[i].MethodName
}

// syncImages issues a comparison request when the selection implies a new
// triple and clears the view when it no longer implies one.
func (m *model) syncImages() tea.Cmd {
	key, ok := m.state.ImageKey()
	if !ok {
		if m.imageKey != (results.Key{}) {
			m.imageKey = results.Key{}
			m.tracker.Reset()
		}
		return nil
	}
	if key == m.imageKey {
		return nil
	}
	m.imageKey = key
	if m.provider == nil {
		return nil
	}
	token := m.tracker.Begin(key)
	logging.LogRecord("images", key.Method, key.Dataset, key.Scene, "requested")
	return tea.Batch(m.spinner.Tick, fetchPairsCmd(m.ctx, m.provider, token, key))
}

// fetchPairsCmd resolves comparison pairs off the update loop.
func fetchPairsCmd(ctx context.Context, provider images.Provider, token images.Token, key results.Key) tea.Cmd {
	return func() tea.Msg {
		pairs, err := provider.Pairs(ctx, key)
		return pairsMsg{token: token, pairs: pairs, err: err}
	}
}

func cycle(options []string, current string, step int) string {
	if len(options) == 0 {
		return current
	}
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(options)) % len(options)
	return options[idx]
}

func nextMetric(current results.Metric) results.Metric {
	plot := results.PlotMetrics()
	for i, m := range plot {
		if m == current {
			return plot[(i+1)%len(plot)]
		}
	}
	return results.PSNR
}

// Update handles key presses and image completions.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if metric, ok := sortKeys[key]; ok {
			m.sort = m.sort.Select(metric)
			m.refresh()
			return m, nil
		}
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "d", "D":
			step := 1
			if key == "D" {
				step = -1
			}
			options := append([]string{leaderboard.All}, m.board.Datasets()...)
			m.state = m.state.WithDataset(cycle(options, m.state.Dataset, step))
			m.refresh()
			return m, m.syncImages()
		case "s", "S":
			step := 1
			if key == "S" {
				step = -1
			}
			options := append([]string{leaderboard.All}, m.board.Scenes(m.state.Dataset)...)
			m.state = m.state.WithScene(cycle(options, m.state.Scene, step))
			m.refresh()
			return m, m.syncImages()
		case "m":
			m.state = m.state.WithMetric(nextMetric(m.state.Metric))
			return m, nil
		case "enter", " ":
			m.state = m.state.ToggleMethod(m.cursorMethod())
			m.refresh()
			return m, m.syncImages()
		case "esc":
			m.state = m.state.ToggleMethod("")
			m.refresh()
			return m, m.syncImages()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(util.Max(msg.Height-plotHeight-12, 5))
		return m, nil

	case pairsMsg:
		if !m.tracker.Complete(msg.token, msg.pairs, msg.err) {
			logging.LogEvent("[IMAGES] discarded stale response %d", msg.token)
			return m, nil
		}
		if msg.err != nil {
			logging.LogWarning("image comparison %s: %v", m.imageKey, msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		if m.tracker.Snapshot().Status == images.StatusLoading {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the header, table, plot and image comparison panes.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	reg := m.board.Registry()

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	dataset := "All datasets"
	if m.state.Dataset != leaderboard.All {
		dataset = reg.DatasetDisplayName(m.state.Dataset)
	}
	scene := "all scenes"
	if m.state.Scene != leaderboard.All {
		scene = m.state.Scene
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("nvsbench  %s / %s", dataset, scene)))
	b.WriteString(" ")
	b.WriteString(renderSortBadge(m.sort))
	b.WriteString(renderImageBadge(m.tracker.Snapshot().Status))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString("  No results for this selection.\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}
	if line := m.spreadView(); line != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("  " + line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.plotView())
	b.WriteString("\n")
	b.WriteString(m.imageView())

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move • enter highlight • esc clear • d/D dataset • s/S scene • 1-5 sort • m plot metric • q quit"))
	return b.String()
}

func (m *model) spreadView() string {
	if m.state.Method == "" {
		return ""
	}
	spread := leaderboard.Spread(m.board.Records(m.state), m.sort.Key)
	display := m.board.Registry().MethodDisplayName(m.state.Method)
	return formatSpread(display, m.sort.Key, spread[m.state.Method])
}

func (m *model) plotView() string {
	points := m.board.Points(m.state)
	titleStyle := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s vs Time (%d methods)", m.state.Metric.Label(), len(points))))
	b.WriteString("\n")
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	b.WriteString(box.Render(strings.Join(plotGrid(points, plotWidth, plotHeight), "\n")))
	b.WriteString("\n")
	return b.String()
}

func (m *model) imageView() string {
	snap := m.tracker.Snapshot()
	switch snap.Status {
	case images.StatusLoading:
		return fmt.Sprintf("  %s Loading comparisons for %s...\n", m.spinner.View(), snap.Key)
	case images.StatusFailed:
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		return errorStyle.Render(fmt.Sprintf("  Comparison unavailable: %v", snap.Err)) + "\n"
	case images.StatusReady:
		var b strings.Builder
		for _, p := range snap.Pairs {
			fmt.Fprintf(&b, "  %s  %s\n    render: %s\n    gt:     %s\n", util.PadRight(p.Scene, 12), p.Render.Filename, p.Render.URL, p.GroundTruth.URL)
		}
		return b.String()
	default:
		return ""
	}
}
