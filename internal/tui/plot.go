package tui

import (
	"math"
	"strings"

	"github.com/mwiater/nvsbench/internal/leaderboard"
)

// plotGrid draws points as a width x height character grid with time on the
// x axis. Highlighted points are drawn last so they stay visible.
func plotGrid(points []leaderboard.PlotPoint, width, height int) []string {
	if width < 2 || height < 2 {
		return nil
	}
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	if len(points) == 0 {
		return render(grid)
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.Minutes), math.Max(maxX, p.Minutes)
		minY, maxY = math.Min(minY, p.Value), math.Max(maxY, p.Value)
	}

	place := func(p leaderboard.PlotPoint, mark rune) {
		col := scale(p.Minutes, minX, maxX, width-1)
		row := height - 1 - scale(p.Value, minY, maxY, height-1)
		grid[row][col] = mark
	}
	for _, p := range points {
		if !p.Selected {
			place(p, '·')
		}
	}
	for _, p := range points {
		if p.Selected {
			place(p, '●')
		}
	}
	return render(grid)
}

func scale(v, lo, hi float64, steps int) int {
	if hi <= lo {
		return steps / 2
	}
	return int(math.Round((v - lo) / (hi - lo) * float64(steps)))
}

func render(grid [][]rune) []string {
	out := make([]string, len(grid))
	for i, row := range grid {
		out[i] = string(row)
	}
	return out
}
