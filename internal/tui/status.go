// internal/tui/status.go
package tui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/nvsbench/internal/images"
	"github.com/mwiater/nvsbench/internal/leaderboard"
	"github.com/mwiater/nvsbench/internal/results"
)

// formatImageIndicator returns a human-readable string for the comparison status.
func formatImageIndicator(status images.Status) string {
	switch status {
	case images.StatusLoading:
		return "Images: loading"
	case images.StatusReady:
		return "Images: ready"
	case images.StatusFailed:
		return "Images: failed"
	default:
		return "Images: select a method and dataset"
	}
}

// renderImageBadge returns a Lipgloss-styled badge for the comparison status.
func renderImageBadge(status images.Status) string {
	bg := lipgloss.Color("255")
	switch status {
	case images.StatusReady:
		bg = lipgloss.Color("114")
	case images.StatusFailed:
		bg = lipgloss.Color("203")
	case images.StatusLoading:
		bg = lipgloss.Color("229")
	}
	badgeStyle := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)
	return badgeStyle.Render(formatImageIndicator(status))
}

// renderSortBadge returns a badge describing the active sort.
func renderSortBadge(s leaderboard.SortState) string {
	arrow := "▼"
	if s.Order == leaderboard.Ascending {
		arrow = "▲"
	}
	badgeStyle := lipgloss.NewStyle().Background(lipgloss.Color("255")).Foreground(lipgloss.Color("0")).Padding(0, 1)
	return badgeStyle.Render(fmt.Sprintf("Sort: %s %s", s.Key.Label(), arrow))
}

// formatSpread summarizes how a highlighted method's per-run values vary
// across the current selection.
func formatSpread(display string, m results.Metric, rs leaderboard.RunningStat) string {
	if rs.Count == 0 {
		return ""
	}
	return fmt.Sprintf("%s %s over %d runs: min %s  max %s  sd %.3f",
		display, m.Label(), rs.Count, m.Format(rs.Min), m.Format(rs.Max), math.Sqrt(rs.Variance()))
}
