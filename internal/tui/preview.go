package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/commitpaint/internal/grid"
	"github.com/sadopc/commitpaint/internal/schedule"
)

// renderHeatmap draws g two calendar rows per terminal line. Each half block
// takes the upper day as background and the lower day as foreground.
func renderHeatmap(g grid.Grid) string {
	return renderHeatmapProgress(g, grid.Weeks*grid.DaysPerWeek)
}

// renderHeatmapProgress is renderHeatmap with every cell from index painted
// onward dimmed. Cells are indexed in schedule order, week by week.
func renderHeatmapProgress(g grid.Grid, painted int) string {
	color := func(row, col int) lipgloss.Color {
		if col*grid.DaysPerWeek+row < painted {
			return levelColor(g.At(row, col))
		}
		return pendingColor(g.At(row, col))
	}
	var lines []string
	for row := 0; row < grid.DaysPerWeek; row += 2 {
		var b strings.Builder
		for col := range grid.Weeks {
			top := color(row, col)
			if row+1 < grid.DaysPerWeek {
				bottom := color(row+1, col)
				b.WriteString(lipgloss.NewStyle().Background(top).Foreground(bottom).Render("▄"))
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(top).Render("▀"))
			}
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// paintedCells counts the leading schedule cells fully covered by done events.
func paintedCells(entries []schedule.Entry, done int) int {
	for i, e := range entries {
		if done < e.Count {
			return i
		}
		done -= e.Count
	}
	return len(entries)
}

func renderLegend() string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render("less "))
	for lvl := range grid.Levels {
		b.WriteString(lipgloss.NewStyle().Foreground(levelColor(uint8(lvl))).Render("■"))
	}
	b.WriteString(mutedStyle.Render(" more"))
	return b.String()
}

// buildHistogram charts how many cells fall on each level.
func buildHistogram(g grid.Grid, width, height int) barchart.Model {
	if width < 20 {
		width = 20
	}
	if height < 6 {
		height = 6
	}
	chart := barchart.New(width, height)

	hist := g.Histogram()
	bars := make([]barchart.BarData, 0, grid.Levels)
	for lvl, n := range hist {
		bars = append(bars, barchart.BarData{
			Label: fmt.Sprintf("L%d", lvl),
			Values: []barchart.BarValue{{
				Name:  fmt.Sprintf("level %d", lvl),
				Value: float64(n),
				Style: lipgloss.NewStyle().Foreground(levelColor(uint8(lvl))),
			}},
		})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart
}

func renderHistogramTable(g grid.Grid) string {
	hist := g.Histogram()
	var cols []string
	for lvl, n := range hist {
		dot := lipgloss.NewStyle().Foreground(levelColor(uint8(lvl))).Render("●")
		cols = append(cols, fmt.Sprintf("%s L%d %d", dot, lvl, n))
	}
	return "  " + strings.Join(cols, "   ")
}

// renderPlanSummary lists the numbers a user confirms before painting. The
// estimate is labelled as such because it never drives emission.
func renderPlanSummary(plan *schedule.Plan, source string) string {
	label := func(s string) string {
		return lipgloss.NewStyle().Width(22).Render(s)
	}
	rows := []string{
		fmt.Sprintf("  %s %d", label("Year"), plan.Year),
		fmt.Sprintf("  %s %s → %s", label("Calendar"),
			plan.Start.Format("Mon Jan 02 2006"), plan.End().Format("Mon Jan 02 2006")),
		fmt.Sprintf("  %s %d weeks", label("Offset"), plan.OffsetWeeks),
		fmt.Sprintf("  %s %d %s", label("Busiest day"), plan.MaxDaily, mutedStyle.Render("("+source+")")),
		fmt.Sprintf("  %s ×%d", label("Multiplier"), plan.Multiplier),
		fmt.Sprintf("  %s %s", label("Commits to create"), totalStyle.Render(formatCount(plan.Total()))),
		fmt.Sprintf("  %s %s", label("Estimated display"),
			mutedStyle.Render(fmt.Sprintf("~%s (estimate only)", formatCount(plan.Estimate())))),
	}
	return strings.Join(rows, "\n")
}
