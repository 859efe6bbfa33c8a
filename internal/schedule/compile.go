package schedule

import (
	"time"

	"github.com/sadopc/commitpaint/internal/grid"
)

// Entry is one calendar cell of a compiled schedule.
type Entry struct {
	Time  time.Time
	Count int
	Week  int
	Day   int
	Level uint8
}

// Compile walks g week by week, top to bottom within each week, and emits one
// entry per cell. Entry times advance by exactly one day per cell, including
// cells with a zero count.
func Compile(g grid.Grid, multiplier int, start time.Time) []Entry {
	entries := make([]Entry, 0, grid.Weeks*grid.DaysPerWeek)
	current := start
	for col := range grid.Weeks {
		for row := range grid.DaysPerWeek {
			lvl := g.At(row, col)
			entries = append(entries, Entry{
				Time:  current,
				Count: multiplier * int(lvl),
				Week:  col,
				Day:   row,
				Level: lvl,
			})
			current = current.AddDate(0, 0, 1)
		}
	}
	return entries
}

// TotalEvents is the number of events a compiled schedule emits.
func TotalEvents(g grid.Grid, multiplier int) int {
	return g.Sum() * multiplier
}

// EstimatedDisplayTotal is TotalEvents scaled by the multiplier a second time.
// It is only an estimate for display and never drives emission.
func EstimatedDisplayTotal(g grid.Grid, multiplier int) int {
	return TotalEvents(g, multiplier) * multiplier
}

// Sum adds up the counts of entries.
func Sum(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Count
	}
	return total
}
