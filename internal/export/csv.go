package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/commitpaint/internal/schedule"
)

var csvHeader = []string{"Week", "Day", "Weekday", "Date", "Level", "Commits"}

// csvComment starts the totals lines, so readers that set csv.Reader.Comment
// see only the table.
const csvComment = '#'

// ToCSV writes the plan totals as comment lines followed by one row per
// calendar cell of plan.
func ToCSV(plan *schedule.Plan, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, kv := range [][2]string{
		{"year", strconv.Itoa(plan.Year)},
		{"start", plan.Start.Format(time.DateOnly)},
		{"end", plan.End().Format(time.DateOnly)},
		{"offset_weeks", strconv.Itoa(plan.OffsetWeeks)},
		{"max_daily", strconv.Itoa(plan.MaxDaily)},
		{"multiplier", strconv.Itoa(plan.Multiplier)},
		{"total_commits", strconv.Itoa(plan.Total())},
		{"estimated_display_total", strconv.Itoa(plan.Estimate())},
	} {
		if err := w.Write([]string{string(csvComment) + " " + kv[0], kv[1]}); err != nil {
			return err
		}
	}

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range plan.Entries {
		row := []string{
			strconv.Itoa(e.Week),
			strconv.Itoa(e.Day),
			e.Time.Weekday().String()[:3],
			e.Time.Format(time.DateOnly),
			strconv.Itoa(int(e.Level)),
			strconv.Itoa(e.Count),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
