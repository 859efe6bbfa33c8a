package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/commitpaint/internal/schedule"
)

type jsonExport struct {
	ExportedAt  string      `json:"exported_at"`
	Year        int         `json:"year"`
	OffsetWeeks int         `json:"offset_weeks"`
	MaxDaily    int         `json:"max_daily"`
	Multiplier  int         `json:"multiplier"`
	Start       string      `json:"start"`
	End         string      `json:"end"`
	Total       int         `json:"total_commits"`
	Estimate    int         `json:"estimated_display_total"`
	Count       int         `json:"count"`
	Entries     []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Week    int    `json:"week"`
	Day     int    `json:"day"`
	Date    string `json:"date"`
	Level   uint8  `json:"level"`
	Commits int    `json:"commits"`
}

// ToJSON writes plan with its totals as indented JSON.
func ToJSON(plan *schedule.Plan, path string) error {
	export := jsonExport{
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		Year:        plan.Year,
		OffsetWeeks: plan.OffsetWeeks,
		MaxDaily:    plan.MaxDaily,
		Multiplier:  plan.Multiplier,
		Start:       plan.Start.Format(time.DateOnly),
		End:         plan.End().Format(time.DateOnly),
		Total:       plan.Total(),
		Estimate:    plan.Estimate(),
		Count:       len(plan.Entries),
	}

	for _, e := range plan.Entries {
		export.Entries = append(export.Entries, jsonEntry{
			Week:    e.Week,
			Day:     e.Day,
			Date:    e.Time.Format(time.DateOnly),
			Level:   e.Level,
			Commits: e.Count,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
