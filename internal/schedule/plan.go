package schedule

import (
	"time"

	"github.com/sadopc/commitpaint/internal/grid"
)

// Plan is a fully compiled painting, ready to hand to an emitter.
type Plan struct {
	Grid        grid.Grid
	Year        int
	OffsetWeeks int
	MaxDaily    int
	Multiplier  int
	Start       time.Time
	Entries     []Entry
}

// NewPlan validates every input before compiling, so a returned error means
// nothing was computed.
func NewPlan(g grid.Grid, year, offsetWeeks, maxDaily int) (*Plan, error) {
	start, err := AlignStart(year, offsetWeeks)
	if err != nil {
		return nil, err
	}
	mult, err := DeriveMultiplier(maxDaily)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Grid:        g,
		Year:        year,
		OffsetWeeks: offsetWeeks,
		MaxDaily:    maxDaily,
		Multiplier:  mult,
		Start:       start,
		Entries:     Compile(g, mult, start),
	}, nil
}

func (p *Plan) Total() int {
	return TotalEvents(p.Grid, p.Multiplier)
}

func (p *Plan) Estimate() int {
	return EstimatedDisplayTotal(p.Grid, p.Multiplier)
}

// End is the date of the last cell.
func (p *Plan) End() time.Time {
	if len(p.Entries) == 0 {
		return p.Start
	}
	return p.Entries[len(p.Entries)-1].Time
}
