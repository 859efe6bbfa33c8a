// Package paint drives an Emitter across a compiled schedule, recording every
// emitted event so an interrupted run can pick up where it stopped.
package paint

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/commitpaint/internal/schedule"
)

// Emitter records a single event at t.
type Emitter interface {
	EmitEvent(ctx context.Context, t time.Time) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, t time.Time) error

func (f EmitterFunc) EmitEvent(ctx context.Context, t time.Time) error { return f(ctx, t) }

// Ledger persists the position of the last emitted event.
type Ledger interface {
	Progress(runID int64) (cell, emitted int, err error)
	SaveProgress(runID int64, cell, emitted int) error
}

// Progress is reported after every emitted event.
type Progress struct {
	Done  int
	Total int
	At    time.Time
}

func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

type Painter struct {
	emitter Emitter
	ledger  Ledger
	log     *zap.Logger
}

func New(e Emitter, l Ledger, log *zap.Logger) *Painter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Painter{emitter: e, ledger: l, log: log}
}

// Remaining counts the events left when resuming at (cell, emitted).
func Remaining(entries []schedule.Entry, cell, emitted int) int {
	left := 0
	for i := cell; i < len(entries); i++ {
		left += entries[i].Count
	}
	if cell < len(entries) {
		left -= min(emitted, entries[cell].Count)
	}
	return max(left, 0)
}

// Run emits entries in order, resuming from the ledger. Entries with a zero
// count are skipped. onProgress may be nil.
func (p *Painter) Run(ctx context.Context, runID int64, entries []schedule.Entry, onProgress func(Progress)) error {
	cell, emitted, err := p.ledger.Progress(runID)
	if err != nil {
		return fmt.Errorf("read progress: %w", err)
	}

	total := schedule.Sum(entries)
	done := total - Remaining(entries, cell, emitted)
	if cell > 0 || emitted > 0 {
		p.log.Info("resuming run",
			zap.Int64("run_id", runID),
			zap.Int("cell", cell),
			zap.Int("emitted", emitted),
			zap.Int("done", done),
			zap.Int("total", total))
	}

	for ; cell < len(entries); cell++ {
		e := entries[cell]
		for ; emitted < e.Count; emitted++ {
			if err := ctx.Err(); err != nil {
				p.log.Info("run cancelled", zap.Int64("run_id", runID), zap.Int("done", done))
				return err
			}
			if err := p.emitter.EmitEvent(ctx, e.Time); err != nil {
				// A killed child process reports its own error, not the cancellation.
				if ctxErr := ctx.Err(); ctxErr != nil {
					p.log.Info("run cancelled", zap.Int64("run_id", runID), zap.Int("done", done))
					return ctxErr
				}
				return fmt.Errorf("emit event for %s: %w", e.Time.Format(time.DateOnly), err)
			}
			done++
			if err := p.ledger.SaveProgress(runID, cell, emitted+1); err != nil {
				return fmt.Errorf("save progress: %w", err)
			}
			if onProgress != nil {
				onProgress(Progress{Done: done, Total: total, At: e.Time})
			}
		}
		emitted = 0
	}

	if err := p.ledger.SaveProgress(runID, len(entries), 0); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	p.log.Info("run complete", zap.Int64("run_id", runID), zap.Int("events", done))
	return nil
}
