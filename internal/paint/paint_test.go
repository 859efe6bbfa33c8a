package paint

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sadopc/commitpaint/internal/grid"
	"github.com/sadopc/commitpaint/internal/schedule"
	"github.com/sadopc/commitpaint/internal/store"
)

type memLedger struct {
	cell, emitted int
	saves         int
}

func (m *memLedger) Progress(int64) (int, int, error) { return m.cell, m.emitted, nil }

func (m *memLedger) SaveProgress(_ int64, cell, emitted int) error {
	m.cell, m.emitted = cell, emitted
	m.saves++
	return nil
}

type recorder struct {
	times []time.Time
	fail  int // fail on this call number (1-based), 0 = never
}

func (r *recorder) EmitEvent(_ context.Context, t time.Time) error {
	if r.fail > 0 && len(r.times)+1 == r.fail {
		return errors.New("git exploded")
	}
	r.times = append(r.times, t)
	return nil
}

func testEntries() []schedule.Entry {
	var g grid.Grid
	g[0][0] = 2 // first cell
	g[3][0] = 1
	g[0][1] = 4 // week 1
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	return schedule.Compile(g, 1, start)
}

func TestRunEmitsInOrderAndSkipsZeros(t *testing.T) {
	entries := testEntries()
	rec := &recorder{}
	led := &memLedger{}
	p := New(rec, led, nil)

	var last Progress
	calls := 0
	err := p.Run(context.Background(), 1, entries, func(pr Progress) {
		calls++
		last = pr
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.times) != 7 {
		t.Fatalf("emitted %d events, want 7", len(rec.times))
	}
	want := []time.Time{
		entries[0].Time, entries[0].Time,
		entries[3].Time,
		entries[7].Time, entries[7].Time, entries[7].Time, entries[7].Time,
	}
	for i := range want {
		if !rec.times[i].Equal(want[i]) {
			t.Fatalf("event %d at %s, want %s", i, rec.times[i], want[i])
		}
	}
	for i := 1; i < len(rec.times); i++ {
		if rec.times[i].Before(rec.times[i-1]) {
			t.Fatal("events must be emitted in schedule order")
		}
	}
	if calls != 7 || last.Done != 7 || last.Total != 7 || last.Percent() != 1 {
		t.Fatalf("unexpected progress: calls=%d last=%+v", calls, last)
	}
	if led.cell != len(entries) || led.emitted != 0 {
		t.Fatalf("ledger should mark completion, got (%d, %d)", led.cell, led.emitted)
	}
}

func TestRunResumesFromLedger(t *testing.T) {
	entries := testEntries()
	rec := &recorder{}
	// Two of the four events in week 1 already done.
	led := &memLedger{cell: 7, emitted: 2}
	p := New(rec, led, nil)

	var first Progress
	err := p.Run(context.Background(), 1, entries, func(pr Progress) {
		if first.Total == 0 {
			first = pr
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.times) != 2 {
		t.Fatalf("emitted %d events on resume, want 2", len(rec.times))
	}
	if first.Done != 6 || first.Total != 7 {
		t.Fatalf("first progress after resume = %+v", first)
	}
}

func TestRunCancelled(t *testing.T) {
	entries := testEntries()
	led := &memLedger{}
	ctx, cancel := context.WithCancel(context.Background())

	rec := &recorder{}
	emitter := EmitterFunc(func(c context.Context, at time.Time) error {
		err := rec.EmitEvent(c, at)
		if len(rec.times) == 3 {
			cancel()
		}
		return err
	})

	err := New(emitter, led, nil).Run(ctx, 1, entries, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(rec.times) != 3 {
		t.Fatalf("emitted %d events before cancel, want 3", len(rec.times))
	}
	if Remaining(entries, led.cell, led.emitted) != 4 {
		t.Fatalf("remaining after cancel = %d, want 4", Remaining(entries, led.cell, led.emitted))
	}
}

func TestRunCancelledDuringEmit(t *testing.T) {
	entries := testEntries()
	led := &memLedger{}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	started := make(chan struct{})
	emitter := EmitterFunc(func(c context.Context, _ time.Time) error {
		calls++
		if calls < 2 {
			return nil
		}
		close(started)
		<-c.Done()
		// What a killed git child reports.
		return fmt.Errorf("git commit: %w", errors.New("signal: killed"))
	})

	errc := make(chan error, 1)
	go func() { errc <- New(emitter, led, nil).Run(ctx, 1, entries, nil) }()
	<-started
	cancel()

	err := <-errc
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if led.cell != 0 || led.emitted != 1 {
		t.Fatalf("ledger at (%d, %d), want (0, 1)", led.cell, led.emitted)
	}
}

func TestRunEmitError(t *testing.T) {
	rec := &recorder{fail: 2}
	led := &memLedger{}
	err := New(rec, led, nil).Run(context.Background(), 1, testEntries(), nil)
	if err == nil {
		t.Fatal("expected emit error")
	}
	if led.cell != 0 || led.emitted != 1 {
		t.Fatalf("ledger should hold the last successful event, got (%d, %d)", led.cell, led.emitted)
	}
}

func TestRunZeroSchedule(t *testing.T) {
	var g grid.Grid
	entries := schedule.Compile(g, 3, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))
	rec := &recorder{}
	if err := New(rec, &memLedger{}, nil).Run(context.Background(), 1, entries, nil); err != nil {
		t.Fatal(err)
	}
	if len(rec.times) != 0 {
		t.Fatal("zero schedule should emit nothing")
	}
}

func TestRemaining(t *testing.T) {
	entries := testEntries()
	tests := []struct {
		cell, emitted, want int
	}{
		{0, 0, 7},
		{0, 1, 6},
		{0, 2, 5},
		{3, 0, 5},
		{7, 4, 0},
		{8, 0, 0},
		{364, 0, 0},
	}
	for _, tt := range tests {
		if got := Remaining(entries, tt.cell, tt.emitted); got != tt.want {
			t.Errorf("Remaining(%d, %d) = %d, want %d", tt.cell, tt.emitted, got, tt.want)
		}
	}
}

func TestProgressPercentEmpty(t *testing.T) {
	if (Progress{}).Percent() != 1 {
		t.Fatal("empty schedule is complete")
	}
}

func TestRunWithStoreLedger(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	r, err := s.CreateRun(store.NewRun{ImagePath: "a.png", RepoDir: "/tmp/a", Year: 2023, Multiplier: 1, TotalEvents: 7})
	if err != nil {
		t.Fatal(err)
	}

	entries := testEntries()
	rec := &recorder{fail: 4}
	if err := New(rec, s, nil).Run(context.Background(), r.ID, entries, nil); err == nil {
		t.Fatal("expected failure on fourth event")
	}

	rec.fail = 0
	if err := New(rec, s, nil).Run(context.Background(), r.ID, entries, nil); err != nil {
		t.Fatal(err)
	}
	if len(rec.times) != 7 {
		t.Fatalf("total emitted across both runs = %d, want 7", len(rec.times))
	}
}
