package store

import "time"

// Run statuses.
const (
	StatusPlanned     = "planned"
	StatusPainting    = "painting"
	StatusInterrupted = "interrupted"
	StatusPainted     = "painted"
	StatusPublished   = "published"
	StatusFailed      = "failed"
)

type Run struct {
	ID          int64
	Key         string
	ImagePath   string
	RepoDir     string
	RemoteURL   string
	Year        int
	OffsetWeeks int
	MaxDaily    int
	Multiplier  int
	Invert      bool
	TotalEvents int
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Resumable reports whether painting can continue from the progress ledger.
// A failed run stopped on an error after its last recorded event, so it
// resumes the same way an interrupted one does.
func (r Run) Resumable() bool {
	switch r.Status {
	case StatusPainting, StatusInterrupted, StatusFailed:
		return true
	}
	return false
}

// Publishable reports whether the painted repository can still be pushed or
// cleaned up.
func (r Run) Publishable() bool {
	return r.Status == StatusPainted || r.Status == StatusPublished
}

// NewRun holds the fields a caller supplies when recording a run.
type NewRun struct {
	ImagePath   string
	RepoDir     string
	RemoteURL   string
	Year        int
	OffsetWeeks int
	MaxDaily    int
	Multiplier  int
	Invert      bool
	TotalEvents int
}

// Progress is the position of the last recorded emission for a run.
type Progress struct {
	RunID     int64
	Cell      int
	Emitted   int
	Done      bool
	UpdatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}
