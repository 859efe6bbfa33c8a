package tui

import (
	"fmt"

	"github.com/sadopc/commitpaint/internal/git"
	"github.com/sadopc/commitpaint/internal/grid"
	"github.com/sadopc/commitpaint/internal/paint"
	"github.com/sadopc/commitpaint/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewPaint viewState = iota
	viewHistory
	viewSettings
)

var viewNames = []string{"Paint", "History", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type imageLoadedMsg struct {
	path string
	grid grid.Grid
	err  error
}

type maxDailyMsg struct {
	year     int
	maxDaily int
	source   string
	err      error
}

type paintStartedMsg struct {
	run     *store.Run
	repo    *git.Repo
	updates <-chan paintUpdate
	cancel  func()
	initial paint.Progress
	resumed bool
}

type paintStartFailedMsg struct {
	err error
}

// paintUpdate carries either a progress report or the final result of a
// painting goroutine.
type paintUpdate struct {
	progress paint.Progress
	done     bool
	err      error
	status   string
}

type paintProgressMsg struct {
	progress paint.Progress
	updates  <-chan paintUpdate
}

type paintFinishedMsg struct {
	err    error
	status string
}

type publishDoneMsg struct {
	err error
}

type cleanupDoneMsg struct {
	err error
}

type resumeRunMsg struct {
	run store.Run
}

// publishRunMsg reopens the publish and cleanup steps for a painted run.
type publishRunMsg struct {
	run store.Run
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 10_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

func truncate(s string, n int) string {
	if n <= 1 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
