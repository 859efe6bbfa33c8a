package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/commitpaint/internal/grid"
	"github.com/sadopc/commitpaint/internal/store"
)

const historyLimit = 50

type historyModel struct {
	store  *store.Store
	width  int
	height int

	runs     []store.Run
	progress *store.Progress
	cursor   int
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{store: s}
}

func (h *historyModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

type historyDataMsg struct {
	runs []store.Run
}

type runProgressMsg struct {
	progress *store.Progress
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		runs, _ := h.store.ListRuns(historyLimit)
		return historyDataMsg{runs: runs}
	}
}

func (h historyModel) loadProgress() tea.Cmd {
	if h.cursor >= len(h.runs) {
		return nil
	}
	id := h.runs[h.cursor].ID
	return func() tea.Msg {
		pr, _ := h.store.GetProgress(id)
		return runProgressMsg{progress: pr}
	}
}

func (h historyModel) selected() (store.Run, bool) {
	if h.cursor >= len(h.runs) {
		return store.Run{}, false
	}
	return h.runs[h.cursor], true
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.runs = msg.runs
		if h.cursor >= len(h.runs) {
			h.cursor = max(0, len(h.runs)-1)
		}
		return h, h.loadProgress()

	case runProgressMsg:
		h.progress = msg.progress
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
				return h, h.loadProgress()
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.runs)-1 {
				h.cursor++
				return h, h.loadProgress()
			}
		case key.Matches(msg, keys.Resume):
			return h, h.act(false)
		case key.Matches(msg, keys.Publish):
			return h, h.act(true)
		case key.Matches(msg, keys.Enter):
			run, ok := h.selected()
			return h, h.act(ok && run.Publishable())
		}
	}
	return h, nil
}

// act resumes the selected run, or reopens its publish step when publish is
// set.
func (h historyModel) act(publish bool) tea.Cmd {
	run, ok := h.selected()
	if !ok {
		return nil
	}
	switch {
	case publish && run.Publishable():
		return func() tea.Msg { return publishRunMsg{run: run} }
	case !publish && run.Resumable():
		return func() tea.Msg { return resumeRunMsg{run: run} }
	}
	return statusCmd(fmt.Sprintf("Run %s is %s", shortKey(run.Key), run.Status), false)
}

func (h historyModel) view() string {
	w := h.width - 4
	title := titleStyle.Render("History")

	if len(h.runs) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No runs yet. Paint something from the Paint tab."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-10s %-6s %-12s %10s  %-24s", "Run", "Year", "Status", "Commits", "Repository"))
	rows = append(rows, header)

	for i, run := range h.runs {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		status := statusStyle(run.Status).Render(fmt.Sprintf("%-12s", run.Status))
		row := style.Render(fmt.Sprintf("%s%-10s %-6d ", cursor, shortKey(run.Key), run.Year)) +
			status +
			style.Render(fmt.Sprintf(" %10s  %-24s", formatCount(run.TotalEvents), truncate(run.RepoDir, 24)))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, h.renderDetail())
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ↑/↓: select  r: resume  p: publish or clean up  enter: next step"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (h historyModel) renderDetail() string {
	run, ok := h.selected()
	if !ok {
		return ""
	}
	lines := []string{
		fmt.Sprintf("  %s %s", mutedStyle.Render("image "), run.ImagePath),
		fmt.Sprintf("  %s %s", mutedStyle.Render("repo  "), run.RepoDir),
		fmt.Sprintf("  %s offset %d, busiest day %d, ×%d",
			mutedStyle.Render("plan  "), run.OffsetWeeks, run.MaxDaily, run.Multiplier),
	}
	if run.RemoteURL != "" {
		lines = append(lines, fmt.Sprintf("  %s %s", mutedStyle.Render("remote"), run.RemoteURL))
	}
	if h.progress != nil && h.progress.RunID == run.ID {
		state := fmt.Sprintf("cell %d/%d, %d emitted in cell", h.progress.Cell, grid.Weeks*grid.DaysPerWeek, h.progress.Emitted)
		if h.progress.Done {
			state = "complete"
		}
		lines = append(lines, fmt.Sprintf("  %s %s", mutedStyle.Render("ledger"), highlightStyle.Render(state)))
	}
	lines = append(lines, fmt.Sprintf("  %s %s", mutedStyle.Render("when  "), run.CreatedAt.Local().Format("2006-01-02 15:04")))
	return strings.Join(lines, "\n")
}
