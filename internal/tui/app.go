package tui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sadopc/commitpaint/internal/export"
	"github.com/sadopc/commitpaint/internal/git"
	"github.com/sadopc/commitpaint/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	log    *zap.Logger
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	paint    paintModel
	history  historyModel
	settings settingsModel

	help   help.Model
	status string
	isErr  bool
}

// NewApp builds the root model. A nil runner executes git and gh for real.
func NewApp(s *store.Store, log *zap.Logger, runner git.Runner) App {
	if log == nil {
		log = zap.NewNop()
	}
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		log:        log,
		activeView: viewPaint,
		paint:      newPaintModel(s, log, runner),
		history:    newHistoryModel(s),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.history.refresh(),
		a.checkIncomplete(),
	)
}

// checkIncomplete points the user at a run that stopped mid-way.
func (a App) checkIncomplete() tea.Cmd {
	s := a.store
	return func() tea.Msg {
		run, err := s.GetIncompleteRun()
		if err != nil || run == nil {
			return nil
		}
		return statusMsg{text: fmt.Sprintf("Run %s was not finished. Resume it from History (2).", shortKey(run.Key))}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.paint.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if a.paint.plan == nil {
				a.status, a.isErr = "Nothing to export yet", false
				return a, nil
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.paint.stopPainting()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewPaint
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewHistory
			return a, a.history.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.isErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil

	case resumeRunMsg, publishRunMsg:
		a.activeView = viewPaint
		var cmd tea.Cmd
		a.paint, cmd = a.paint.update(msg)
		return a, cmd

	// Painting messages reach the wizard whichever tab is showing.
	case imageLoadedMsg, maxDailyMsg, paintStartedMsg, paintStartFailedMsg,
		paintProgressMsg, paintFinishedMsg, publishDoneMsg, cleanupDoneMsg:
		var cmd tea.Cmd
		a.paint, cmd = a.paint.update(msg)
		if _, ok := msg.(paintFinishedMsg); ok {
			a.activeView = viewPaint
			cmd = tea.Batch(cmd, a.history.refresh())
		}
		return a, cmd

	case historyDataMsg, runProgressMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewPaint:
		a.paint, cmd = a.paint.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPaint:
		return a.paint.formActive()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewHistory:
		return a.history.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewPaint:
		content = a.paint.view()
	case viewHistory:
		content = a.history.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker(contentHeight)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("commitpaint")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Painting indicator in footer
	paintInfo := ""
	if a.paint.painting() {
		pr := a.paint.progress
		paintInfo = successStyle.Render(fmt.Sprintf(" ● %s/%s", formatCount(pr.Done), formatCount(pr.Total)))
	}

	left := footerStyle.Render(helpView)
	right := paintInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker(_ int) string {
	title := titleStyle.Render("Export Plan")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor, "")
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the current plan into dir, or the home directory when dir
// is empty. Files are named after the run key so repeated exports of one
// run overwrite each other.
func (a App) doExport(format int, dir string) tea.Cmd {
	plan := a.paint.plan
	runKey := uuid.NewString()
	if a.paint.current != nil {
		runKey = a.paint.current.Key
	}
	log := a.log
	return func() tea.Msg {
		if plan == nil {
			return statusMsg{text: "Nothing to export yet", isError: true}
		}
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		base := fmt.Sprintf("commitpaint-%d-%s", plan.Year, shortKey(runKey))

		var path string
		if format == 0 {
			path = filepath.Join(dir, base+".csv")
			if err := export.ToCSV(plan, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, base+".json")
			if err := export.ToJSON(plan, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		log.Info("plan exported", zap.String("path", path))
		return exportDoneMsg{path: path}
	}
}
