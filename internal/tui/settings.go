package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/commitpaint/internal/schedule"
	"github.com/sadopc/commitpaint/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultOffset   *string
	localPath       *string
	invert          *bool
	defaultMaxDaily *string
	cleanup         *bool
	cacheHours      *string
}

func newSettingsModel(s *store.Store) settingsModel {
	off, lp, md, ch := "", "", "", ""
	inv, cl := false, false
	return settingsModel{
		store:           s,
		defaultOffset:   &off,
		localPath:       &lp,
		invert:          &inv,
		defaultMaxDaily: &md,
		cleanup:         &cl,
		cacheHours:      &ch,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.defaultOffset = s.store.SettingString(store.SettingDefaultOffset, "0")
	*s.localPath = s.store.SettingString(store.SettingLocalPath, ".")
	*s.invert = s.store.SettingBool(store.SettingInvert, false)
	*s.defaultMaxDaily = s.store.SettingString(store.SettingDefaultMaxDaily, "0")
	*s.cleanup = s.store.SettingBool(store.SettingCleanup, false)
	*s.cacheHours = s.store.SettingString(store.SettingCacheHours, "24")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default offset (weeks)").Value(s.defaultOffset).Validate(validateOffset),
			huh.NewInput().Title("Local path").Value(s.localPath),
			huh.NewConfirm().Title("Invert brightness by default").Value(s.invert),
		).Title("Painting"),
		huh.NewGroup(
			huh.NewInput().Title("Fallback busiest day").
				Description("Used when GitHub cannot be reached").
				Value(s.defaultMaxDaily).
				Validate(validateNonNegative),
			huh.NewInput().Title("Cache lifetime (hours)").Value(s.cacheHours).Validate(validateNonNegative),
			huh.NewConfirm().Title("Offer cleanup after publishing").Value(s.cleanup),
		).Title("GitHub"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(fmt.Sprintf("Settings error: %v", err), true)
		}
		return s, tea.Batch(s.refresh(), statusCmd("Settings saved", false))
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := []store.Setting{
		{Key: store.SettingDefaultOffset, Value: strings.TrimSpace(*s.defaultOffset)},
		{Key: store.SettingLocalPath, Value: strings.TrimSpace(*s.localPath)},
		{Key: store.SettingInvert, Value: strconv.FormatBool(*s.invert)},
		{Key: store.SettingDefaultMaxDaily, Value: strings.TrimSpace(*s.defaultMaxDaily)},
		{Key: store.SettingCleanup, Value: strconv.FormatBool(*s.cleanup)},
		{Key: store.SettingCacheHours, Value: strings.TrimSpace(*s.cacheHours)},
	}
	for _, v := range values {
		if err := s.store.SetSetting(v.Key, v.Value); err != nil {
			return err
		}
	}
	return nil
}

func validateNonNegative(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return errors.New("must be a whole number, zero or more")
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  multiplier = max(busiest day / %d, 1)", schedule.MultiplierDivisor)))
	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingDefaultOffset:
		return v + " weeks"
	case store.SettingCacheHours:
		return v + " hours"
	case store.SettingDefaultMaxDaily:
		if v == "0" {
			return "0 (multiplier 1)"
		}
	}
	return v
}
