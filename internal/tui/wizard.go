package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/commitpaint/internal/git"
	"github.com/sadopc/commitpaint/internal/grid"
	"github.com/sadopc/commitpaint/internal/paint"
	"github.com/sadopc/commitpaint/internal/schedule"
	"github.com/sadopc/commitpaint/internal/store"
)

type paintStage int

const (
	stageIdle paintStage = iota
	stageImage
	stagePreview
	stageRepo
	stagePlan
	stagePainting
	stagePublish
	stageCleanup
	stageDone
)

var stageNames = map[paintStage]string{
	stageIdle:     "Ready",
	stageImage:    "Image",
	stagePreview:  "Preview",
	stageRepo:     "Repository",
	stagePlan:     "Plan",
	stagePainting: "Painting",
	stagePublish:  "Publish",
	stageCleanup:  "Cleanup",
	stageDone:     "Done",
}

// wizardInput holds form values. It lives behind a pointer so huh can write
// into it while the model is passed around by value.
type wizardInput struct {
	imagePath string
	invert    bool
	proceed   bool
	repoName  string
	localPath string
	remoteURL string
	year      string
	offset    string
	publish   bool
	cleanup   bool
}

// maxDailyFunc looks up the busiest day of a year on the user's calendar.
type maxDailyFunc func(ctx context.Context, year int) (int, error)

type paintModel struct {
	store  *store.Store
	log    *zap.Logger
	runner git.Runner
	width  int
	height int

	fetchMax maxDailyFunc

	stage paintStage
	form  *huh.Form
	in    *wizardInput

	grid      grid.Grid
	chart     barchart.Model
	plan      *schedule.Plan
	maxSource string

	current  *store.Run
	repo     *git.Repo
	progress paint.Progress
	bar      progress.Model
	cancel   func()
	lastErr  error
	summary  string
}

func newPaintModel(s *store.Store, log *zap.Logger, runner git.Runner) paintModel {
	if log == nil {
		log = zap.NewNop()
	}
	if runner == nil {
		runner = git.ExecRunner
	}
	return paintModel{
		store:    s,
		log:      log,
		runner:   runner,
		fetchMax: githubMaxDaily(runner, log),
		in:       &wizardInput{},
		chart:    barchart.New(40, 8),
		bar:      progress.New(progress.WithGradient(levelHex[1], levelHex[grid.Levels-1])),
	}
}

// githubMaxDaily resolves a token and asks the GraphQL API for the year's
// busiest day.
func githubMaxDaily(runner git.Runner, log *zap.Logger) maxDailyFunc {
	return func(ctx context.Context, year int) (int, error) {
		token, err := git.ResolveToken(ctx, runner)
		if err != nil {
			return 0, err
		}
		return git.NewContributionClient(ctx, token, log).MaxDaily(ctx, year)
	}
}

func (p *paintModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.bar.Width = max(20, w-16)
}

func (p paintModel) formActive() bool { return p.form != nil }

func (p paintModel) painting() bool { return p.stage == stagePainting }

// stopPainting cancels an in-flight run. Progress is already on disk, so the
// run can be resumed from History.
func (p paintModel) stopPainting() {
	if p.cancel != nil {
		p.cancel()
	}
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func (p paintModel) update(msg tea.Msg) (paintModel, tea.Cmd) {
	switch msg := msg.(type) {
	case imageLoadedMsg:
		return p.handleImage(msg)

	case maxDailyMsg:
		return p.handleMaxDaily(msg)

	case paintStartedMsg:
		p.current = msg.run
		p.repo = msg.repo
		p.cancel = msg.cancel
		p.progress = msg.initial
		p.stage = stagePainting
		p.lastErr = nil
		text := "Painting started"
		if msg.resumed {
			text = fmt.Sprintf("Resumed run %s", shortKey(msg.run.Key))
		}
		return p, tea.Batch(waitForPaint(msg.updates), statusCmd(text, false))

	case paintStartFailedMsg:
		p.stage = stagePlan
		if p.plan == nil {
			p.stage = stageIdle
		}
		return p, statusCmd(fmt.Sprintf("Could not start: %v", msg.err), true)

	case paintProgressMsg:
		p.progress = msg.progress
		return p, waitForPaint(msg.updates)

	case paintFinishedMsg:
		return p.handleFinished(msg)

	case publishDoneMsg:
		if msg.err != nil {
			p.lastErr = msg.err
			p.summary = "Publishing failed. The local repository was kept; retry from History with p."
			p.stage = stageDone
			return p, statusCmd(fmt.Sprintf("Publish error: %v", msg.err), true)
		}
		if p.current != nil {
			p.current.Status = store.StatusPublished
		}
		return p.enterCleanup("Published")

	case cleanupDoneMsg:
		p.stage = stageDone
		if msg.err != nil {
			p.lastErr = msg.err
			return p, statusCmd(fmt.Sprintf("Cleanup error: %v", msg.err), true)
		}
		p.summary += " Local repository removed."
		return p, statusCmd("Local repository removed", false)

	case resumeRunMsg:
		return p.resume(msg.run)

	case publishRunMsg:
		return p.reopenPublish(msg.run)
	}

	if p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return p.handleKey(msg)
	}
	return p, nil
}

func (p paintModel) handleKey(msg tea.KeyMsg) (paintModel, tea.Cmd) {
	switch p.stage {
	case stageIdle, stageDone:
		if key.Matches(msg, keys.New) || key.Matches(msg, keys.Enter) {
			return p.startWizard()
		}
	case stagePlan:
		switch {
		case key.Matches(msg, keys.Start), key.Matches(msg, keys.Enter):
			if p.plan != nil {
				return p, p.startPainting()
			}
		case key.Matches(msg, keys.Back):
			p.stage = stageRepo
			p.form = p.repoForm()
			return p, p.form.Init()
		}
	case stagePainting:
		if key.Matches(msg, keys.Cancel) {
			p.stopPainting()
			return p, statusCmd("Cancelling...", false)
		}
	}
	return p, nil
}

// --- Forms ---

func (p paintModel) startWizard() (paintModel, tea.Cmd) {
	*p.in = wizardInput{invert: p.store.SettingBool(store.SettingInvert, false)}
	p.grid = grid.Grid{}
	p.plan = nil
	p.current = nil
	p.repo = nil
	p.lastErr = nil
	p.summary = ""
	p.stage = stageImage
	p.form = p.imageForm()
	return p, p.form.Init()
}

func (p paintModel) imageForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Image path").
				Placeholder("~/Pictures/art.png").
				Value(&p.in.imagePath).
				Validate(validateImage),
			huh.NewConfirm().Title("Invert brightness?").
				Description("Dark pixels become the busiest days").
				Value(&p.in.invert),
		).Title("Image"),
	).WithShowHelp(true).WithShowErrors(true)
}

func (p paintModel) previewForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Proceed with this image?").
				Affirmative("Yes").
				Negative("No").
				Value(&p.in.proceed),
		),
	).WithShowHelp(false)
}

func (p paintModel) repoForm() *huh.Form {
	if p.in.localPath == "" {
		p.in.localPath = p.store.SettingString(store.SettingLocalPath, ".")
	}
	if p.in.year == "" {
		p.in.year = strconv.Itoa(time.Now().Year())
	}
	if p.in.offset == "" {
		p.in.offset = strconv.Itoa(p.store.SettingInt(store.SettingDefaultOffset, 0))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Repository name").Value(&p.in.repoName).Validate(validateRepoName),
			huh.NewInput().Title("Local path").
				Description("The repository is created inside this directory").
				Value(&p.in.localPath),
			huh.NewInput().Title("Remote URL").
				Description("Leave empty to create a private repository with gh").
				Value(&p.in.remoteURL),
		).Title("Repository"),
		huh.NewGroup(
			huh.NewInput().Title("Year").Value(&p.in.year).Validate(validateYear),
			huh.NewInput().Title("Horizontal offset (weeks)").Value(&p.in.offset).Validate(validateOffset),
		).Title("Calendar"),
	).WithShowHelp(true).WithShowErrors(true)
}

func (p paintModel) publishForm() *huh.Form {
	p.in.publish = true
	title := "Publish with gh as a private repository?"
	if p.in.remoteURL != "" {
		title = "Push to " + p.in.remoteURL + "?"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Value(&p.in.publish),
		),
	).WithShowHelp(false)
}

func (p paintModel) cleanupForm() *huh.Form {
	p.in.cleanup = p.store.SettingBool(store.SettingCleanup, false)
	dir := ""
	if p.repo != nil {
		dir = p.repo.Dir
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Remove the local repository?").
				Description(dir).
				Value(&p.in.cleanup),
		),
	).WithShowHelp(false)
}

func (p paintModel) updateForm(msg tea.Msg) (paintModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			return p.backOut()
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateCompleted:
		p.form = nil
		return p.completeStage()
	case huh.StateAborted:
		return p.backOut()
	}
	return p, cmd
}

// backOut handles esc inside a form.
func (p paintModel) backOut() (paintModel, tea.Cmd) {
	p.form = nil
	switch p.stage {
	case stagePublish:
		return p.enterCleanup("Not published")
	case stageCleanup:
		p.stage = stageDone
		return p, nil
	}
	p.stage = stageIdle
	return p, nil
}

func (p paintModel) completeStage() (paintModel, tea.Cmd) {
	switch p.stage {
	case stageImage:
		return p, loadImage(expandPath(p.in.imagePath), p.in.invert)

	case stagePreview:
		if !p.in.proceed {
			return p.startWizard()
		}
		p.stage = stageRepo
		p.form = p.repoForm()
		return p, p.form.Init()

	case stageRepo:
		year, _ := strconv.Atoi(strings.TrimSpace(p.in.year))
		p.stage = stagePlan
		p.plan = nil
		return p, p.lookupMaxDaily(year)

	case stagePublish:
		if !p.in.publish {
			return p.enterCleanup("Not published")
		}
		return p, p.publish()

	case stageCleanup:
		if !p.in.cleanup {
			p.stage = stageDone
			return p, nil
		}
		return p, p.removeRepo()
	}
	return p, nil
}

func (p paintModel) enterCleanup(summary string) (paintModel, tea.Cmd) {
	p.summary = summary + "."
	if p.repo == nil {
		p.stage = stageDone
		return p, nil
	}
	p.stage = stageCleanup
	p.form = p.cleanupForm()
	return p, p.form.Init()
}

// --- Validation ---

func validateImage(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("image path is required")
	}
	_, err := grid.Load(expandPath(s), grid.Options{})
	return err
}

func validateRepoName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("name is required")
	}
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return errors.New("name must be a single directory name")
	}
	return nil
}

func validateYear(s string) error {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("year must be a number")
	}
	if year <= schedule.MinYear {
		return fmt.Errorf("year must be after %d", schedule.MinYear)
	}
	return nil
}

func validateOffset(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return errors.New("offset must be a whole number of weeks")
	}
	return nil
}

func expandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// --- Commands ---

func loadImage(path string, invert bool) tea.Cmd {
	return func() tea.Msg {
		g, err := grid.Load(path, grid.Options{InvertLuminance: invert})
		return imageLoadedMsg{path: path, grid: g, err: err}
	}
}

func (p paintModel) handleImage(msg imageLoadedMsg) (paintModel, tea.Cmd) {
	if msg.err != nil {
		p.stage = stageImage
		p.form = p.imageForm()
		return p, tea.Batch(p.form.Init(), statusCmd(fmt.Sprintf("Image error: %v", msg.err), true))
	}
	p.grid = msg.grid
	p.chart = buildHistogram(p.grid, p.width-12, 8)
	p.log.Info("image quantized",
		zap.String("path", msg.path),
		zap.Int("level_sum", p.grid.Sum()))

	p.in.proceed = true
	p.stage = stagePreview
	p.form = p.previewForm()
	return p, p.form.Init()
}

// lookupMaxDaily prefers a fresh cache entry, then the API, then a stale
// cache entry, then the configured default.
func (p paintModel) lookupMaxDaily(year int) tea.Cmd {
	s, log, fetch := p.store, p.log, p.fetchMax
	return func() tea.Msg {
		maxAge := time.Duration(s.SettingInt(store.SettingCacheHours, 24)) * time.Hour
		cached, fresh, ok, err := s.CachedMaxDaily(year, maxAge)
		if err != nil {
			log.Warn("read contribution cache", zap.Error(err))
		}
		if ok && fresh {
			return maxDailyMsg{year: year, maxDaily: cached, source: "cached"}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := fetch(ctx, year)
		if err != nil {
			log.Warn("contribution lookup failed", zap.Int("year", year), zap.Error(err))
			if ok {
				return maxDailyMsg{year: year, maxDaily: cached, source: "stale cache", err: err}
			}
			fallback := s.SettingInt(store.SettingDefaultMaxDaily, 0)
			return maxDailyMsg{year: year, maxDaily: fallback, source: "default", err: err}
		}
		if err := s.CacheMaxDaily(year, n); err != nil {
			log.Warn("write contribution cache", zap.Error(err))
		}
		return maxDailyMsg{year: year, maxDaily: n, source: "GitHub"}
	}
}

func (p paintModel) handleMaxDaily(msg maxDailyMsg) (paintModel, tea.Cmd) {
	offset, _ := strconv.Atoi(strings.TrimSpace(p.in.offset))
	plan, err := schedule.NewPlan(p.grid, msg.year, offset, msg.maxDaily)
	if err != nil {
		p.stage = stageRepo
		p.form = p.repoForm()
		return p, tea.Batch(p.form.Init(), statusCmd(fmt.Sprintf("Plan error: %v", err), true))
	}
	p.plan = plan
	p.maxSource = msg.source
	p.stage = stagePlan
	if msg.err != nil {
		return p, statusCmd(fmt.Sprintf("Contribution lookup failed, using %s value: %v", msg.source, msg.err), true)
	}
	return p, nil
}

func (p paintModel) startPainting() tea.Cmd {
	s, log, runner, plan := p.store, p.log, p.runner, p.plan
	in := *p.in
	return func() tea.Msg {
		parent, err := filepath.Abs(expandPath(in.localPath))
		if err != nil {
			return paintStartFailedMsg{err: err}
		}
		repo, err := git.Init(context.Background(), parent, strings.TrimSpace(in.repoName), runner, log)
		if err != nil {
			return paintStartFailedMsg{err: err}
		}
		imagePath, _ := filepath.Abs(expandPath(in.imagePath))
		run, err := s.CreateRun(store.NewRun{
			ImagePath:   imagePath,
			RepoDir:     repo.Dir,
			RemoteURL:   strings.TrimSpace(in.remoteURL),
			Year:        plan.Year,
			OffsetWeeks: plan.OffsetWeeks,
			MaxDaily:    plan.MaxDaily,
			Multiplier:  plan.Multiplier,
			Invert:      in.invert,
			TotalEvents: plan.Total(),
		})
		if err != nil {
			return paintStartFailedMsg{err: err}
		}
		log.Info("run created", zap.String("run", run.Key), zap.String("repo", repo.Dir))
		return launchPainter(s, log, repo, run, plan.Entries, false)
	}
}

// launchPainter marks run as painting and emits its schedule on a goroutine.
// Updates arrive on the returned channel; progress reports may be dropped when
// the UI falls behind, the final result never is.
func launchPainter(s *store.Store, log *zap.Logger, repo *git.Repo, run *store.Run, entries []schedule.Entry, resumed bool) tea.Msg {
	if log == nil {
		log = zap.NewNop()
	}
	if err := s.UpdateRunStatus(run.ID, store.StatusPainting); err != nil {
		return paintStartFailedMsg{err: err}
	}
	run.Status = store.StatusPainting

	cell, emitted, err := s.Progress(run.ID)
	if err != nil {
		return paintStartFailedMsg{err: err}
	}
	total := schedule.Sum(entries)
	initial := paint.Progress{Done: total - paint.Remaining(entries, cell, emitted), Total: total}

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan paintUpdate, 64)
	painter := paint.New(repo, s, log)

	go func() {
		defer close(updates)
		defer cancel()

		err := painter.Run(ctx, run.ID, entries, func(pr paint.Progress) {
			select {
			case updates <- paintUpdate{progress: pr}:
			default:
			}
		})

		status := store.StatusPainted
		switch {
		case errors.Is(err, context.Canceled):
			status = store.StatusInterrupted
		case err != nil:
			status = store.StatusFailed
			log.Error("painting failed", zap.String("run", run.Key), zap.Error(err))
		default:
			if err := s.MarkProgressDone(run.ID, len(entries)); err != nil {
				log.Warn("mark progress done", zap.Error(err))
			}
		}
		if err := s.UpdateRunStatus(run.ID, status); err != nil {
			log.Error("update run status", zap.String("status", status), zap.Error(err))
		}
		updates <- paintUpdate{done: true, err: err, status: status}
	}()

	return paintStartedMsg{run: run, repo: repo, updates: updates, cancel: cancel, initial: initial, resumed: resumed}
}

func waitForPaint(updates <-chan paintUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		if u.done {
			return paintFinishedMsg{err: u.err, status: u.status}
		}
		return paintProgressMsg{progress: u.progress, updates: updates}
	}
}

func (p paintModel) handleFinished(msg paintFinishedMsg) (paintModel, tea.Cmd) {
	p.cancel = nil
	if p.current != nil {
		p.current.Status = msg.status
	}

	switch {
	case msg.err == nil:
		p.progress.Done = p.progress.Total
		p.stage = stagePublish
		p.form = p.publishForm()
		return p, tea.Batch(p.form.Init(), statusCmd(fmt.Sprintf("Painted %d commits", p.progress.Total), false))
	case errors.Is(msg.err, context.Canceled):
		p.stage = stageDone
		p.summary = "Painting interrupted. Resume it from History."
		return p, statusCmd("Painting interrupted", false)
	default:
		p.stage = stageDone
		p.lastErr = msg.err
		p.summary = "Painting failed. Progress was saved; fix the problem and resume it from History with r."
		return p, statusCmd(fmt.Sprintf("Painting error: %v", msg.err), true)
	}
}

func (p paintModel) publish() tea.Cmd {
	s, log, repo, run := p.store, p.log, p.repo, p.current
	remote := strings.TrimSpace(p.in.remoteURL)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := repo.Publish(ctx, remote); err != nil {
			return publishDoneMsg{err: err}
		}
		if run != nil {
			if err := s.UpdateRunStatus(run.ID, store.StatusPublished); err != nil {
				log.Warn("update run status", zap.Error(err))
			}
		}
		return publishDoneMsg{}
	}
}

func (p paintModel) removeRepo() tea.Cmd {
	repo := p.repo
	return func() tea.Msg {
		return cleanupDoneMsg{err: repo.Remove()}
	}
}

// resume rebuilds the plan of a stored run and continues painting from its
// ledger position.
func (p paintModel) resume(run store.Run) (paintModel, tea.Cmd) {
	if p.painting() {
		return p, statusCmd("A run is already painting", true)
	}
	if !run.Resumable() {
		return p, statusCmd(fmt.Sprintf("Run %s is %s and cannot be resumed", shortKey(run.Key), run.Status), true)
	}

	g, err := grid.Load(run.ImagePath, grid.Options{InvertLuminance: run.Invert})
	if err != nil {
		return p, statusCmd(fmt.Sprintf("Resume error: %v", err), true)
	}
	plan, err := schedule.NewPlan(g, run.Year, run.OffsetWeeks, run.MaxDaily)
	if err != nil {
		return p, statusCmd(fmt.Sprintf("Resume error: %v", err), true)
	}

	*p.in = wizardInput{
		imagePath: run.ImagePath,
		invert:    run.Invert,
		repoName:  filepath.Base(run.RepoDir),
		localPath: filepath.Dir(run.RepoDir),
		remoteURL: run.RemoteURL,
		year:      strconv.Itoa(run.Year),
		offset:    strconv.Itoa(run.OffsetWeeks),
	}
	p.grid = g
	p.plan = plan
	p.maxSource = "recorded"
	p.chart = buildHistogram(g, p.width-12, 8)
	p.form = nil
	p.stage = stagePlan

	s, log := p.store, p.log
	repo := git.Open(run.RepoDir, p.runner, log)
	r := run
	return p, func() tea.Msg {
		return launchPainter(s, log, repo, &r, plan.Entries, true)
	}
}

// reopenPublish picks up a painted run at its publish step, or at cleanup
// once it has been published.
func (p paintModel) reopenPublish(run store.Run) (paintModel, tea.Cmd) {
	if p.painting() {
		return p, statusCmd("A run is already painting", true)
	}
	if !run.Publishable() {
		return p, statusCmd(fmt.Sprintf("Run %s is %s and has nothing to publish", shortKey(run.Key), run.Status), true)
	}
	if _, err := os.Stat(run.RepoDir); err != nil {
		return p, statusCmd(fmt.Sprintf("Repository %s is gone", run.RepoDir), true)
	}

	g, err := grid.Load(run.ImagePath, grid.Options{InvertLuminance: run.Invert})
	if err != nil {
		p.log.Warn("reload image for publish", zap.String("run", run.Key), zap.Error(err))
		g = grid.Grid{}
	}
	*p.in = wizardInput{
		imagePath: run.ImagePath,
		invert:    run.Invert,
		repoName:  filepath.Base(run.RepoDir),
		localPath: filepath.Dir(run.RepoDir),
		remoteURL: run.RemoteURL,
		year:      strconv.Itoa(run.Year),
		offset:    strconv.Itoa(run.OffsetWeeks),
	}
	r := run
	p.grid = g
	p.plan = nil
	p.current = &r
	p.repo = git.Open(run.RepoDir, p.runner, p.log)
	p.lastErr = nil
	p.summary = ""

	if run.Status == store.StatusPublished {
		return p.enterCleanup("Published")
	}
	p.stage = stagePublish
	p.form = p.publishForm()
	return p, p.form.Init()
}

// --- View ---

func (p paintModel) view() string {
	w := p.width - 4
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Paint"), "  ", mutedStyle.Render(stageNames[p.stage]),
	)

	var body string
	switch p.stage {
	case stageIdle:
		body = p.renderIdle()
	case stageImage:
		if p.form != nil {
			body = p.form.View()
		} else {
			body = mutedStyle.Render("Decoding image...")
		}
	case stagePreview:
		body = lipgloss.JoinVertical(lipgloss.Left, p.renderPreview(), "", p.formView())
	case stageRepo:
		body = p.formView()
	case stagePlan:
		body = p.renderPlan()
	case stagePainting:
		body = p.renderPainting()
	case stagePublish, stageCleanup:
		body = lipgloss.JoinVertical(lipgloss.Left, renderHeatmap(p.grid), "", p.formView())
	case stageDone:
		body = p.renderDone()
	}

	style := panelStyle
	if p.painting() {
		style = activePanelStyle
	}
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body))
}

func (p paintModel) formView() string {
	if p.form == nil {
		return ""
	}
	return p.form.View()
}

func (p paintModel) renderIdle() string {
	rows := []string{
		subtitleStyle.Render("Turn an image into a year of commits on your contribution calendar."),
		"",
		highlightStyle.Render("  n") + mutedStyle.Render("  start a new painting"),
		highlightStyle.Render("  2") + mutedStyle.Render("  resume an interrupted run from History"),
	}
	return strings.Join(rows, "\n")
}

func (p paintModel) renderPreview() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeatmap(p.grid),
		renderLegend(),
		"",
		p.chart.View(),
		renderHistogramTable(p.grid),
	)
}

func (p paintModel) renderPlan() string {
	if p.plan == nil {
		return mutedStyle.Render("Looking up your busiest day...")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeatmap(p.grid),
		"",
		renderPlanSummary(p.plan, p.maxSource),
		"",
		mutedStyle.Render("  s/enter: start painting  esc: edit repository  e: export plan"),
	)
}

func (p paintModel) renderPainting() string {
	pr := p.progress
	at := ""
	if !pr.At.IsZero() {
		at = pr.At.Format(time.DateOnly)
	}
	painted := grid.Weeks * grid.DaysPerWeek
	if p.plan != nil {
		painted = paintedCells(p.plan.Entries, pr.Done)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeatmapProgress(p.grid, painted),
		"",
		p.bar.ViewAs(pr.Percent()),
		fmt.Sprintf("%s / %s commits  %s",
			totalStyle.Render(formatCount(pr.Done)), formatCount(pr.Total), mutedStyle.Render(at)),
		"",
		mutedStyle.Render("  x: cancel (progress is saved)"),
	)
}

func (p paintModel) renderDone() string {
	rows := []string{}
	if p.current != nil {
		rows = append(rows, fmt.Sprintf("Run %s  %s", shortKey(p.current.Key),
			statusStyle(p.current.Status).Render(p.current.Status)))
	}
	if p.summary != "" {
		rows = append(rows, p.summary)
	}
	if p.lastErr != nil {
		rows = append(rows, errorStyle.Render(p.lastErr.Error()))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new painting"))
	return strings.Join(rows, "\n")
}

func shortKey(k string) string {
	if len(k) > 8 {
		return k[:8]
	}
	return k
}
