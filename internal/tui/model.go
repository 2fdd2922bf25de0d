package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/minik/internal/app"
	"github.com/evanschultz/minik/internal/domain"
	"github.com/evanschultz/minik/internal/platform"
)

// Service represents the board operations the model depends on.
type Service interface {
	Session(context.Context) (app.Session, error)
	LoadSettings(context.Context) (domain.Settings, error)
	FetchSnapshot(context.Context, string) (domain.Snapshot, error)
	ProjectsByOrganization(context.Context) ([]app.OrgProjects, error)
	MoveItem(context.Context, app.MoveItemInput) error
	SelectProject(context.Context, string) error
	SetExpanded(context.Context, bool) error
	SetMineOnly(context.Context, bool) error
	SetHiddenColumns(context.Context, string, domain.HiddenSet) error
}

// requestTimeout bounds each service call issued from the board.
const requestTimeout = 45 * time.Second

// requestContext returns a context for one service call.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// point is a screen cell.
type point struct {
	x, y int
}

// Model is the board reducer.
type Model struct {
	svc      Service
	cfg      RuntimeConfig
	window   app.Window
	logger   Logger
	openURL  func(string) error
	copyText func(string) error
	tick     func(time.Duration, tea.Msg) tea.Cmd

	keys     keyMap
	help     help.Model
	markdown markdownRenderer

	ready     bool
	width     int
	height    int
	username  string
	resolving bool
	settings  domain.Settings
	snap      domain.Snapshot
	fetchGen  uint64
	fetching  bool
	status    string

	selColumn int
	selItem   int
	info      string

	drag             dragState
	pointer          point
	clicksSuppressed bool
	suppressToken    int

	banner    banner
	bannerSeq int

	menu     menuState
	projects projectCache

	saves *settingsWriter
}

// startupMsg carries persisted settings and the signed-in user.
type startupMsg struct {
	settings    domain.Settings
	settingsErr error
	session     app.Session
	sessionErr  error
}

// snapshotMsg carries one fetch result tagged with its generation.
type snapshotMsg struct {
	gen       uint64
	projectID string
	snap      domain.Snapshot
	err       error
}

// sessionMsg carries a retried session lookup.
type sessionMsg struct {
	session app.Session
	err     error
}

// pollTickMsg triggers a periodic refresh.
type pollTickMsg struct{}

// moveResultMsg carries the outcome of a remote move.
type moveResultMsg struct {
	itemID   string
	columnID string
	err      error
}

// windowResultMsg carries the outcome of a window request.
type windowResultMsg struct {
	action string
	size   app.Size
	err    error
}

// settingsSavedMsg carries the outcome of a settings write.
type settingsSavedMsg struct {
	setting    string
	superseded bool
	err        error
}

// actionResultMsg carries the outcome of an open or copy action.
type actionResultMsg struct {
	action string
	status string
	err    error
}

// NewModel constructs the board model.
func NewModel(svc Service, opts ...Option) Model {
	m := Model{
		svc:      svc,
		cfg:      DefaultRuntimeConfig(),
		logger:   noopLogger{},
		openURL:  platform.OpenURL,
		copyText: clipboard.WriteAll,
		tick:     defaultTick,
		keys:     newKeyMap(),
		help:     help.New(),
		saves:    newSettingsWriter(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// defaultTick schedules msg after d.
func defaultTick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}

// Init loads settings and the session, and arms the poll timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startupCmd(), m.pollCmd())
}

// Update applies one message to the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case startupMsg:
		return m.handleStartup(msg)

	case snapshotMsg:
		return m.handleSnapshot(msg)

	case sessionMsg:
		return m.handleSession(msg)

	case pollTickMsg:
		cmds := []tea.Cmd{m.pollCmd()}
		// Auth failures need the user to sign in again; polling cannot recover them.
		if !m.drag.dragging() && m.banner.kind != bannerAuth {
			cmds = append(cmds, m.fetchCmd())
		}
		return m, tea.Batch(cmds...)

	case moveResultMsg:
		if msg.err == nil {
			m.logger.Info("item moved", "item_id", msg.itemID, "column_id", msg.columnID)
			return m, nil
		}
		cmds := []tea.Cmd{m.showFailure(msg.err), m.fetchCmd()}
		return m, tea.Batch(cmds...)

	case projectsLoadedMsg:
		m.projects.loading = false
		if msg.err != nil {
			m.projects.err = msg.err
			cmd := m.showFailure(msg.err)
			return m, tea.Batch(cmd, m.resizeCmd())
		}
		m.projects.loaded = true
		m.projects.groups = msg.groups
		return m, m.resizeCmd()

	case bannerExpiredMsg:
		if !m.banner.visible() || msg.token != m.banner.token {
			return m, nil
		}
		m.banner = banner{}
		return m, m.resizeCmd()

	case clickSuppressEndMsg:
		if msg.token == m.suppressToken {
			m.clicksSuppressed = false
		}
		return m, nil

	case menuCloseMsg:
		return m.handleMenuClose(msg)

	case windowResultMsg:
		if msg.err != nil {
			m.logger.Warn("window request failed", "action", msg.action, "width", msg.size.Width, "height", msg.size.Height, "err", msg.err)
		}
		return m, nil

	case settingsSavedMsg:
		if msg.superseded {
			m.logger.Debug("settings write superseded", "setting", msg.setting)
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("save setting failed", "setting", msg.setting, "err", msg.err)
		}
		return m, nil

	case actionResultMsg:
		if msg.err != nil {
			m.logger.Warn("action failed", "action", msg.action, "err", msg.err)
			m.status = msg.action + " failed"
			return m, nil
		}
		m.status = msg.status
		return m, nil

	case tea.MouseClickMsg:
		m.pointer = point{x: msg.X, y: msg.Y}
		if m.menu.open {
			return m.handleMenuClick(msg.X, msg.Y, msg.Button == tea.MouseRight)
		}
		switch msg.Button {
		case tea.MouseRight:
			return m.openMenu(msg.X, msg.Y)
		case tea.MouseLeft:
			return m.handleLeftPress(msg.X, msg.Y)
		}
		return m, nil

	case tea.MouseMotionMsg:
		m.pointer = point{x: msg.X, y: msg.Y}
		if m.menu.open {
			return m.handleMenuHover(msg.X, msg.Y)
		}
		return m.handleDragMotion(msg.X, msg.Y)

	case tea.MouseReleaseMsg:
		m.pointer = point{x: msg.X, y: msg.Y}
		return m.handleDragRelease(msg.X, msg.Y)

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleStartup applies settings and session, then fetches the selected project.
func (m Model) handleStartup(msg startupMsg) (tea.Model, tea.Cmd) {
	m.ready = true
	if msg.settingsErr != nil {
		m.logger.Warn("load settings failed", "err", msg.settingsErr)
	} else {
		m.settings = msg.settings
	}
	cmds := make([]tea.Cmd, 0, 3)
	if msg.sessionErr != nil {
		cmds = append(cmds, m.showFailure(msg.sessionErr))
	} else {
		m.username = msg.session.Login
		m.logger.Info("signed in", "login", m.username)
	}
	if msg.sessionErr == nil || app.Classify(msg.sessionErr) != app.FailureAuth {
		cmds = append(cmds, m.fetchCmd())
	}
	cmds = append(cmds, m.resizeCmd())
	return m, tea.Batch(cmds...)
}

// handleSnapshot applies a fetch result unless a newer fetch superseded it.
func (m Model) handleSnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.fetchGen || msg.projectID != m.settings.SelectedProjectID {
		m.logger.Debug("discarding stale snapshot", "gen", msg.gen, "latest", m.fetchGen, "project_id", msg.projectID)
		return m, nil
	}
	m.fetching = false
	if msg.err != nil {
		cmd := m.showFailure(msg.err)
		return m, tea.Batch(cmd, m.resizeCmd())
	}
	m.snap = msg.snap
	if m.banner.kind == bannerFetch {
		m.banner = banner{}
	}
	m.clampSelection()
	m.logger.Debug("board refreshed", "project_id", msg.projectID, "columns", len(msg.snap.Columns), "items", len(msg.snap.Items))
	if m.username == "" && !m.resolving {
		m.resolving = true
		return m, tea.Batch(m.sessionCmd(), m.resizeCmd())
	}
	return m, m.resizeCmd()
}

// handleSession applies a retried session lookup.
func (m Model) handleSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	m.resolving = false
	if msg.err != nil {
		m.logger.Warn("session lookup failed", "err", msg.err)
		if app.Classify(msg.err) == app.FailureAuth {
			cmd := m.showFailure(msg.err)
			return m, tea.Batch(cmd, m.resizeCmd())
		}
		return m, nil
	}
	m.username = msg.session.Login
	m.clampSelection()
	m.logger.Info("signed in", "login", m.username)
	return m, m.resizeCmd()
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.menu.open {
		return m.handleMenuKey(msg)
	}
	if m.info != "" {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back, m.keys.cardInfo):
			m.info = ""
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.drag = dragState{}
		m.help.ShowAll = false
		return m, m.resizeCmd()
	case key.Matches(msg, m.keys.reload):
		cmd := m.fetchCmd()
		return m, cmd
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, m.resizeCmd()
	case key.Matches(msg, m.keys.toggleExpand):
		return m.toggleExpanded()
	case key.Matches(msg, m.keys.toggleMine):
		return m.toggleMineOnly()
	case key.Matches(msg, m.keys.menu):
		return m.openMenu(m.cfg.Padding, 1)
	case key.Matches(msg, m.keys.dismiss):
		if !m.banner.visible() {
			return m, nil
		}
		m.banner = banner{}
		return m, m.resizeCmd()
	case key.Matches(msg, m.keys.moveLeft):
		m.moveSelection(-1, 0)
	case key.Matches(msg, m.keys.moveRight):
		m.moveSelection(1, 0)
	case key.Matches(msg, m.keys.moveUp):
		m.moveSelection(0, -1)
	case key.Matches(msg, m.keys.moveDown):
		m.moveSelection(0, 1)
	case key.Matches(msg, m.keys.moveCardLeft):
		cmd := m.moveSelectedCard(-1)
		return m, cmd
	case key.Matches(msg, m.keys.moveCardRight):
		cmd := m.moveSelectedCard(1)
		return m, cmd
	case key.Matches(msg, m.keys.cardInfo):
		if item, ok := m.selectedItem(); ok {
			m.info = item.ID
		}
	case key.Matches(msg, m.keys.openCard):
		if item, ok := m.selectedItem(); ok {
			return m, m.openItemCmd(item.ID)
		}
	case key.Matches(msg, m.keys.copyURL):
		if item, ok := m.selectedItem(); ok {
			return m, m.copyItemCmd(item.ID)
		}
	}
	return m, nil
}

// fetchCmd issues a snapshot fetch under a new generation.
func (m *Model) fetchCmd() tea.Cmd {
	projectID := strings.TrimSpace(m.settings.SelectedProjectID)
	if projectID == "" {
		return nil
	}
	m.fetchGen++
	m.fetching = true
	gen := m.fetchGen
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		snap, err := svc.FetchSnapshot(ctx, projectID)
		return snapshotMsg{gen: gen, projectID: projectID, snap: snap, err: err}
	}
}

// pollCmd arms the next poll tick.
func (m Model) pollCmd() tea.Cmd {
	return m.tick(m.cfg.PollInterval, pollTickMsg{})
}

// startupCmd loads settings and the signed-in user.
func (m Model) startupCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		settings, settingsErr := svc.LoadSettings(ctx)
		session, sessionErr := svc.Session(ctx)
		return startupMsg{settings: settings, settingsErr: settingsErr, session: session, sessionErr: sessionErr}
	}
}

// sessionCmd looks up the signed-in user again.
func (m Model) sessionCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		session, err := svc.Session(ctx)
		return sessionMsg{session: session, err: err}
	}
}

// commitMove moves an item locally and sends the mutation.
func (m *Model) commitMove(itemID, columnID string) tea.Cmd {
	item, ok := m.snap.Item(itemID)
	if !ok || item.ColumnID == columnID {
		return nil
	}
	moved, err := m.snap.MoveItem(itemID, columnID)
	if err != nil {
		m.logger.Warn("local move rejected", "item_id", itemID, "column_id", columnID, "err", err)
		return nil
	}
	m.snap = moved
	// A fetch issued before this move would overwrite it with stale data.
	m.fetchGen++
	m.fetching = false
	m.selectItem(itemID)
	m.logger.Info("moving item", "item_id", itemID, "from", item.ColumnID, "to", columnID)

	in := app.MoveItemInput{
		ProjectID:     moved.Project.ID,
		ItemID:        itemID,
		StatusFieldID: moved.StatusFieldID,
		ColumnID:      columnID,
	}
	svc := m.svc
	move := func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return moveResultMsg{itemID: itemID, columnID: columnID, err: svc.MoveItem(ctx, in)}
	}
	return tea.Batch(move, m.resizeCmd())
}

// toggleExpanded flips between the strip and the board.
func (m Model) toggleExpanded() (Model, tea.Cmd) {
	m.settings.Expanded = !m.settings.Expanded
	m.drag = dragState{}
	expanded := m.settings.Expanded
	persist := m.persistCmd("expanded", "expanded", func(ctx context.Context, svc Service) error {
		return svc.SetExpanded(ctx, expanded)
	})
	return m, tea.Batch(persist, m.resizeCmd())
}

// toggleMineOnly flips the assigned-to-me filter.
func (m Model) toggleMineOnly() (Model, tea.Cmd) {
	m.settings.MineOnly = !m.settings.MineOnly
	m.clampSelection()
	mineOnly := m.settings.MineOnly
	persist := m.persistCmd("mine_only", "mine_only", func(ctx context.Context, svc Service) error {
		return svc.SetMineOnly(ctx, mineOnly)
	})
	return m, tea.Batch(persist, m.resizeCmd())
}

// setHidden replaces the hidden column set of the selected project.
func (m Model) setHidden(set domain.HiddenSet) (Model, tea.Cmd) {
	projectID := m.settings.SelectedProjectID
	if strings.TrimSpace(projectID) == "" {
		return m, nil
	}
	m.settings = m.settings.WithHidden(projectID, set)
	m.clampSelection()
	saved := set.Clone()
	persist := m.persistCmd("hidden_columns", "hidden_columns:"+projectID, func(ctx context.Context, svc Service) error {
		return svc.SetHiddenColumns(ctx, projectID, saved)
	})
	return m, tea.Batch(persist, m.resizeCmd())
}

// selectProject switches the board to another project.
func (m Model) selectProject(projectID string) (Model, tea.Cmd) {
	if projectID == m.settings.SelectedProjectID && !m.snap.Empty() {
		cmd := m.fetchCmd()
		return m, cmd
	}
	m.settings.SelectedProjectID = projectID
	m.snap = domain.Snapshot{}
	m.selColumn, m.selItem = 0, 0
	m.drag = dragState{}
	m.logger.Info("project selected", "project_id", projectID)
	persist := m.persistCmd("selected_project", "selected_project", func(ctx context.Context, svc Service) error {
		return svc.SelectProject(ctx, projectID)
	})
	fetch := m.fetchCmd()
	return m, tea.Batch(persist, fetch, m.resizeCmd())
}

// persistCmd runs one settings write. Writes sharing a key land in issue order.
func (m Model) persistCmd(setting, key string, save func(context.Context, Service) error) tea.Cmd {
	svc, saves := m.svc, m.saves
	if saves == nil {
		saves = newSettingsWriter()
	}
	seq := saves.issue(key)
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		ran, err := saves.write(key, seq, func() error {
			return save(ctx, svc)
		})
		return settingsSavedMsg{setting: setting, superseded: !ran, err: err}
	}
}

// settingsWriter serializes settings writes and drops ones a newer write replaced.
type settingsWriter struct {
	writeMu sync.Mutex

	mu     sync.Mutex
	issued map[string]uint64
}

// newSettingsWriter constructs an empty writer.
func newSettingsWriter() *settingsWriter {
	return &settingsWriter{issued: map[string]uint64{}}
}

// issue reserves the next sequence number for key.
func (w *settingsWriter) issue(key string) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.issued[key]++
	return w.issued[key]
}

// latest reports the newest sequence issued for key.
func (w *settingsWriter) latest(key string) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.issued[key]
}

// write runs save unless a newer write for key was issued. It reports whether save ran.
func (w *settingsWriter) write(key string, seq uint64, save func() error) (bool, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if seq < w.latest(key) {
		return false, nil
	}
	return true, save()
}

// resizeCmd asks the host window to fit the current content.
func (m Model) resizeCmd() tea.Cmd {
	if m.window == nil {
		return nil
	}
	size := m.desiredSize()
	win := m.window
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return windowResultMsg{action: "resize", size: size, err: win.Resize(ctx, size)}
	}
}

// beginWindowDragCmd hands a header press to the host window.
func (m Model) beginWindowDragCmd() tea.Cmd {
	if m.window == nil {
		return nil
	}
	win := m.window
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return windowResultMsg{action: "drag", err: win.BeginDrag(ctx)}
	}
}

// desiredSize returns the window size for the current content.
func (m Model) desiredSize() app.Size {
	f := m.frame()
	size := app.Size{Width: f.width, Height: f.height}
	if m.menu.open {
		right, bottom := m.menuExtent()
		size.Width = max(size.Width, right+m.cfg.MenuMargin)
		size.Height = max(size.Height, bottom+m.cfg.MenuMargin)
	}
	return size
}

// openItemCmd opens an item's link in the browser.
func (m Model) openItemCmd(itemID string) tea.Cmd {
	item, ok := m.snap.Item(itemID)
	if !ok || strings.TrimSpace(item.URL) == "" {
		return nil
	}
	open, url := m.openURL, item.URL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return actionResultMsg{action: "open", err: err}
		}
		return actionResultMsg{action: "open", status: "opened " + url}
	}
}

// copyItemCmd copies an item's link to the clipboard.
func (m Model) copyItemCmd(itemID string) tea.Cmd {
	item, ok := m.snap.Item(itemID)
	if !ok || strings.TrimSpace(item.URL) == "" {
		return nil
	}
	copyText, url := m.copyText, item.URL
	return func() tea.Msg {
		if err := copyText(url); err != nil {
			return actionResultMsg{action: "copy", err: err}
		}
		return actionResultMsg{action: "copy", status: "copied link"}
	}
}

// hidden returns the hidden set of the selected project.
func (m Model) hidden() domain.HiddenSet {
	return m.settings.HiddenFor(m.settings.SelectedProjectID)
}

// boardInput collects renderer input from the model.
func (m Model) boardInput() boardInput {
	in := boardInput{
		snap:     m.snap,
		hidden:   m.hidden(),
		mineOnly: m.mineOnlyActive(),
		username: m.username,
		layout: layout{
			columnWidth:  m.cfg.ColumnWidth,
			gap:          m.cfg.ColumnGap,
			maxCardLines: m.cfg.MaxCardLines,
		},
	}
	if m.drag.dragging() {
		in.draggingItem = m.drag.itemID
		in.dropColumnID = m.drag.overColumnID
	} else if item, ok := m.selectedItem(); ok {
		in.selectedItem = item.ID
	}
	return in
}

// mineOnlyActive reports whether the assigned-to-me filter applies.
// The filter waits for the signed-in user to be known.
func (m Model) mineOnlyActive() bool {
	return m.settings.MineOnly && m.username != ""
}

// selectedItem returns the keyboard-selected item.
func (m Model) selectedItem() (domain.Item, bool) {
	cols := m.snap.VisibleColumns(m.hidden())
	if len(cols) == 0 {
		return domain.Item{}, false
	}
	col := cols[clamp(m.selColumn, 0, len(cols)-1)]
	items := m.filteredItems(col.ID)
	if len(items) == 0 {
		return domain.Item{}, false
	}
	return items[clamp(m.selItem, 0, len(items)-1)], true
}

// filteredItems returns a column's items after the mine-only filter.
func (m Model) filteredItems(columnID string) []domain.Item {
	in := boardInput{snap: m.snap, mineOnly: m.mineOnlyActive(), username: m.username}
	return in.items(columnID)
}

// selectItem moves the keyboard selection to an item.
func (m *Model) selectItem(itemID string) {
	for ci, col := range m.snap.VisibleColumns(m.hidden()) {
		for ii, item := range m.filteredItems(col.ID) {
			if item.ID == itemID {
				m.selColumn, m.selItem = ci, ii
				return
			}
		}
	}
}

// moveSelection moves the keyboard selection by column and row deltas.
func (m *Model) moveSelection(dc, di int) {
	cols := m.snap.VisibleColumns(m.hidden())
	if len(cols) == 0 {
		return
	}
	m.selColumn = clamp(m.selColumn+dc, 0, len(cols)-1)
	items := m.filteredItems(cols[m.selColumn].ID)
	if len(items) == 0 {
		m.selItem = 0
		return
	}
	m.selItem = clamp(m.selItem+di, 0, len(items)-1)
}

// moveSelectedCard moves the selected card to the adjacent visible column.
func (m *Model) moveSelectedCard(dir int) tea.Cmd {
	item, ok := m.selectedItem()
	if !ok {
		return nil
	}
	cols := m.snap.VisibleColumns(m.hidden())
	target := clamp(m.selColumn, 0, len(cols)-1) + dir
	if target < 0 || target >= len(cols) {
		return nil
	}
	return m.commitMove(item.ID, cols[target].ID)
}

// clampSelection keeps the selection inside the visible board.
func (m *Model) clampSelection() {
	m.moveSelection(0, 0)
}

// frame is one rendered screen plus the geometry used for hit testing.
type frame struct {
	view       string
	width      int
	height     int
	bodyX      int
	bodyY      int
	bodyHeight int
	board      boardRender
	bannerRow  int
}

// frame renders the header, body and footer.
func (m Model) frame() frame {
	pad := m.cfg.Padding
	f := frame{bodyX: pad, bodyY: 1, bannerRow: -1}
	var body string
	switch {
	case m.snap.Empty():
		body = m.placeholder()
	case m.settings.Expanded:
		f.board = renderBoard(m.boardInput())
		body = f.board.view
	default:
		body = renderStrip(m.boardInput())
	}
	f.bodyHeight = lipgloss.Height(body)
	width := lipgloss.Width(body) + 2*pad

	lines := []string{m.renderHeader(width)}
	prefix := strings.Repeat(" ", pad)
	for _, line := range strings.Split(body, "\n") {
		lines = append(lines, prefix+line)
	}
	if m.banner.visible() {
		f.bannerRow = len(lines)
		lines = append(lines, renderBanner(m.banner, width))
	}
	if m.settings.Expanded || m.help.ShowAll {
		helpBubble := m.help
		helpBubble.SetWidth(max(0, width-2*pad))
		for _, line := range strings.Split(helpBubble.View(m.keys), "\n") {
			lines = append(lines, prefix+mutedStyle().Render(line))
		}
	}
	f.view = strings.Join(lines, "\n")
	f.width = max(width, lipgloss.Width(f.view))
	f.height = lipgloss.Height(f.view)
	return f
}

// placeholder returns the body shown when no board is loaded.
func (m Model) placeholder() string {
	switch {
	case strings.TrimSpace(m.settings.SelectedProjectID) == "":
		return mutedStyle().Render("no project · press m or right-click to pick one")
	case m.fetching:
		return mutedStyle().Render("loading board…")
	default:
		return mutedStyle().Render("board unavailable · press r to retry")
	}
}

// renderHeader renders the title line clipped to width.
func (m Model) renderHeader(width int) string {
	title := "minik"
	if !m.snap.Empty() {
		title = m.snap.Project.Title
	}
	parts := make([]string, 0, 4)
	if m.username != "" {
		parts = append(parts, "@"+m.username)
	}
	switch {
	case m.mineOnlyActive():
		parts = append(parts, "mine")
	case m.settings.MineOnly:
		parts = append(parts, "mine (paused)")
	}
	if m.fetching {
		parts = append(parts, "⟳")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	right := strings.Join(parts, " · ")
	room := width - lipgloss.Width(right) - 1
	if right == "" || room < 8 {
		return lipgloss.NewStyle().Bold(true).Render(truncate(title, max(1, width)))
	}
	left := truncate(title, room)
	spaces := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return lipgloss.NewStyle().Bold(true).Render(left) + strings.Repeat(" ", spaces) + mutedStyle().Render(right)
}

// overlay is one floating layer drawn above the board.
type overlay struct {
	content string
	x, y, z int
}

// renderScreen composes the board with the ghost, menu and info layers.
func (m Model) renderScreen() string {
	f := m.frame()
	width, height := max(f.width, m.width), max(f.height, m.height)
	layers := make([]overlay, 0, 4)
	if m.drag.dragging() {
		if item, ok := m.snap.Item(m.drag.itemID); ok {
			ghost := renderGhost(item, m.cfg.ColumnWidth, m.cfg.MaxCardLines)
			x, y := m.drag.ghostOrigin()
			width = max(width, x+lipgloss.Width(ghost))
			height = max(height, y+lipgloss.Height(ghost))
			layers = append(layers, overlay{content: ghost, x: x, y: y, z: 20})
		}
	}
	for i, p := range m.menuPanels() {
		width = max(width, p.x+p.width)
		height = max(height, p.y+p.height())
		layers = append(layers, overlay{
			content: renderMenuPanel(p, m.menu.cursor[p.level], m.menu.focus == p.level),
			x:       p.x,
			y:       p.y,
			z:       30 + i,
		})
	}
	if item, ok := m.snap.Item(m.info); ok && m.info != "" {
		panel := m.renderInfo(item, width)
		centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
		layers = append(layers, overlay{content: centered, z: 50})
	}
	if len(layers) == 0 {
		return f.view
	}
	return composeLayers(f.view, width, height, layers)
}

// renderInfo renders the card detail panel.
func (m Model) renderInfo(item domain.Item, width int) string {
	inner := max(24, min(72, width-6))
	body := m.markdown.render(itemMarkdown(item), inner)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Render(body + "\n" + mutedStyle().Render("esc close"))
}

// composeLayers draws overlays above base on a fixed-size canvas.
func composeLayers(base string, width, height int, overlays []overlay) string {
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(fitLines(base, height)).X(0).Y(0).Z(0))
	for _, o := range overlays {
		canvas.Compose(lipgloss.NewLayer(o.content).X(o.x).Y(o.y).Z(o.z))
	}
	return canvas.Render()
}

// View renders the model.
func (m Model) View() tea.View {
	content := "loading..."
	if m.ready {
		content = m.renderScreen()
	}
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeAllMotion
	v.AltScreen = true
	return v
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
