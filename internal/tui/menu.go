package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/minik/internal/app"
	"github.com/evanschultz/minik/internal/domain"
)

// menuRowKind identifies how a menu row behaves.
type menuRowKind int

// rowTitle and friends enumerate menu row kinds.
const (
	rowTitle menuRowKind = iota
	rowInfo
	rowSubmenu
	rowAction
	rowToggle
	rowProject
	rowColumn
)

// menuRow is one line in a menu panel.
type menuRow struct {
	kind    menuRowKind
	label   string
	id      string
	checked bool
}

// interactive reports whether the row reacts to hover and activation.
func (r menuRow) interactive() bool {
	return r.kind != rowTitle && r.kind != rowInfo
}

// Menu submenu and action identifiers.
const (
	menuProjects = "projects"
	menuColumns  = "columns"
	actRefresh   = "refresh"
	actExpand    = "expand"
	actMineOnly  = "mine"
	actQuit      = "quit"
	actShowAll   = "show_all"
	actHideAll   = "hide_all"
)

// menuPanel is one positioned level of the menu tree.
type menuPanel struct {
	level  int
	x, y   int
	width  int
	rows   []menuRow
	parent int
}

// height returns the panel height including borders.
func (p menuPanel) height() int {
	return len(p.rows) + 2
}

// contains reports whether a screen point falls inside the panel.
func (p menuPanel) contains(x, y int) bool {
	return x >= p.x && x < p.x+p.width && y >= p.y && y < p.y+p.height()
}

// rowAt returns the row index under a screen point.
func (p menuPanel) rowAt(x, y int) (int, bool) {
	if !p.contains(x, y) {
		return 0, false
	}
	idx := y - p.y - 1
	if idx < 0 || idx >= len(p.rows) {
		return 0, false
	}
	return idx, true
}

// rowY returns the screen row of one menu row.
func (p menuPanel) rowY(idx int) int {
	return p.y + 1 + idx
}

// menuState holds the open menu tree.
type menuState struct {
	open         bool
	x, y         int
	sub          string
	org          string
	focus        int
	cursor       [3]int
	closeSeq     int
	pendingLevel int
}

// menuCloseMsg fires when a submenu close grace period ends.
type menuCloseMsg struct {
	token int
	level int
}

// projectCache holds the lazily fetched project list for the session.
type projectCache struct {
	loading bool
	loaded  bool
	groups  []app.OrgProjects
	err     error
}

// projectsLoadedMsg delivers the project list.
type projectsLoadedMsg struct {
	groups []app.OrgProjects
	err    error
}

// openMenu opens the menu tree anchored at a screen point.
func (m Model) openMenu(x, y int) (tea.Model, tea.Cmd) {
	m.drag = dragState{}
	m.info = ""
	m.menu = menuState{open: true, x: max(0, x), y: max(0, y), closeSeq: m.menu.closeSeq + 1}
	m.menu.cursor[0] = firstInteractive(m.rootRows())
	return m, m.resizeCmd()
}

// closeMenu dismisses the whole menu tree.
func (m Model) closeMenu() (Model, tea.Cmd) {
	seq := m.menu.closeSeq + 1
	m.menu = menuState{closeSeq: seq}
	return m, m.resizeCmd()
}

// rootRows builds the top-level menu.
func (m Model) rootRows() []menuRow {
	title := "minik"
	if !m.snap.Empty() {
		title = m.snap.Project.Title
	}
	return []menuRow{
		{kind: rowTitle, label: title},
		{kind: rowSubmenu, label: "Projects", id: menuProjects},
		{kind: rowSubmenu, label: "Columns", id: menuColumns},
		{kind: rowAction, label: "Refresh", id: actRefresh},
		{kind: rowToggle, label: "Expanded", id: actExpand, checked: m.settings.Expanded},
		{kind: rowToggle, label: "Only my items", id: actMineOnly, checked: m.settings.MineOnly},
		{kind: rowAction, label: "Quit", id: actQuit},
	}
}

// projectsRows builds the organization level of the project picker.
func (m Model) projectsRows() []menuRow {
	switch {
	case m.projects.loading:
		return []menuRow{{kind: rowInfo, label: "loading…"}}
	case m.projects.err != nil:
		return []menuRow{{kind: rowInfo, label: "couldn't load projects"}}
	case len(m.projects.groups) == 0:
		return []menuRow{{kind: rowInfo, label: "no projects"}}
	}
	rows := make([]menuRow, 0, len(m.projects.groups))
	for _, group := range m.projects.groups {
		rows = append(rows, menuRow{kind: rowSubmenu, label: group.Organization.DisplayName(), id: group.Organization.Login})
	}
	return rows
}

// orgRows builds the project level for one organization.
func (m Model) orgRows(login string) []menuRow {
	for _, group := range m.projects.groups {
		if group.Organization.Login != login {
			continue
		}
		rows := make([]menuRow, 0, len(group.Projects))
		for _, project := range group.Projects {
			rows = append(rows, menuRow{
				kind:    rowProject,
				label:   project.Label(),
				id:      project.ID,
				checked: project.ID == m.settings.SelectedProjectID,
			})
		}
		return rows
	}
	return []menuRow{{kind: rowInfo, label: "no projects"}}
}

// columnRows builds the column visibility submenu.
func (m Model) columnRows() []menuRow {
	if m.snap.Empty() {
		return []menuRow{{kind: rowInfo, label: "no project loaded"}}
	}
	hidden := m.hidden()
	rows := []menuRow{
		{kind: rowAction, label: "Show all columns", id: actShowAll},
		{kind: rowAction, label: "Hide all columns", id: actHideAll},
	}
	for _, col := range m.snap.Columns {
		rows = append(rows, menuRow{kind: rowColumn, label: col.Name, id: col.ID, checked: !hidden.Contains(col.ID)})
	}
	return rows
}

// menuPanels lays out the open menu levels in screen coordinates.
func (m Model) menuPanels() []menuPanel {
	if !m.menu.open {
		return nil
	}
	root := newMenuPanel(0, m.menu.x, m.menu.y, m.rootRows(), -1)
	panels := []menuPanel{root}
	if m.menu.sub == "" {
		return panels
	}
	parent := rowIndex(root.rows, m.menu.sub)
	var rows []menuRow
	switch m.menu.sub {
	case menuProjects:
		rows = m.projectsRows()
	case menuColumns:
		rows = m.columnRows()
	}
	sub := newMenuPanel(1, root.x+root.width, root.rowY(parent)-1, rows, parent)
	panels = append(panels, sub)
	if m.menu.sub != menuProjects || m.menu.org == "" {
		return panels
	}
	orgIdx := rowIndex(sub.rows, m.menu.org)
	if orgIdx < 0 {
		return panels
	}
	return append(panels, newMenuPanel(2, sub.x+sub.width, sub.rowY(orgIdx)-1, m.orgRows(m.menu.org), orgIdx))
}

// newMenuPanel sizes a panel for its rows.
func newMenuPanel(level, x, y int, rows []menuRow, parent int) menuPanel {
	width := 16
	for _, row := range rows {
		width = max(width, lipgloss.Width(menuRowText(row))+4)
	}
	return menuPanel{level: level, x: max(0, x), y: max(0, y), width: width, rows: rows, parent: parent}
}

// menuRowText returns the unstyled text of a row.
func menuRowText(row menuRow) string {
	switch row.kind {
	case rowSubmenu:
		return row.label + " ▸"
	case rowToggle, rowColumn, rowProject:
		if row.checked {
			return "✓ " + row.label
		}
		return "  " + row.label
	default:
		return row.label
	}
}

// renderMenuPanel renders one panel with the cursor row highlighted.
func renderMenuPanel(p menuPanel, cursor int, focused bool) string {
	inner := p.width - 4
	lines := make([]string, 0, len(p.rows))
	for i, row := range p.rows {
		text := padRight(truncate(menuRowText(row), inner), inner)
		switch {
		case row.kind == rowTitle:
			text = lipgloss.NewStyle().Bold(true).Render(text)
		case row.kind == rowInfo:
			text = mutedStyle().Render(text)
		case i == cursor && focused:
			text = lipgloss.NewStyle().Reverse(true).Render(text)
		case i == cursor:
			text = lipgloss.NewStyle().Foreground(accentColor).Render(text)
		}
		lines = append(lines, text)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// menuExtent returns the bottom-right corner of the open menu tree.
func (m Model) menuExtent() (int, int) {
	right, bottom := 0, 0
	for _, p := range m.menuPanels() {
		right = max(right, p.x+p.width)
		bottom = max(bottom, p.y+p.height())
	}
	return right, bottom
}

// menuHit locates the deepest panel row under a screen point.
func (m Model) menuHit(x, y int) (menuPanel, int, bool) {
	panels := m.menuPanels()
	for i := len(panels) - 1; i >= 0; i-- {
		if idx, ok := panels[i].rowAt(x, y); ok {
			return panels[i], idx, true
		}
		if panels[i].contains(x, y) {
			return panels[i], -1, true
		}
	}
	return menuPanel{}, -1, false
}

// handleMenuHover tracks the pointer across menu panels.
func (m Model) handleMenuHover(x, y int) (tea.Model, tea.Cmd) {
	panel, idx, ok := m.menuHit(x, y)
	if !ok {
		var cmd tea.Cmd
		if m.menu.sub != "" {
			cmd = m.scheduleMenuClose(1)
		}
		return m, cmd
	}
	if m.menu.pendingLevel > 0 && panel.level >= m.menu.pendingLevel {
		m.cancelMenuClose()
	}
	if idx < 0 || !panel.rows[idx].interactive() {
		var cmd tea.Cmd
		if panel.level == 0 && m.menu.sub != "" {
			cmd = m.scheduleMenuClose(1)
		}
		return m, cmd
	}
	row := panel.rows[idx]
	m.menu.focus = panel.level
	m.menu.cursor[panel.level] = idx
	var cmd tea.Cmd
	switch {
	case row.kind == rowSubmenu && panel.level == 0:
		m.cancelMenuClose()
		cmd = m.openSubmenu(row.id)
	case row.kind == rowSubmenu && panel.level == 1:
		m.cancelMenuClose()
		m.menu.org = row.id
	case panel.level == 0 && m.menu.sub != "":
		cmd = m.scheduleMenuClose(1)
	case panel.level == 1 && m.menu.org != "":
		cmd = m.scheduleMenuClose(2)
	}
	return m, cmd
}

// openSubmenu shows a first-level submenu, fetching projects on first use.
func (m *Model) openSubmenu(id string) tea.Cmd {
	if m.menu.sub == id {
		return nil
	}
	m.menu.sub = id
	m.menu.org = ""
	m.menu.cursor[1] = 0
	m.menu.cursor[2] = 0
	cmds := []tea.Cmd{m.resizeCmd()}
	if id == menuProjects {
		cmds = append(cmds, m.ensureProjectsCmd())
	}
	return tea.Batch(cmds...)
}

// scheduleMenuClose arms the grace timer for closing a menu level.
func (m *Model) scheduleMenuClose(level int) tea.Cmd {
	if m.menu.pendingLevel > 0 && m.menu.pendingLevel <= level {
		return nil
	}
	m.menu.closeSeq++
	m.menu.pendingLevel = level
	return m.tick(m.cfg.MenuCloseGrace, menuCloseMsg{token: m.menu.closeSeq, level: level})
}

// cancelMenuClose invalidates any armed close timer.
func (m *Model) cancelMenuClose() {
	if m.menu.pendingLevel == 0 {
		return
	}
	m.menu.closeSeq++
	m.menu.pendingLevel = 0
}

// handleMenuClose closes a level unless the pointer came back to it.
func (m Model) handleMenuClose(msg menuCloseMsg) (tea.Model, tea.Cmd) {
	if !m.menu.open || msg.token != m.menu.closeSeq {
		return m, nil
	}
	m.menu.pendingLevel = 0
	if m.pointerKeepsLevel(msg.level) {
		return m, nil
	}
	switch msg.level {
	case 1:
		m.menu.sub = ""
		m.menu.org = ""
		m.menu.focus = 0
	case 2:
		m.menu.org = ""
		m.menu.focus = min(m.menu.focus, 1)
	}
	return m, m.resizeCmd()
}

// pointerKeepsLevel reports whether the pointer is over a level or its parent row.
func (m Model) pointerKeepsLevel(level int) bool {
	panels := m.menuPanels()
	if level >= len(panels) {
		return false
	}
	for _, p := range panels[level:] {
		if p.contains(m.pointer.x, m.pointer.y) {
			return true
		}
	}
	parent := panels[level-1]
	idx, ok := parent.rowAt(m.pointer.x, m.pointer.y)
	return ok && idx == panels[level].parent
}

// handleMenuClick activates a row or dismisses the menu.
func (m Model) handleMenuClick(x, y int, right bool) (tea.Model, tea.Cmd) {
	if right {
		return m.closeMenu()
	}
	panel, idx, ok := m.menuHit(x, y)
	if !ok {
		return m.closeMenu()
	}
	if idx < 0 || !panel.rows[idx].interactive() {
		return m, nil
	}
	m.menu.focus = panel.level
	m.menu.cursor[panel.level] = idx
	return m.activateMenuRow(panel.level, panel.rows[idx])
}

// activateMenuRow runs the behavior of one row.
func (m Model) activateMenuRow(level int, row menuRow) (tea.Model, tea.Cmd) {
	switch row.kind {
	case rowSubmenu:
		m.cancelMenuClose()
		if level == 0 {
			cmd := m.openSubmenu(row.id)
			m.menu.focus = 1
			m.menu.cursor[1] = firstInteractive(m.menuPanels()[1].rows)
			return m, cmd
		}
		m.menu.org = row.id
		m.menu.focus = 2
		m.menu.cursor[2] = firstInteractive(m.orgRows(row.id))
		return m, m.resizeCmd()
	case rowProject:
		next, closeCmd := m.closeMenu()
		selected, cmd := next.selectProject(row.id)
		return selected, tea.Batch(closeCmd, cmd)
	case rowColumn:
		return m.setHidden(m.hidden().Toggle(row.id))
	}
	switch row.id {
	case actShowAll:
		return m.setHidden(domain.HiddenSet{})
	case actHideAll:
		set := domain.HiddenSet{}
		for _, col := range m.snap.Columns {
			set[col.ID] = struct{}{}
		}
		return m.setHidden(set)
	case actRefresh:
		next, closeCmd := m.closeMenu()
		fetch := next.fetchCmd()
		return next, tea.Batch(closeCmd, fetch)
	case actExpand:
		next, _ := m.closeMenu()
		return next.toggleExpanded()
	case actMineOnly:
		next, _ := m.closeMenu()
		return next.toggleMineOnly()
	case actQuit:
		return m, tea.Quit
	}
	return m, nil
}

// handleMenuKey drives the menu tree from the keyboard.
func (m Model) handleMenuKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	panels := m.menuPanels()
	level := min(m.menu.focus, len(panels)-1)
	panel := panels[level]
	cursor := m.menu.cursor[level]
	switch msg.String() {
	case "esc", "q":
		return m.closeMenu()
	case "up", "k":
		m.menu.cursor[level] = stepInteractive(panel.rows, cursor, -1)
	case "down", "j":
		m.menu.cursor[level] = stepInteractive(panel.rows, cursor, 1)
	case "left", "h":
		if level == 0 {
			return m.closeMenu()
		}
		if level == 1 {
			m.menu.sub = ""
			m.menu.org = ""
		} else {
			m.menu.org = ""
		}
		m.menu.focus = level - 1
		return m, m.resizeCmd()
	case "right", "l", "enter", "space":
		if cursor < 0 || cursor >= len(panel.rows) || !panel.rows[cursor].interactive() {
			return m, nil
		}
		row := panel.rows[cursor]
		if row.kind != rowSubmenu && (msg.String() == "right" || msg.String() == "l") {
			return m, nil
		}
		return m.activateMenuRow(level, row)
	}
	return m, nil
}

// ensureProjectsCmd fetches the project list once per session.
func (m *Model) ensureProjectsCmd() tea.Cmd {
	if m.projects.loaded || m.projects.loading {
		return nil
	}
	m.projects.loading = true
	m.projects.err = nil
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		groups, err := svc.ProjectsByOrganization(ctx)
		return projectsLoadedMsg{groups: groups, err: err}
	}
}

// firstInteractive returns the first selectable row index.
func firstInteractive(rows []menuRow) int {
	return stepInteractive(rows, -1, 1)
}

// stepInteractive moves the cursor to the next selectable row in a direction.
func stepInteractive(rows []menuRow, from, dir int) int {
	for i := from + dir; i >= 0 && i < len(rows); i += dir {
		if rows[i].interactive() {
			return i
		}
	}
	if from >= 0 && from < len(rows) {
		return from
	}
	return 0
}

// rowIndex finds a row by id.
func rowIndex(rows []menuRow, id string) int {
	for i, row := range rows {
		if row.id == id {
			return i
		}
	}
	return -1
}
