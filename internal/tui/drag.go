package tui

import (
	tea "charm.land/bubbletea/v2"
)

// dragPhase identifies where a pointer gesture is in its lifecycle.
type dragPhase int

// dragIdle and friends enumerate the drag lifecycle.
const (
	dragIdle dragPhase = iota
	dragPressed
	dragActive
)

// dragState tracks one pointer gesture that started on a card.
type dragState struct {
	phase          dragPhase
	itemID         string
	sourceColumnID string
	offsetX        int
	offsetY        int
	startX         int
	startY         int
	x              int
	y              int
	overColumnID   string
}

// dropOutcome describes what a release resolved to.
type dropOutcome int

// dropNone and friends enumerate release outcomes.
const (
	dropNone dropOutcome = iota
	dropClick
	dropSameColumn
	dropMove
)

// pressCard starts a gesture on a card.
func pressCard(itemID, columnID string, x, y, offsetX, offsetY int) dragState {
	return dragState{
		phase:          dragPressed,
		itemID:         itemID,
		sourceColumnID: columnID,
		offsetX:        offsetX,
		offsetY:        offsetY,
		startX:         x,
		startY:         y,
		x:              x,
		y:              y,
		overColumnID:   columnID,
	}
}

// active reports whether a gesture is in progress.
func (d dragState) active() bool {
	return d.phase != dragIdle
}

// dragging reports whether the ghost is visible.
func (d dragState) dragging() bool {
	return d.phase == dragActive
}

// motion follows the pointer, promoting a press to a drag once it moves.
func (d dragState) motion(x, y int, overColumnID string) dragState {
	if d.phase == dragIdle {
		return d
	}
	if d.phase == dragPressed && x == d.startX && y == d.startY {
		return d
	}
	d.phase = dragActive
	d.x, d.y = x, y
	d.overColumnID = overColumnID
	return d
}

// release resolves the gesture against the column under the pointer.
func (d dragState) release(overColumnID string) (dropOutcome, string) {
	switch d.phase {
	case dragIdle:
		return dropNone, ""
	case dragPressed:
		return dropClick, ""
	}
	if overColumnID == "" || overColumnID == d.sourceColumnID {
		return dropSameColumn, ""
	}
	return dropMove, overColumnID
}

// ghostOrigin returns where the ghost's top-left corner sits.
func (d dragState) ghostOrigin() (int, int) {
	return max(0, d.x-d.offsetX), max(0, d.y-d.offsetY)
}

// clickSuppressEndMsg closes the post-drag click suppression window.
type clickSuppressEndMsg struct {
	token int
}

// handleLeftPress handles a left button press outside the menu.
func (m Model) handleLeftPress(x, y int) (tea.Model, tea.Cmd) {
	if m.info != "" {
		m.info = ""
		return m, nil
	}
	f := m.frame()
	if f.bannerRow >= 0 && y == f.bannerRow {
		m.banner = banner{}
		return m, m.resizeCmd()
	}
	if y < f.bodyY {
		return m, m.beginWindowDragCmd()
	}
	if !m.settings.Expanded {
		if y >= f.bodyY && y < f.bodyY+f.bodyHeight && !m.snap.Empty() {
			return m.toggleExpanded()
		}
		return m, nil
	}
	bx, by := x-f.bodyX, y-f.bodyY
	card, columnID, ok := f.board.cardAt(bx, by)
	if !ok {
		return m, nil
	}
	m.selectItem(card.itemID)
	m.drag = pressCard(card.itemID, columnID, x, y, bx-card.x0+1, by-card.y0+1)
	return m, nil
}

// handleDragMotion moves an in-progress gesture.
func (m Model) handleDragMotion(x, y int) (tea.Model, tea.Cmd) {
	if !m.drag.active() {
		return m, nil
	}
	f := m.frame()
	over := ""
	if col, ok := f.board.columnAt(x-f.bodyX, y-f.bodyY); ok {
		over = col.id
	}
	m.drag = m.drag.motion(x, y, over)
	return m, nil
}

// handleDragRelease finishes a gesture: click, no-op drop, or move.
func (m Model) handleDragRelease(x, y int) (tea.Model, tea.Cmd) {
	if !m.drag.active() {
		return m, nil
	}
	f := m.frame()
	over := ""
	if col, ok := f.board.columnAt(x-f.bodyX, y-f.bodyY); ok {
		over = col.id
	}
	gesture := m.drag
	m.drag = dragState{}
	outcome, target := gesture.release(over)
	switch outcome {
	case dropClick:
		if m.clicksSuppressed {
			m.logger.Debug("click suppressed after drag", "item_id", gesture.itemID)
			return m, nil
		}
		return m, m.openItemCmd(gesture.itemID)
	case dropSameColumn:
		cmd := m.suppressClicks()
		return m, cmd
	case dropMove:
		cmds := []tea.Cmd{m.suppressClicks()}
		cmds = append(cmds, m.commitMove(gesture.itemID, target))
		return m, tea.Batch(cmds...)
	default:
		return m, nil
	}
}

// suppressClicks opens the post-drag click suppression window.
func (m *Model) suppressClicks() tea.Cmd {
	m.suppressToken++
	if m.cfg.ClickSuppress <= 0 {
		m.clicksSuppressed = false
		return nil
	}
	m.clicksSuppressed = true
	return m.tick(m.cfg.ClickSuppress, clickSuppressEndMsg{token: m.suppressToken})
}
