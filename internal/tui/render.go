package tui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/evanschultz/minik/internal/domain"
)

// columnPalette holds one accent color per column color slot.
var columnPalette = [domain.ColorSlots]color.Color{
	lipgloss.Color("#5fafff"),
	lipgloss.Color("#5fd787"),
	lipgloss.Color("#ffd75f"),
	lipgloss.Color("#ff8787"),
	lipgloss.Color("#af87ff"),
	lipgloss.Color("#ff87d7"),
}

var (
	mutedColor  = lipgloss.Color("241")
	accentColor = lipgloss.Color("62")
	ghostColor  = lipgloss.Color("213")
)

// columnColor returns the accent color for a column.
func columnColor(column domain.Column) color.Color {
	return columnPalette[column.ColorSlot()]
}

// layout describes board geometry.
type layout struct {
	columnWidth  int
	gap          int
	maxCardLines int
}

// boardInput carries everything the pure renderers read.
type boardInput struct {
	snap         domain.Snapshot
	hidden       domain.HiddenSet
	mineOnly     bool
	username     string
	layout       layout
	selectedItem string
	draggingItem string
	dropColumnID string
}

// items returns the rendered items for one column.
func (in boardInput) items(columnID string) []domain.Item {
	all := in.snap.ItemsInColumn(columnID)
	if !in.mineOnly {
		return all
	}
	out := make([]domain.Item, 0, len(all))
	for _, item := range all {
		if item.AssignedTo(in.username) {
			out = append(out, item)
		}
	}
	return out
}

// count returns the displayed count for one column.
func (in boardInput) count(column domain.Column) int {
	if in.mineOnly {
		return len(in.items(column.ID))
	}
	return column.ItemCount
}

// cardRegion is one card rectangle relative to the board origin.
type cardRegion struct {
	itemID string
	x0, x1 int
	y0, y1 int
}

// columnRegion is one column rectangle relative to the board origin.
type columnRegion struct {
	id     string
	x0, x1 int
	y0, y1 int
	cards  []cardRegion
}

// boardRender is a rendered board plus its hit-test layout.
type boardRender struct {
	view    string
	width   int
	height  int
	columns []columnRegion
}

// columnAt returns the column under a board-relative point.
func (b boardRender) columnAt(x, y int) (columnRegion, bool) {
	for _, col := range b.columns {
		if x >= col.x0 && x < col.x1 && y >= col.y0 && y < col.y1 {
			return col, true
		}
	}
	return columnRegion{}, false
}

// cardAt returns the card under a board-relative point.
func (b boardRender) cardAt(x, y int) (cardRegion, string, bool) {
	col, ok := b.columnAt(x, y)
	if !ok {
		return cardRegion{}, "", false
	}
	for _, card := range col.cards {
		if x >= card.x0 && x < card.x1 && y >= card.y0 && y < card.y1 {
			return card, col.id, true
		}
	}
	return cardRegion{}, "", false
}

// cardSpan records which content lines belong to a card.
type cardSpan struct {
	itemID string
	start  int
	lines  int
}

// renderBoard renders the expanded board.
func renderBoard(in boardInput) boardRender {
	cols := in.snap.VisibleColumns(in.hidden)
	inner := max(4, in.layout.columnWidth-4)
	if len(cols) == 0 {
		block := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1).
			Render(padRight(mutedStyle().Render("all columns hidden"), inner))
		return boardRender{
			view:   block,
			width:  lipgloss.Width(block),
			height: lipgloss.Height(block),
		}
	}

	contents := make([][]string, len(cols))
	spans := make([][]cardSpan, len(cols))
	tallest := 0
	for i, col := range cols {
		lines := []string{columnHeader(col, in.count(col), inner), mutedStyle().Render(strings.Repeat("─", inner))}
		items := in.items(col.ID)
		if len(items) == 0 {
			lines = append(lines, mutedStyle().Render("no items"))
		}
		for j, item := range items {
			if j > 0 {
				lines = append(lines, "")
			}
			card := styleCard(item, inner, in)
			spans[i] = append(spans[i], cardSpan{itemID: item.ID, start: len(lines), lines: len(card)})
			lines = append(lines, card...)
		}
		contents[i] = lines
		tallest = max(tallest, len(lines))
	}

	blocks := make([]string, 0, len(cols)*2)
	regions := make([]columnRegion, 0, len(cols))
	x := 0
	gap := strings.Repeat(" ", in.layout.gap)
	for i, col := range cols {
		lines := contents[i]
		for len(lines) < tallest {
			lines = append(lines, "")
		}
		for j := range lines {
			lines[j] = padRight(lines[j], inner)
		}
		border := lipgloss.RoundedBorder()
		if col.ID == in.dropColumnID {
			border = lipgloss.ThickBorder()
		}
		block := lipgloss.NewStyle().
			Border(border).
			BorderForeground(columnColor(col)).
			Padding(0, 1).
			Render(strings.Join(lines, "\n"))
		width := lipgloss.Width(block)
		region := columnRegion{id: col.ID, x0: x, x1: x + width, y0: 0, y1: lipgloss.Height(block)}
		for _, span := range spans[i] {
			region.cards = append(region.cards, cardRegion{
				itemID: span.itemID,
				x0:     x + 1,
				x1:     x + width - 1,
				y0:     1 + span.start,
				y1:     1 + span.start + span.lines,
			})
		}
		regions = append(regions, region)
		if i > 0 && gap != "" {
			blocks = append(blocks, gap)
		}
		blocks = append(blocks, block)
		x += width + in.layout.gap
	}

	view := lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
	return boardRender{
		view:    view,
		width:   lipgloss.Width(view),
		height:  lipgloss.Height(view),
		columns: regions,
	}
}

// renderStrip renders the minimized one-line summary.
func renderStrip(in boardInput) string {
	cols := in.snap.VisibleColumns(in.hidden)
	if len(cols) == 0 {
		return mutedStyle().Render("all columns hidden")
	}
	chips := make([]string, 0, len(cols))
	for _, col := range cols {
		dot := lipgloss.NewStyle().Foreground(columnColor(col)).Render("●")
		count := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d", in.count(col)))
		chips = append(chips, dot+" "+col.Name+" "+count)
	}
	return strings.Join(chips, "  ")
}

// columnHeader renders the colored name and count line of a column.
func columnHeader(col domain.Column, count int, width int) string {
	countText := fmt.Sprintf("%d", count)
	name := truncate(col.Name, max(1, width-len(countText)-1))
	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(columnColor(col))
	spaces := max(1, width-lipgloss.Width(name)-len(countText))
	return nameStyle.Render(name) + strings.Repeat(" ", spaces) + mutedStyle().Render(countText)
}

// cardText returns the wrapped title lines and the meta line of a card.
func cardText(item domain.Item, width, maxLines int) ([]string, string) {
	title := wrapWords(item.Title, width, maxLines)
	if !item.HasMeta() {
		return title, ""
	}
	return title, truncate(metaLine(item), width)
}

// styleCard renders card lines with selection and drag styling.
func styleCard(item domain.Item, width int, in boardInput) []string {
	title, meta := cardText(item, width, in.layout.maxCardLines)
	titleStyle := lipgloss.NewStyle()
	switch item.ID {
	case in.draggingItem:
		titleStyle = titleStyle.Faint(true)
	case in.selectedItem:
		titleStyle = titleStyle.Bold(true).Foreground(accentColor)
	}
	out := make([]string, 0, len(title)+1)
	for _, line := range title {
		out = append(out, titleStyle.Render(line))
	}
	if meta != "" {
		out = append(out, mutedStyle().Render(meta))
	}
	return out
}

// metaLine summarizes assignees and labels.
func metaLine(item domain.Item) string {
	parts := make([]string, 0, 2)
	if len(item.Assignees) > 0 {
		shown := item.Assignees
		if len(shown) > 2 {
			shown = shown[:2]
		}
		names := make([]string, 0, len(shown)+1)
		for _, login := range shown {
			names = append(names, "@"+login)
		}
		if extra := len(item.Assignees) - len(shown); extra > 0 {
			names = append(names, fmt.Sprintf("+%d", extra))
		}
		parts = append(parts, strings.Join(names, " "))
	}
	if len(item.Labels) > 0 {
		shown := item.Labels
		if len(shown) > 3 {
			shown = shown[:3]
		}
		labels := make([]string, 0, len(shown))
		for _, label := range shown {
			labels = append(labels, "#"+label)
		}
		parts = append(parts, strings.Join(labels, " "))
	}
	return strings.Join(parts, "  ")
}

// renderGhost renders the dragged card as a floating box.
func renderGhost(item domain.Item, width, maxLines int) string {
	inner := max(4, width-4)
	lines, meta := cardText(item, inner, maxLines)
	if meta != "" {
		lines = append(lines, meta)
	}
	for i := range lines {
		lines[i] = padRight(lines[i], inner)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ghostColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// wrapWords greedily wraps text into at most maxLines lines.
func wrapWords(text string, width, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || width <= 0 || maxLines <= 0 {
		return []string{""}
	}
	lines := make([]string, 0, maxLines)
	current := ""
	for _, word := range words {
		word = truncate(word, width)
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if lipgloss.Width(candidate) <= width {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
		if len(lines) == maxLines {
			lines[maxLines-1] = ellipsize(lines[maxLines-1], width)
			return lines
		}
	}
	return append(lines, current)
}

// ellipsize appends an ellipsis, trimming s so the result fits width.
func ellipsize(s string, width int) string {
	rs := []rune(strings.TrimSuffix(s, "…"))
	for len(rs) > 0 && lipgloss.Width(string(rs))+1 > width {
		rs = rs[:len(rs)-1]
	}
	return string(rs) + "…"
}

// truncate truncates s to max display cells, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	rs := []rune(s)
	for len(rs) > 0 && lipgloss.Width(string(rs))+1 > max {
		rs = rs[:len(rs)-1]
	}
	return string(rs) + "…"
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// mutedStyle returns the style for secondary text.
func mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(mutedColor)
}

// fitLines pads or trims content to exactly height lines.
func fitLines(content string, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
