package tui

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/evanschultz/minik/internal/domain"
)

// testLayout returns the stock board geometry.
func testLayout() layout {
	return layout{columnWidth: 28, gap: 1, maxCardLines: 2}
}

// TestRenderBoardLayout verifies behavior for the covered scenario.
func TestRenderBoardLayout(t *testing.T) {
	snap := fixtureSnapshot(t)
	board := renderBoard(boardInput{snap: snap, hidden: domain.HiddenSet{}, layout: testLayout()})

	if len(board.columns) != 3 {
		t.Fatalf("expected 3 column regions, got %d", len(board.columns))
	}
	if want := 3*28 + 2; board.width != want {
		t.Fatalf("expected width %d, got %d", want, board.width)
	}
	for i, col := range board.columns {
		if col.x1-col.x0 != 28 {
			t.Fatalf("column %d width = %d", i, col.x1-col.x0)
		}
		if col.y1 != board.height {
			t.Fatalf("expected equal column heights, column %d is %d of %d", i, col.y1, board.height)
		}
		if i > 0 && col.x0 != board.columns[i-1].x1+1 {
			t.Fatalf("expected one-cell gap before column %d", i)
		}
	}
	todo := board.columns[0]
	if len(todo.cards) != 2 || todo.cards[0].itemID != "i1" {
		t.Fatalf("unexpected todo cards %#v", todo.cards)
	}
	if todo.cards[1].y0 <= todo.cards[0].y1 {
		t.Fatal("expected a spacer line between cards")
	}
	card, columnID, ok := board.cardAt(todo.cards[0].x0, todo.cards[0].y0)
	if !ok || card.itemID != "i1" || columnID != "todo" {
		t.Fatalf("cardAt() = %#v %q %v", card, columnID, ok)
	}
	if _, _, ok := board.cardAt(todo.x0, 0); ok {
		t.Fatal("expected border cell to miss cards")
	}
	if col, ok := board.columnAt(board.columns[2].x0+3, 3); !ok || col.id != "done" {
		t.Fatal("expected columnAt to find done")
	}
	if _, ok := board.columnAt(board.columns[0].x1, 2); ok {
		t.Fatal("expected gap cell to miss columns")
	}
	if !strings.Contains(plain(board.view), "no items") {
		t.Fatal("expected empty column placeholder")
	}
}

// TestRenderBoardAllHidden verifies behavior for the covered scenario.
func TestRenderBoardAllHidden(t *testing.T) {
	snap := fixtureSnapshot(t)
	board := renderBoard(boardInput{
		snap:   snap,
		hidden: domain.NewHiddenSet("todo", "doing", "done"),
		layout: testLayout(),
	})
	if len(board.columns) != 0 {
		t.Fatal("expected no hit regions")
	}
	if !strings.Contains(plain(board.view), "all columns hidden") || board.width != 28 {
		t.Fatalf("expected one placeholder column, got width %d\n%s", board.width, board.view)
	}
	if strip := plain(renderStrip(boardInput{snap: snap, hidden: domain.NewHiddenSet("todo", "doing", "done")})); !strings.Contains(strip, "all columns hidden") {
		t.Fatal("expected strip placeholder")
	}
}

// TestRenderStripCounts verifies behavior for the covered scenario.
func TestRenderStripCounts(t *testing.T) {
	snap := fixtureSnapshot(t)
	snap.Columns[0].ItemCount = 9

	full := plain(renderStrip(boardInput{snap: snap, hidden: domain.HiddenSet{}}))
	if !strings.Contains(full, "Todo 9") || !strings.Contains(full, "Done 0") {
		t.Fatalf("expected server counts in strip, got %q", full)
	}
	mine := plain(renderStrip(boardInput{snap: snap, hidden: domain.NewHiddenSet("done"), mineOnly: true, username: "OCTO"}))
	if !strings.Contains(mine, "Todo 1") || !strings.Contains(mine, "In Progress 0") {
		t.Fatalf("expected filtered counts in strip, got %q", mine)
	}
	if strings.Contains(mine, "Done") {
		t.Fatal("expected hidden column left out of the strip")
	}
	if lipgloss.Height(mine) != 1 {
		t.Fatal("expected a one-line strip")
	}
}

// TestMetaLineTruncation verifies behavior for the covered scenario.
func TestMetaLineTruncation(t *testing.T) {
	cases := []struct {
		name string
		item domain.Item
		want string
	}{
		{name: "assignees overflow", item: domain.Item{Assignees: []string{"a", "b", "c", "d"}}, want: "@a @b +2"},
		{name: "labels capped", item: domain.Item{Labels: []string{"x", "y", "z", "w"}}, want: "#x #y #z"},
		{name: "both", item: domain.Item{Assignees: []string{"a"}, Labels: []string{"bug"}}, want: "@a  #bug"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := metaLine(tc.item); got != tc.want {
				t.Fatalf("metaLine() = %q, want %q", got, tc.want)
			}
		})
	}

	title, meta := cardText(domain.Item{Title: "Plain"}, 20, 2)
	if meta != "" || len(title) != 1 {
		t.Fatalf("expected no meta row, got %q %#v", meta, title)
	}
}

// TestWrapWords verifies behavior for the covered scenario.
func TestWrapWords(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		width    int
		maxLines int
		want     []string
	}{
		{name: "fits", text: "Fix bug", width: 10, maxLines: 2, want: []string{"Fix bug"}},
		{name: "wraps", text: "Fix the login bug", width: 10, maxLines: 2, want: []string{"Fix the", "login bug"}},
		{name: "clamps", text: "one two three four five", width: 9, maxLines: 2, want: []string{"one two", "three…"}},
		{name: "long word", text: "supercalifragilistic", width: 8, maxLines: 2, want: []string{"superca…"}},
		{name: "empty", text: "  ", width: 8, maxLines: 2, want: []string{""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := wrapWords(tc.text, tc.width, tc.maxLines)
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Fatalf("wrapWords() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

// TestColumnColorsFollowSourceOrder verifies behavior for the covered scenario.
func TestColumnColorsFollowSourceOrder(t *testing.T) {
	first, _ := domain.NewColumn("a", "A", 0)
	seventh, _ := domain.NewColumn("g", "G", 6)
	if columnColor(first) != columnColor(seventh) {
		t.Fatal("expected the color cycle to wrap after six columns")
	}

	snap := fixtureSnapshot(t)
	visible := snap.VisibleColumns(domain.NewHiddenSet("doing"))
	if visible[1].ID != "done" || columnColor(visible[1]) != columnPalette[2] {
		t.Fatal("expected hidden columns to keep their color slot")
	}
}
