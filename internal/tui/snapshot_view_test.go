package tui

import (
	"strings"
	"testing"

	"github.com/evanschultz/minik/internal/domain"
)

// TestRenderSnapshotStripAndBoard verifies static rendering for both view states.
func TestRenderSnapshotStripAndBoard(t *testing.T) {
	snap := fixtureSnapshot(t)

	strip := plain(RenderSnapshot(SnapshotView{Snapshot: snap}))
	if !strings.Contains(strip, "Todo 2") || strings.Contains(strip, "Fix login redirect") {
		t.Fatalf("unexpected strip %q", strip)
	}

	board := plain(RenderSnapshot(SnapshotView{Snapshot: snap, Expanded: true}))
	if !strings.Contains(board, "Fix login redirect") {
		t.Fatalf("expected card title in board:\n%s", board)
	}

	hidden := plain(RenderSnapshot(SnapshotView{
		Snapshot: snap,
		Hidden:   domain.NewHiddenSet("todo"),
		Expanded: true,
	}))
	if strings.Contains(hidden, "Fix login redirect") {
		t.Fatalf("expected hidden column omitted:\n%s", hidden)
	}
}

// TestRenderSnapshotMineOnly verifies the mine-only filter needs a username.
func TestRenderSnapshotMineOnly(t *testing.T) {
	snap := fixtureSnapshot(t)

	mine := plain(RenderSnapshot(SnapshotView{Snapshot: snap, MineOnly: true, Username: "octo"}))
	if !strings.Contains(mine, "Todo 1") {
		t.Fatalf("expected filtered count, got %q", mine)
	}
	anon := plain(RenderSnapshot(SnapshotView{Snapshot: snap, MineOnly: true}))
	if !strings.Contains(anon, "Todo 2") {
		t.Fatalf("expected unfiltered count without username, got %q", anon)
	}
}
