package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

// TestDragStateTransitions verifies behavior for the covered scenario.
func TestDragStateTransitions(t *testing.T) {
	cases := []struct {
		name    string
		moves   [][2]int
		over    string
		outcome dropOutcome
		target  string
	}{
		{name: "click", over: "todo", outcome: dropClick},
		{name: "jitter-free motion stays a click", moves: [][2]int{{10, 5}}, over: "todo", outcome: dropClick},
		{name: "same column", moves: [][2]int{{12, 6}}, over: "todo", outcome: dropSameColumn},
		{name: "outside columns", moves: [][2]int{{90, 40}}, over: "", outcome: dropSameColumn},
		{name: "other column", moves: [][2]int{{40, 6}}, over: "doing", outcome: dropMove, target: "doing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := pressCard("i1", "todo", 10, 5, 3, 1)
			for _, mv := range tc.moves {
				d = d.motion(mv[0], mv[1], tc.over)
			}
			outcome, target := d.release(tc.over)
			if outcome != tc.outcome || target != tc.target {
				t.Fatalf("release() = %v %q, want %v %q", outcome, target, tc.outcome, tc.target)
			}
		})
	}
}

// TestDragGhostFollowsPointer verifies behavior for the covered scenario.
func TestDragGhostFollowsPointer(t *testing.T) {
	d := pressCard("i1", "todo", 10, 5, 3, 1)
	if d.dragging() {
		t.Fatal("expected no ghost before motion")
	}
	d = d.motion(20, 9, "doing")
	if !d.dragging() {
		t.Fatal("expected ghost after motion")
	}
	if x, y := d.ghostOrigin(); x != 17 || y != 8 {
		t.Fatalf("ghostOrigin() = %d,%d", x, y)
	}
	d = d.motion(1, 0, "")
	if x, y := d.ghostOrigin(); x != 0 || y != 0 {
		t.Fatalf("expected ghost clamped to the screen, got %d,%d", x, y)
	}

	var idle dragState
	if idle.motion(5, 5, "todo").active() {
		t.Fatal("expected idle state to ignore motion")
	}
	if outcome, _ := idle.release("todo"); outcome != dropNone {
		t.Fatal("expected idle release to do nothing")
	}
}

// TestDragGhostRendered verifies behavior for the covered scenario.
func TestDragGhostRendered(t *testing.T) {
	svc := newFakeService(t)
	m, _, _ := newTestModel(t, svc)

	sx, sy := cardPoint(t, m, "i3")
	m = send(t, m, tea.MouseClickMsg{X: sx, Y: sy, Button: tea.MouseLeft})
	if m.renderScreen() != m.frame().view {
		t.Fatal("expected no ghost layer before motion")
	}
	x, y := columnPoint(t, m, "done")
	m = send(t, m, tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft})
	if m.renderScreen() == m.frame().view {
		t.Fatal("expected ghost layer while dragging")
	}
	m = send(t, m, tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft})
	if m.drag.active() {
		t.Fatal("expected ghost torn down")
	}
}
