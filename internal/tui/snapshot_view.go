package tui

import "github.com/evanschultz/minik/internal/domain"

// SnapshotView describes one static rendering of a board outside the program loop.
type SnapshotView struct {
	Snapshot domain.Snapshot
	Hidden   domain.HiddenSet
	MineOnly bool
	Username string
	Expanded bool
	Config   RuntimeConfig
}

// RenderSnapshot renders the strip or the expanded board for one snapshot.
func RenderSnapshot(v SnapshotView) string {
	cfg := v.Config.normalized()
	in := boardInput{
		snap:     v.Snapshot,
		hidden:   v.Hidden,
		mineOnly: v.MineOnly && v.Username != "",
		username: v.Username,
		layout: layout{
			columnWidth:  cfg.ColumnWidth,
			gap:          cfg.ColumnGap,
			maxCardLines: cfg.MaxCardLines,
		},
	}
	if !v.Expanded {
		return renderStrip(in)
	}
	return renderBoard(in).view
}
