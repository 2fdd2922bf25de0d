package app

import (
	"context"

	"github.com/evanschultz/minik/internal/domain"
)

// GitHub is the remote project store.
type GitHub interface {
	Viewer(context.Context) (string, error)
	ListOrganizations(context.Context) ([]domain.Organization, error)
	ListOrgProjects(context.Context, string) ([]domain.ProjectRef, error)
	ListViewerProjects(context.Context) ([]domain.ProjectRef, error)
	ProjectSnapshot(context.Context, string) (domain.Snapshot, error)
	UpdateItemStatus(ctx context.Context, projectID, itemID, fieldID, optionID string) error
}

// SettingsStore persists user preferences between runs.
type SettingsStore interface {
	LoadSettings(context.Context) (domain.Settings, error)
	SaveSelectedProject(context.Context, string) error
	SaveExpanded(context.Context, bool) error
	SaveMineOnly(context.Context, bool) error
	SaveHiddenColumns(context.Context, string, domain.HiddenSet) error
}

// Size is a window size in terminal cells.
type Size struct {
	Width  int
	Height int
}

// Window is the host surface that can be resized and dragged.
type Window interface {
	Resize(context.Context, Size) error
	BeginDrag(context.Context) error
}
