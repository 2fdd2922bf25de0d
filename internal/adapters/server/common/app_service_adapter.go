package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanschultz/minik/internal/app"
	"github.com/evanschultz/minik/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service board APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListProjects returns the viewer's projects grouped by owner.
func (a *AppServiceAdapter) ListProjects(ctx context.Context) ([]ProjectGroup, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	groups, err := a.service.ProjectsByOrganization(ctx)
	if err != nil {
		return nil, mapAppError("list projects", err)
	}
	out := make([]ProjectGroup, 0, len(groups))
	for _, group := range groups {
		row := ProjectGroup{
			Owner:       group.Organization.Login,
			DisplayName: group.Organization.DisplayName(),
			Projects:    make([]ProjectSummary, 0, len(group.Projects)),
		}
		for _, ref := range group.Projects {
			row.Projects = append(row.Projects, ProjectSummary{
				ID:     ref.ID,
				Title:  ref.Label(),
				Number: ref.Number,
				URL:    ref.URL,
				Owner:  ref.Owner,
			})
		}
		out = append(out, row)
	}
	return out, nil
}

// Board fetches one project and projects it through the persisted hidden set.
func (a *AppServiceAdapter) Board(ctx context.Context, in BoardRequest) (Board, error) {
	if a == nil || a.service == nil {
		return Board{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	projectID, err := requireID("project_id", in.ProjectID)
	if err != nil {
		return Board{}, err
	}
	snap, err := a.service.FetchSnapshot(ctx, projectID)
	if err != nil {
		return Board{}, mapAppError("fetch board", err)
	}
	return a.buildBoard(ctx, snap, in.MineOnly, in.IncludeHidden)
}

// MoveItem validates and applies one Status change, returning the updated board.
func (a *AppServiceAdapter) MoveItem(ctx context.Context, in MoveItemRequest) (Board, error) {
	if a == nil || a.service == nil {
		return Board{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	projectID, err := requireID("project_id", in.ProjectID)
	if err != nil {
		return Board{}, err
	}
	itemID, err := requireID("item_id", in.ItemID)
	if err != nil {
		return Board{}, err
	}
	columnID, err := requireID("column_id", in.ColumnID)
	if err != nil {
		return Board{}, err
	}
	snap, err := a.service.MoveItemToColumn(ctx, projectID, itemID, columnID)
	if err != nil {
		return Board{}, mapAppError("move item", err)
	}
	return a.buildBoard(ctx, snap, false, true)
}

// ToggleColumn flips one column's hidden flag and persists it.
func (a *AppServiceAdapter) ToggleColumn(ctx context.Context, in ToggleColumnRequest) (ColumnVisibility, error) {
	if a == nil || a.service == nil {
		return ColumnVisibility{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	projectID, err := requireID("project_id", in.ProjectID)
	if err != nil {
		return ColumnVisibility{}, err
	}
	columnID, err := requireID("column_id", in.ColumnID)
	if err != nil {
		return ColumnVisibility{}, err
	}
	hidden, err := a.service.ToggleHidden(ctx, projectID, columnID)
	if err != nil {
		return ColumnVisibility{}, mapAppError("toggle column", err)
	}
	return ColumnVisibility{ProjectID: projectID, Hidden: hidden.Slice()}, nil
}

// buildBoard converts one snapshot into the transport board shape.
func (a *AppServiceAdapter) buildBoard(ctx context.Context, snap domain.Snapshot, mineOnly, includeHidden bool) (Board, error) {
	settings, err := a.service.LoadSettings(ctx)
	if err != nil {
		return Board{}, mapAppError("load settings", err)
	}
	viewer := ""
	if mineOnly {
		session, err := a.service.Session(ctx)
		if err != nil {
			return Board{}, mapAppError("resolve viewer", err)
		}
		viewer = session.Login
	}
	hidden := settings.HiddenFor(snap.Project.ID)

	out := Board{
		Project: ProjectSummary{
			ID:     snap.Project.ID,
			Title:  snap.Project.Title,
			Number: snap.Project.Number,
			URL:    snap.Project.URL,
		},
		Viewer:    viewer,
		MineOnly:  mineOnly,
		Columns:   make([]BoardColumn, 0, len(snap.Columns)),
		FetchedAt: snap.FetchedAt,
	}
	for _, column := range snap.Columns {
		isHidden := hidden.Contains(column.ID)
		if isHidden && !includeHidden {
			continue
		}
		row := BoardColumn{
			ID:        column.ID,
			Name:      column.Name,
			Position:  column.Position,
			ItemCount: column.ItemCount,
			Hidden:    isHidden,
			Items:     make([]BoardItem, 0),
		}
		for _, item := range snap.ItemsInColumn(column.ID) {
			if mineOnly && !item.AssignedTo(viewer) {
				continue
			}
			row.Items = append(row.Items, BoardItem{
				ID:        item.ID,
				Title:     item.Title,
				URL:       item.URL,
				Assignees: append([]string(nil), item.Assignees...),
				Labels:    append([]string(nil), item.Labels...),
			})
		}
		if mineOnly {
			row.ItemCount = len(row.Items)
		}
		out.Columns = append(out.Columns, row)
	}
	return out, nil
}

// requireID trims one identifier and rejects blanks.
func requireID(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required: %w", field, ErrInvalidRequest)
	}
	return value, nil
}

// mapAppError maps app/domain errors onto transport-facing sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrAuthRequired), errors.Is(err, app.ErrPermission):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrUnauthorized, err))
	case errors.Is(err, app.ErrNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrColumnNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, app.ErrNoProject):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	case errors.Is(err, app.ErrStatusFieldMissing):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConflict, err))
	case errors.Is(err, app.ErrMutationFailed):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrUpstream, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
