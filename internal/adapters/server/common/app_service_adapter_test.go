package common

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/evanschultz/minik/internal/adapters/storage/sqlite"
	"github.com/evanschultz/minik/internal/app"
	"github.com/evanschultz/minik/internal/domain"
)

// stubGitHub provides deterministic GitHub responses for adapter tests.
type stubGitHub struct {
	viewer    string
	orgs      []domain.Organization
	projects  map[string][]domain.ProjectRef
	snapshots map[string]domain.Snapshot
	updateErr error
	updates   []string
}

// Viewer returns the fixture login.
func (s *stubGitHub) Viewer(context.Context) (string, error) {
	return s.viewer, nil
}

// ListOrganizations returns fixture organizations.
func (s *stubGitHub) ListOrganizations(context.Context) ([]domain.Organization, error) {
	return append([]domain.Organization(nil), s.orgs...), nil
}

// ListOrgProjects returns fixture projects for one organization.
func (s *stubGitHub) ListOrgProjects(_ context.Context, org string) ([]domain.ProjectRef, error) {
	return s.projects[org], nil
}

// ListViewerProjects returns no user-owned projects.
func (s *stubGitHub) ListViewerProjects(context.Context) ([]domain.ProjectRef, error) {
	return nil, nil
}

// ProjectSnapshot returns one fixture snapshot.
func (s *stubGitHub) ProjectSnapshot(_ context.Context, projectID string) (domain.Snapshot, error) {
	snap, ok := s.snapshots[projectID]
	if !ok {
		return domain.Snapshot{}, app.ErrNotFound
	}
	return snap.Clone(), nil
}

// UpdateItemStatus records one mutation.
func (s *stubGitHub) UpdateItemStatus(_ context.Context, projectID, itemID, fieldID, optionID string) error {
	s.updates = append(s.updates, projectID+"/"+itemID+"/"+fieldID+"/"+optionID)
	return s.updateErr
}

// newAdapterFixture wires the adapter over an in-memory settings store.
func newAdapterFixture(t *testing.T) (*AppServiceAdapter, *stubGitHub) {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	gh := &stubGitHub{
		viewer: "octo",
		orgs:   []domain.Organization{{Login: "acme", Name: "Acme Inc"}},
		projects: map[string][]domain.ProjectRef{
			"acme": {{ID: "P1", Title: "Roadmap", Number: 3, Owner: "acme"}},
		},
		snapshots: map[string]domain.Snapshot{
			"P1": {
				Project:       domain.Project{ID: "P1", Title: "Roadmap", Number: 3},
				StatusFieldID: "F1",
				Columns: []domain.Column{
					{ID: "todo", Name: "Todo", ItemCount: 2, Position: 0},
					{ID: "done", Name: "Done", ItemCount: 0, Position: 1},
				},
				Items: []domain.Item{
					{ID: "I1", Title: "Fix login", ColumnID: "todo", Assignees: []string{"Octo"}},
					{ID: "I2", Title: "Write docs", ColumnID: "todo", Assignees: []string{"mona"}},
				},
			},
		},
	}
	now := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	svc := app.NewService(gh, repo, func() time.Time { return now }, app.ServiceConfig{})
	return NewAppServiceAdapter(svc), gh
}

// TestAppServiceAdapterListProjects verifies owner grouping and labels.
func TestAppServiceAdapterListProjects(t *testing.T) {
	adapter, _ := newAdapterFixture(t)

	groups, err := adapter.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(groups) != 1 || groups[0].Owner != "acme" || groups[0].DisplayName != "Acme Inc" {
		t.Fatalf("unexpected groups %#v", groups)
	}
	if len(groups[0].Projects) != 1 || groups[0].Projects[0].ID != "P1" {
		t.Fatalf("unexpected projects %#v", groups[0].Projects)
	}
}

// TestAppServiceAdapterBoardFilters verifies hidden columns and the mine-only filter.
func TestAppServiceAdapterBoardFilters(t *testing.T) {
	adapter, _ := newAdapterFixture(t)
	ctx := context.Background()

	if _, err := adapter.ToggleColumn(ctx, ToggleColumnRequest{ProjectID: "P1", ColumnID: "done"}); err != nil {
		t.Fatalf("ToggleColumn() error = %v", err)
	}

	board, err := adapter.Board(ctx, BoardRequest{ProjectID: "P1"})
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if len(board.Columns) != 1 || board.Columns[0].ID != "todo" {
		t.Fatalf("expected hidden column omitted, got %#v", board.Columns)
	}
	if board.Columns[0].ItemCount != 2 || len(board.Columns[0].Items) != 2 {
		t.Fatalf("unexpected todo column %#v", board.Columns[0])
	}

	board, err = adapter.Board(ctx, BoardRequest{ProjectID: "P1", MineOnly: true, IncludeHidden: true})
	if err != nil {
		t.Fatalf("Board(mine) error = %v", err)
	}
	if board.Viewer != "octo" || len(board.Columns) != 2 {
		t.Fatalf("unexpected board %#v", board)
	}
	if !board.Columns[1].Hidden {
		t.Fatalf("expected done column flagged hidden")
	}
	todo := board.Columns[0]
	if todo.ItemCount != 1 || len(todo.Items) != 1 || todo.Items[0].ID != "I1" {
		t.Fatalf("expected only the viewer's item, got %#v", todo)
	}
}

// TestAppServiceAdapterMoveItem verifies moves reach GitHub and return the moved board.
func TestAppServiceAdapterMoveItem(t *testing.T) {
	adapter, gh := newAdapterFixture(t)

	board, err := adapter.MoveItem(context.Background(), MoveItemRequest{ProjectID: "P1", ItemID: "I2", ColumnID: "done"})
	if err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	if !slices.Equal(gh.updates, []string{"P1/I2/F1/done"}) {
		t.Fatalf("unexpected updates %#v", gh.updates)
	}
	if got := board.Columns[1]; got.ItemCount != 1 || len(got.Items) != 1 || got.Items[0].ID != "I2" {
		t.Fatalf("unexpected done column %#v", got)
	}
}

// TestAppServiceAdapterErrorMapping verifies app errors map onto transport sentinels.
func TestAppServiceAdapterErrorMapping(t *testing.T) {
	adapter, gh := newAdapterFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
		want error
	}{
		{
			name: "blank project",
			call: func() error {
				_, err := adapter.Board(ctx, BoardRequest{ProjectID: " "})
				return err
			},
			want: ErrInvalidRequest,
		},
		{
			name: "unknown project",
			call: func() error {
				_, err := adapter.Board(ctx, BoardRequest{ProjectID: "P404"})
				return err
			},
			want: ErrNotFound,
		},
		{
			name: "unknown column",
			call: func() error {
				_, err := adapter.MoveItem(ctx, MoveItemRequest{ProjectID: "P1", ItemID: "I1", ColumnID: "nope"})
				return err
			},
			want: ErrNotFound,
		},
		{
			name: "rejected mutation",
			call: func() error {
				gh.updateErr = errors.New("boom")
				defer func() { gh.updateErr = nil }()
				_, err := adapter.MoveItem(ctx, MoveItemRequest{ProjectID: "P1", ItemID: "I1", ColumnID: "done"})
				return err
			},
			want: ErrUpstream,
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestMapAppErrorAuth verifies credential failures map to unauthorized.
func TestMapAppErrorAuth(t *testing.T) {
	for _, err := range []error{app.ErrAuthRequired, app.ErrPermission} {
		if got := mapAppError("op", err); !errors.Is(got, ErrUnauthorized) {
			t.Fatalf("mapAppError(%v) = %v, want unauthorized", err, got)
		}
	}
	if got := mapAppError("op", app.ErrStatusFieldMissing); !errors.Is(got, ErrConflict) {
		t.Fatalf("status field missing mapped to %v", got)
	}
	if mapAppError("op", nil) != nil {
		t.Fatalf("expected nil passthrough")
	}
}
