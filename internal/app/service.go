package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evanschultz/minik/internal/domain"
)

// Clock returns the current time.
type Clock func() time.Time

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	OrgFanout int
}

// Service represents service data used by this package.
type Service struct {
	github    GitHub
	settings  SettingsStore
	clock     Clock
	orgFanout int

	mu     sync.Mutex
	viewer string
}

// NewService constructs a new value for this package.
func NewService(github GitHub, settings SettingsStore, clock Clock, cfg ServiceConfig) *Service {
	if clock == nil {
		clock = time.Now
	}
	if cfg.OrgFanout <= 0 {
		cfg.OrgFanout = 4
	}
	return &Service{
		github:    github,
		settings:  settings,
		clock:     clock,
		orgFanout: cfg.OrgFanout,
	}
}

// Session describes the authenticated user.
type Session struct {
	Login string
}

// Session returns the authenticated user, resolving it once per process.
func (s *Service) Session(ctx context.Context) (Session, error) {
	s.mu.Lock()
	cached := s.viewer
	s.mu.Unlock()
	if cached != "" {
		return Session{Login: cached}, nil
	}

	login, err := s.github.Viewer(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("resolve viewer: %w", err)
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return Session{}, ErrAuthRequired
	}
	s.mu.Lock()
	s.viewer = login
	s.mu.Unlock()
	return Session{Login: login}, nil
}

// FetchSnapshot loads the full board state for one project.
func (s *Service) FetchSnapshot(ctx context.Context, projectID string) (domain.Snapshot, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return domain.Snapshot{}, ErrNoProject
	}
	snap, err := s.github.ProjectSnapshot(ctx, projectID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("fetch project %s: %w", projectID, err)
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = s.clock().UTC()
	}
	return snap, nil
}

// OrgProjects groups the projects owned by one organization.
type OrgProjects struct {
	Organization domain.Organization
	Projects     []domain.ProjectRef
}

// ProjectsByOrganization lists projects per owner for the project picker.
func (s *Service) ProjectsByOrganization(ctx context.Context) ([]OrgProjects, error) {
	orgs, err := s.github.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	slices.SortFunc(orgs, func(a, b domain.Organization) int {
		return strings.Compare(strings.ToLower(a.Login), strings.ToLower(b.Login))
	})

	results := make([]OrgProjects, len(orgs))
	var viewerProjects []domain.ProjectRef

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.orgFanout)
	group.Go(func() error {
		projects, err := s.github.ListViewerProjects(gctx)
		if err != nil {
			return skipUnlessAuth(err)
		}
		viewerProjects = projects
		return nil
	})
	for idx, org := range orgs {
		group.Go(func() error {
			projects, err := s.github.ListOrgProjects(gctx, org.Login)
			if err != nil {
				return skipUnlessAuth(err)
			}
			results[idx] = OrgProjects{Organization: org, Projects: projects}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]OrgProjects, 0, len(results)+1)
	if len(viewerProjects) > 0 {
		session, err := s.Session(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, OrgProjects{
			Organization: domain.Organization{Login: session.Login},
			Projects:     viewerProjects,
		})
	}
	for _, entry := range results {
		if len(entry.Projects) == 0 {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// skipUnlessAuth drops per-owner failures so one unreadable org does not hide the rest.
func skipUnlessAuth(err error) error {
	if errors.Is(err, ErrAuthRequired) {
		return err
	}
	return nil
}

// MoveItemInput holds input values for move item operations.
type MoveItemInput struct {
	ProjectID     string
	ItemID        string
	StatusFieldID string
	ColumnID      string
}

// MoveItem sets one item's Status to the target column.
func (s *Service) MoveItem(ctx context.Context, in MoveItemInput) error {
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.ItemID = strings.TrimSpace(in.ItemID)
	in.ColumnID = strings.TrimSpace(in.ColumnID)
	if in.ProjectID == "" || in.ItemID == "" || in.ColumnID == "" {
		return fmt.Errorf("%w: %w", ErrMutationFailed, domain.ErrInvalidID)
	}
	if strings.TrimSpace(in.StatusFieldID) == "" {
		return fmt.Errorf("%w: %w", ErrMutationFailed, ErrStatusFieldMissing)
	}
	if err := s.github.UpdateItemStatus(ctx, in.ProjectID, in.ItemID, in.StatusFieldID, in.ColumnID); err != nil {
		return fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}
	return nil
}

// MoveItemToColumn fetches the board, validates the move and applies it.
func (s *Service) MoveItemToColumn(ctx context.Context, projectID, itemID, columnID string) (domain.Snapshot, error) {
	snap, err := s.FetchSnapshot(ctx, projectID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	item, ok := snap.Item(itemID)
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	if _, ok := snap.Column(columnID); !ok {
		return domain.Snapshot{}, fmt.Errorf("%w: column %s", ErrNotFound, columnID)
	}
	if item.ColumnID == columnID {
		return snap, nil
	}
	if err := s.MoveItem(ctx, MoveItemInput{
		ProjectID:     snap.Project.ID,
		ItemID:        itemID,
		StatusFieldID: snap.StatusFieldID,
		ColumnID:      columnID,
	}); err != nil {
		return domain.Snapshot{}, err
	}
	return snap.MoveItem(itemID, columnID)
}

// LoadSettings returns persisted preferences.
func (s *Service) LoadSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if settings.Hidden == nil {
		settings.Hidden = map[string]domain.HiddenSet{}
	}
	return settings, nil
}

// SelectProject persists the selected project id.
func (s *Service) SelectProject(ctx context.Context, projectID string) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return domain.ErrInvalidID
	}
	return s.settings.SaveSelectedProject(ctx, projectID)
}

// SetExpanded persists the expanded flag.
func (s *Service) SetExpanded(ctx context.Context, expanded bool) error {
	return s.settings.SaveExpanded(ctx, expanded)
}

// SetMineOnly persists the mine-only filter flag.
func (s *Service) SetMineOnly(ctx context.Context, mineOnly bool) error {
	return s.settings.SaveMineOnly(ctx, mineOnly)
}

// ToggleHidden flips one column's hidden flag for a project and returns the new set.
func (s *Service) ToggleHidden(ctx context.Context, projectID, columnID string) (domain.HiddenSet, error) {
	projectID = strings.TrimSpace(projectID)
	columnID = strings.TrimSpace(columnID)
	if projectID == "" || columnID == "" {
		return nil, domain.ErrInvalidID
	}
	settings, err := s.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	next := settings.HiddenFor(projectID).Toggle(columnID)
	if err := s.settings.SaveHiddenColumns(ctx, projectID, next); err != nil {
		return nil, err
	}
	return next, nil
}

// SetHiddenColumns replaces the hidden set for one project.
func (s *Service) SetHiddenColumns(ctx context.Context, projectID string, hidden domain.HiddenSet) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return domain.ErrInvalidID
	}
	return s.settings.SaveHiddenColumns(ctx, projectID, hidden)
}
