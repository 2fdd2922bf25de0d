// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized reports missing or insufficient GitHub credentials.
var ErrUnauthorized = errors.New("github authorization failed")

// ErrConflict reports a request the project cannot satisfy in its current shape.
var ErrConflict = errors.New("conflict")

// ErrUpstream reports a GitHub failure that is not attributable to the request.
var ErrUpstream = errors.New("github request failed")

// BoardService is the board surface shared by the HTTP and MCP adapters.
type BoardService interface {
	ListProjects(context.Context) ([]ProjectGroup, error)
	Board(context.Context, BoardRequest) (Board, error)
	MoveItem(context.Context, MoveItemRequest) (Board, error)
	ToggleColumn(context.Context, ToggleColumnRequest) (ColumnVisibility, error)
}

// ProjectGroup lists the projects owned by one organization or the viewer.
type ProjectGroup struct {
	Owner       string           `json:"owner"`
	DisplayName string           `json:"display_name"`
	Projects    []ProjectSummary `json:"projects"`
}

// ProjectSummary describes one project row.
type ProjectSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Number int    `json:"number"`
	URL    string `json:"url,omitempty"`
	Owner  string `json:"owner,omitempty"`
}

// BoardRequest selects one board and its presentation filters.
type BoardRequest struct {
	ProjectID     string `json:"project_id"`
	MineOnly      bool   `json:"mine_only,omitempty"`
	IncludeHidden bool   `json:"include_hidden,omitempty"`
}

// Board is the transport view of one project snapshot.
type Board struct {
	Project   ProjectSummary `json:"project"`
	Viewer    string         `json:"viewer,omitempty"`
	MineOnly  bool           `json:"mine_only"`
	Columns   []BoardColumn  `json:"columns"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// BoardColumn is one Status option and the items referencing it.
type BoardColumn struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Position  int         `json:"position"`
	ItemCount int         `json:"item_count"`
	Hidden    bool        `json:"hidden"`
	Items     []BoardItem `json:"items"`
}

// BoardItem is one card.
type BoardItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
	Labels    []string `json:"labels,omitempty"`
}

// MoveItemRequest moves one item to another Status column.
type MoveItemRequest struct {
	ProjectID string `json:"project_id"`
	ItemID    string `json:"item_id"`
	ColumnID  string `json:"column_id"`
}

// ToggleColumnRequest flips one column's hidden flag.
type ToggleColumnRequest struct {
	ProjectID string `json:"project_id"`
	ColumnID  string `json:"column_id"`
}

// ColumnVisibility reports the hidden column ids of one project.
type ColumnVisibility struct {
	ProjectID string   `json:"project_id"`
	Hidden    []string `json:"hidden"`
}
