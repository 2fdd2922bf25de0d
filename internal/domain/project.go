package domain

import (
	"strings"
)

// Organization represents one GitHub organization the viewer belongs to.
type Organization struct {
	ID    int64
	Login string
	Name  string
}

// DisplayName returns the organization name, falling back to its login.
func (o Organization) DisplayName() string {
	if name := strings.TrimSpace(o.Name); name != "" {
		return name
	}
	return o.Login
}

// ProjectRef identifies one project offered by the project picker.
type ProjectRef struct {
	ID     string
	Title  string
	Number int
	URL    string
	Owner  string
}

// Label returns the picker label for the project.
func (p ProjectRef) Label() string {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "Untitled project"
	}
	return title
}

// Project represents the loaded project header for one snapshot.
type Project struct {
	ID     string
	Title  string
	Number int
	URL    string
}

// NewProject constructs a new value for this package.
func NewProject(id, title string, number int, url string) (Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Project{}, ErrInvalidID
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled project"
	}
	return Project{
		ID:     id,
		Title:  title,
		Number: number,
		URL:    strings.TrimSpace(url),
	}, nil
}
