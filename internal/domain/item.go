package domain

import (
	"strings"
)

// Item represents one card on the board.
type Item struct {
	ID        string
	Title     string
	URL       string
	ColumnID  string
	Assignees []string
	Labels    []string
	Body      string
}

// NewItem constructs a new value for this package.
func NewItem(id, title, url, columnID string, assignees, labels []string) (Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Item{}, ErrInvalidID
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	return Item{
		ID:        id,
		Title:     title,
		URL:       strings.TrimSpace(url),
		ColumnID:  strings.TrimSpace(columnID),
		Assignees: normalizeList(assignees),
		Labels:    normalizeList(labels),
	}, nil
}

// AssignedTo reports whether login is among the item's assignees.
func (i Item) AssignedTo(login string) bool {
	login = strings.TrimSpace(login)
	if login == "" {
		return false
	}
	for _, assignee := range i.Assignees {
		if strings.EqualFold(assignee, login) {
			return true
		}
	}
	return false
}

// HasMeta reports whether the item carries assignees or labels.
func (i Item) HasMeta() bool {
	return len(i.Assignees) > 0 || len(i.Labels) > 0
}

func (i Item) clone() Item {
	i.Assignees = append([]string(nil), i.Assignees...)
	i.Labels = append([]string(nil), i.Labels...)
	return i
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
