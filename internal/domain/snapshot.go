package domain

import (
	"strings"
	"time"
)

// Snapshot is one fetched view of a project board.
type Snapshot struct {
	Project       Project
	Columns       []Column
	Items         []Item
	StatusFieldID string
	FetchedAt     time.Time
}

// Empty reports whether no project is loaded.
func (s Snapshot) Empty() bool {
	return strings.TrimSpace(s.Project.ID) == ""
}

// Column looks up one column by id.
func (s Snapshot) Column(columnID string) (Column, bool) {
	for _, column := range s.Columns {
		if column.ID == columnID {
			return column, true
		}
	}
	return Column{}, false
}

// Item looks up one item by id.
func (s Snapshot) Item(itemID string) (Item, bool) {
	for _, item := range s.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

// ItemsInColumn returns the items whose column reference equals columnID, in fetch order.
func (s Snapshot) ItemsInColumn(columnID string) []Item {
	out := make([]Item, 0)
	for _, item := range s.Items {
		if item.ColumnID == columnID {
			out = append(out, item)
		}
	}
	return out
}

// VisibleColumns returns the columns not in hidden, keeping source order.
func (s Snapshot) VisibleColumns(hidden HiddenSet) []Column {
	out := make([]Column, 0, len(s.Columns))
	for _, column := range s.Columns {
		if hidden.Contains(column.ID) {
			continue
		}
		out = append(out, column)
	}
	return out
}

// MoveItem returns a copy with the item reassigned to columnID.
func (s Snapshot) MoveItem(itemID, columnID string) (Snapshot, error) {
	if _, ok := s.Column(columnID); !ok {
		return s, ErrColumnNotFound
	}
	out := s.Clone()
	idx := -1
	for i := range out.Items {
		if out.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, ErrItemNotFound
	}
	from := out.Items[idx].ColumnID
	if from == columnID {
		return out, nil
	}
	out.Items[idx].ColumnID = columnID
	for i := range out.Columns {
		switch out.Columns[i].ID {
		case from:
			if out.Columns[i].ItemCount > 0 {
				out.Columns[i].ItemCount--
			}
		case columnID:
			out.Columns[i].ItemCount++
		}
	}
	return out, nil
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Columns = append([]Column(nil), s.Columns...)
	out.Items = make([]Item, 0, len(s.Items))
	for _, item := range s.Items {
		out.Items = append(out.Items, item.clone())
	}
	return out
}
