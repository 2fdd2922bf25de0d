package domain

import (
	"strings"
)

// ColorSlots is the size of the column color cycle.
const ColorSlots = 6

// Column represents one Status option rendered as a board column.
type Column struct {
	ID        string
	Name      string
	ItemCount int
	Position  int
}

// NewColumn constructs a new value for this package.
func NewColumn(id, name string, position int) (Column, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if name == "" {
		return Column{}, ErrInvalidName
	}
	if position < 0 {
		return Column{}, ErrInvalidPosition
	}
	return Column{
		ID:       id,
		Name:     name,
		Position: position,
	}, nil
}

// ColorSlot returns the column's index into the color cycle.
func (c Column) ColorSlot() int {
	return c.Position % ColorSlots
}
