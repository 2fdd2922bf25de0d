package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidPosition = errors.New("invalid position")
	ErrItemNotFound    = errors.New("item not found")
	ErrColumnNotFound  = errors.New("column not found")
)
