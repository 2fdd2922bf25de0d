package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound           = errors.New("not found")
	ErrAuthRequired       = errors.New("github authentication required")
	ErrPermission         = errors.New("github permission denied")
	ErrMutationFailed     = errors.New("move failed")
	ErrStatusFieldMissing = errors.New("project has no status field")
	ErrNoProject          = errors.New("no project selected")
)

// Failure classifies one error for user-facing presentation.
type Failure int

// FailureFetch and related constants define the failure classes.
const (
	FailureFetch Failure = iota
	FailureAuth
	FailureMutation
)

// String returns a stable label for logs.
func (f Failure) String() string {
	switch f {
	case FailureAuth:
		return "auth"
	case FailureMutation:
		return "mutation"
	default:
		return "fetch"
	}
}

// Classify maps an error onto its failure class. Auth wins over mutation.
func Classify(err error) Failure {
	switch {
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrPermission):
		return FailureAuth
	case errors.Is(err, ErrMutationFailed):
		return FailureMutation
	default:
		return FailureFetch
	}
}
