package github

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/evanschultz/minik/internal/app"
)

// GraphQLError reports the first error entry of a GraphQL response.
type GraphQLError struct {
	Type    string
	Message string
	Count   int
}

// Error returns the formatted error text.
func (e *GraphQLError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "unknown graphql error"
	}
	if e.Type != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Type)
	}
	if e.Count > 1 {
		msg = fmt.Sprintf("%s and %d more", msg, e.Count-1)
	}
	return "graphql: " + msg
}

// Unwrap maps GitHub error types onto app error classes.
func (e *GraphQLError) Unwrap() error {
	switch strings.ToUpper(strings.TrimSpace(e.Type)) {
	case "FORBIDDEN", "INSUFFICIENT_SCOPES":
		return app.ErrPermission
	case "NOT_FOUND":
		return app.ErrNotFound
	case "UNAUTHORIZED":
		return app.ErrAuthRequired
	default:
		return nil
	}
}

// StatusError reports a non-success HTTP response.
type StatusError struct {
	StatusCode  int
	Body        string
	RateLimited bool
}

// Error returns the formatted error text.
func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if e.RateLimited {
		return fmt.Sprintf("github rate limit exceeded (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("github returned status %d: %s", e.StatusCode, body)
}

// Unwrap maps HTTP statuses onto app error classes.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return app.ErrAuthRequired
	case http.StatusForbidden:
		if e.RateLimited {
			return nil
		}
		return app.ErrPermission
	case http.StatusNotFound:
		return app.ErrNotFound
	default:
		return nil
	}
}
