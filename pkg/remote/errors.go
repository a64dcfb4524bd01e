package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a non-2xx response from the remote service.
type StatusError struct {
	Op     string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("remote: %s %s: status %d", e.Op, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}

// IsUnauthorized reports a 401 response, which calls for re-authentication.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports a 403 response.
func IsForbidden(err error) bool {
	return StatusOf(err) == http.StatusForbidden
}

// Describe renders a user facing message for a persistence failure.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUnauthorized(err):
		return "Your session has expired. Sign in again and retry."
	case IsForbidden(err):
		return "You do not have permission to save this document."
	}
	if status := StatusOf(err); status != 0 {
		return fmt.Sprintf("Saving failed (status %d).", status)
	}
	return "Saving failed: " + err.Error()
}
