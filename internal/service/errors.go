package service

import (
	"errors"
	"fmt"
	"strings"
)

// Failure taxonomy of the content core. Every operation returns either a
// result or exactly one of these; nothing is swallowed and nothing retries.
var (
	// ErrUnauthenticated means the operation needs a caller identity and
	// none was supplied.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotFound means the referenced article does not exist.
	ErrNotFound = errors.New("article not found")

	// ErrForbidden means the authenticated caller is not the article's author.
	ErrForbidden = errors.New("caller is not the article author")
)

// ValidationError names the request fields that were missing or empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s is required", strings.Join(e.Fields, ", "))
}
