package store

import "errors"

// ErrNotFound is returned when a prompt, variable, or generation does not
// exist. Callers check it with errors.Is.
var ErrNotFound = errors.New("not found")
