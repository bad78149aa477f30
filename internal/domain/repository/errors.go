// Package repository declares the persistence ports used by the application
// layer together with the sentinel errors adapters translate into.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist or is outside the
// caller's scope (owner-scoped lookups).
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("conflict")
