package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oksasatya/go-realestate-listings/internal/domain/repository"
)

// ValidationError carries field-level messages. Nothing is persisted when
// it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// AuthorizationError is a role or ownership violation on an explicit action.
type AuthorizationError struct {
	Action Action
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not allowed to %s: %s", e.Action, e.Reason)
}

// NotFoundError hides both missing resources and resources outside the
// caller's scope.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// DeliveryError wraps a failed notification. It is reported as a warning
// and never fails the operation that triggered it.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return "notification delivery failed: " + e.Err.Error() }
func (e *DeliveryError) Unwrap() error { return e.Err }

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
)

// notFound maps repository.ErrNotFound to a NotFoundError and passes any
// other error through.
func notFound(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return err
}
