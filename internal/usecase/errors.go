package usecase

import (
	"errors"
	"fmt"

	"hireflow/internal/domain/application"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrConflict             = errors.New("conflict")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrDuplicateApplication = errors.New("duplicate application")
	ErrInternal             = errors.New("internal error")
)

// StateConflictError reports a rejected lifecycle operation together with
// the application state as actually persisted, so the caller can reconcile
// its stale view. Reason is ErrInvalidTransition for transition-table
// violations and ErrConflict for lost update races and terminal-state
// rejections.
type StateConflictError struct {
	Reason  error
	Current application.Application
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%v: application is %s", e.Reason, e.Current.Status)
}

func (e *StateConflictError) Unwrap() error {
	return e.Reason
}

func newStateConflict(reason error, current application.Application) error {
	return &StateConflictError{Reason: reason, Current: current}
}
