package services

import (
	"errors"
	"fmt"
	"strings"
)

// Category errors. Every specific error below wraps exactly one of them so callers
// can map by category with errors.Is and still report the specific message.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrRoleMismatch     = fmt.Errorf("%w: role mismatch", ErrForbidden)
	ErrNotGymOwner      = fmt.Errorf("%w: not authorized for this gym", ErrForbidden)
	ErrNotPlanTrainer   = fmt.Errorf("%w: trainer does not belong to the member's gym", ErrForbidden)
	ErrGymNotFound      = fmt.Errorf("%w: gym not found", ErrNotFound)
	ErrAccountNotFound  = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrRequestNotFound  = fmt.Errorf("%w: join request not found", ErrNotFound)
	ErrPlanNotFound     = fmt.Errorf("%w: workout plan not found", ErrNotFound)
	ErrMemberNotFound   = fmt.Errorf("%w: member not found", ErrNotFound)
	ErrAlreadyInGym     = fmt.Errorf("%w: user is already part of a gym", ErrConflict)
	ErrDuplicateRequest = fmt.Errorf("%w: join request already exists", ErrConflict)
	ErrAlreadyProcessed = fmt.Errorf("%w: request has already been processed", ErrConflict)
	ErrNotInGym         = fmt.Errorf("%w: user must be part of the gym", ErrConflict)
	ErrEmailTaken       = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrInvalidAction    = fmt.Errorf("%w: action must be approve or reject", ErrInvalidInput)
	ErrEmptyMessage     = fmt.Errorf("%w: message is empty", ErrInvalidInput)
)

// ErrorMessage returns the client-facing text of a service error without its
// category prefix. Errors outside the taxonomy are returned unchanged.
func ErrorMessage(err error) string {
	for _, category := range []error{ErrForbidden, ErrNotFound, ErrConflict, ErrInvalidInput} {
		if errors.Is(err, category) {
			return strings.TrimPrefix(err.Error(), category.Error()+": ")
		}
	}
	return err.Error()
}
