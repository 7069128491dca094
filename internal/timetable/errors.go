package timetable

import (
	"errors"

	"classplan/internal/entity"
)

var (
	ErrInvalidIdentifier     = errors.New("invalid student id")
	ErrUnknownAccount        = errors.New("student id not found")
	ErrAlreadyRegistered     = errors.New("student id already registered")
	ErrWrongPassword         = errors.New("incorrect password")
	ErrPasswordMismatch      = errors.New("password confirmation failed")
	ErrAlreadyLoggedIn       = errors.New("account is logged in from another session")
	ErrSessionExpired        = errors.New("session expired")
	ErrDuplicateRegistration = errors.New("subject already registered")
	ErrNotRegistered         = errors.New("subject not registered")
	ErrUnknownSubject        = errors.New("unknown subject")
	ErrTimeSlotConflict      = errors.New("time slot conflict")
	ErrNotFound              = errors.New("class not found")
	ErrMalformedIdentifier   = entity.ErrMalformedIdentifier
)

// StorageError wraps a failure of the storage collaborator so it can be told apart
// from a rejected business rule.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "[DBErr] " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err came from the storage layer.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsSessionExpired reports whether the caller must log in again and reload its state.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}
