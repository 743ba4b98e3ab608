// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist in the backend.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., settings row for a user).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthenticated indicates there is no signed-in user; reads are empty and writes are refused.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrValidation indicates caller-side input validation failed.
	ErrValidation = errors.New("validation")

	// ErrStorage indicates the backend was unreachable, rejected a write or returned garbage.
	ErrStorage = errors.New("storage")
)

// StorageError wraps a backend failure with the operation that hit it.
// errors.Is(err, ErrStorage) reports true for it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return "storage: " + e.Op
	}
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes StorageError match ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage wraps err into a StorageError unless it is nil or already one of the
// domain sentinels that callers branch on.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
