package application

import (
	"errors"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// mapRepoError converts persistence sentinels into application errors. Errors
// that are already application sentinels pass through untouched so in-memory
// test stubs can return them directly.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) {
		return err
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "violates a storage constraint")
		return vErr
	}
	return err
}
