package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist or is not owned
	// by the requesting user.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint. The store is the arbiter of the 1:1 analysis and
	// (resume, job) pair invariants; application pre-checks only make the
	// common case friendlier.
	ErrDuplicate = errors.New("duplicate record")
)

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback for dialects without error translation.
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint")
}
