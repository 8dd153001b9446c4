package persist

import (
	"errors"
	"fmt"

	"github.com/syssam/persist/dialect/sql/sqlgraph"
)

// Standard sentinel errors.
var (
	// ErrMissingRelationship is matched by every MissingRequiredRelationshipError.
	ErrMissingRelationship = errors.New("persist: missing required relationship")

	// ErrKeyNotAssigned is returned when a pivot row is linked to a record
	// that has no primary key yet.
	ErrKeyNotAssigned = errors.New("persist: key not assigned")
)

// MissingRequiredRelationshipError is returned when a relationship declared
// required is not attached, or is attached empty, when a record is persisted.
// It is returned before any transaction is opened.
type MissingRequiredRelationshipError struct {
	Type     string // Record type name
	Relation string // Relationship name
}

// Error returns the error string.
func (e *MissingRequiredRelationshipError) Error() string {
	return fmt.Sprintf("persist: %s requires relationship %q", e.Type, e.Relation)
}

// Is reports whether the target error matches MissingRequiredRelationshipError.
func (e *MissingRequiredRelationshipError) Is(err error) bool {
	return err == ErrMissingRelationship
}

// NewMissingRequiredRelationshipError returns a new MissingRequiredRelationshipError.
func NewMissingRequiredRelationshipError(typ, relation string) *MissingRequiredRelationshipError {
	return &MissingRequiredRelationshipError{Type: typ, Relation: relation}
}

// IsMissingRequiredRelationship returns true if the error is a MissingRequiredRelationshipError.
func IsMissingRequiredRelationship(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingRequiredRelationshipError
	return errors.As(err, &e) || errors.Is(err, ErrMissingRelationship)
}

// MutationError wraps a storage error with the record and operation it
// occurred on.
type MutationError struct {
	Entity string // Record type being written
	Op     string // Operation (e.g., "create", "update", "attach")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("persist: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(entity, op string, err error) *MutationError {
	return &MutationError{Entity: entity, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}

// RollbackError wraps an error that occurred during a transaction rollback.
// It is joined with the error that caused the rollback.
type RollbackError struct {
	Err error // Error returned by the rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("persist: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// IsRollbackError returns true if the error is a RollbackError.
func IsRollbackError(err error) bool {
	if err == nil {
		return false
	}
	var e *RollbackError
	return errors.As(err, &e)
}

// IsConstraintError returns true if the error resulted from a database
// constraint violation.
func IsConstraintError(err error) bool {
	return sqlgraph.IsConstraintError(err)
}

// rollback rolls back fn and joins a rollback failure with err.
func rollback(err error, fn func() error) error {
	if rerr := fn(); rerr != nil {
		return errors.Join(err, &RollbackError{Err: rerr})
	}
	return err
}
