package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for schema declaration failures.
var (
	// ErrInvalidSchema indicates a type declaration error.
	ErrInvalidSchema = errors.New("persist: invalid schema")
	// ErrInvalidEdge indicates an edge declaration error.
	ErrInvalidEdge = errors.New("persist: invalid edge definition")
)

// SchemaError represents a type declaration error.
type SchemaError struct {
	Type    string // Type name
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("persist: schema error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(typeName, message string, cause error) *SchemaError {
	return &SchemaError{Type: typeName, Message: message, Cause: cause}
}

// EdgeError represents an edge declaration error.
type EdgeError struct {
	From    string
	To      string
	Edge    string
	Message string
}

// Error implements the error interface.
func (e *EdgeError) Error() string {
	var b strings.Builder
	b.WriteString("persist: edge error")
	if e.Edge != "" {
		b.WriteString(" on edge ")
		b.WriteString(e.Edge)
	}
	if e.From != "" && e.To != "" {
		fmt.Fprintf(&b, " (%s -> %s)", e.From, e.To)
	} else if e.From != "" {
		b.WriteString(" from ")
		b.WriteString(e.From)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for EdgeError.
func (e *EdgeError) Is(target error) bool {
	return target == ErrInvalidEdge
}

// NewEdgeError creates a new EdgeError.
func NewEdgeError(from, to, edgeName, message string) *EdgeError {
	return &EdgeError{From: from, To: to, Edge: edgeName, Message: message}
}
