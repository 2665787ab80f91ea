package db

import (
	"errors"
	"fmt"
)

// Sentinel errors for database operations.
var (
	ErrKeyNotFound    = errors.New("db: key not found")
	ErrIndexExists    = errors.New("db: index already exists")
	ErrUnknownGroup   = errors.New("db: unknown group field")
	ErrUnknownBackend = errors.New("db: unknown driver")
)

// Op names used for error context.
const (
	OpPing        = "PING"
	OpSchema      = "SCHEMA"
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpLoad        = "LOAD"
	OpGet         = "GET"
	OpList        = "LIST"
	OpDelete      = "DELETE"
	OpCount       = "COUNT"
	OpCountBy     = "COUNT BY"
	OpSearch      = "SEARCH RADIUS"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// GroupColumn validates a group field for use as a column or attribute name.
func GroupColumn(field GroupField) (string, error) {
	switch field {
	case GroupByOperation, GroupByKind:
		return string(field), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGroup, field)
	}
}
