package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested resource (a model, a table, a run
// report) does not exist. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrNotMaterialized is returned by a store read when the model has never
// been materialized in the current warehouse.
var ErrNotMaterialized = errors.New("model not materialized")

// SchemaMismatchError reports a required source column missing from the raw
// input. It is fatal to the whole run: every canonical staged field must have
// a source column, so a partial column set can never be staged.
type SchemaMismatchError struct {
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: required column %q is missing", e.Column)
}
