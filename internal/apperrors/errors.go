package apperrors

import (
	"errors"
	"fmt"
)

// MaxSources is the largest number of sources a load accepts.
const MaxSources = 2

// ErrNoInput is returned when a load is requested without any source.
type ErrNoInput struct{}

// Error implements the error interface.
func (e *ErrNoInput) Error() string {
	return "no input source provided: upload or configure one or two tabular files"
}

// Is allows for error checking with errors.Is().
func (e *ErrNoInput) Is(target error) bool {
	_, ok := target.(*ErrNoInput)
	return ok
}

// NewNoInputError creates a new ErrNoInput.
func NewNoInputError() *ErrNoInput {
	return &ErrNoInput{}
}

// ErrTooManyInputs is returned when more than MaxSources sources are given.
type ErrTooManyInputs struct {
	Count int
}

// Error implements the error interface.
func (e *ErrTooManyInputs) Error() string {
	return fmt.Sprintf("too many input sources: got %d, at most %d are supported", e.Count, MaxSources)
}

// Is allows for error checking with errors.Is().
func (e *ErrTooManyInputs) Is(target error) bool {
	_, ok := target.(*ErrTooManyInputs)
	return ok
}

// NewTooManyInputsError creates a new ErrTooManyInputs.
func NewTooManyInputsError(count int) *ErrTooManyInputs {
	return &ErrTooManyInputs{Count: count}
}

// WarnNoJoinKey is a non-fatal condition: two sources were given but they
// share neither an id nor a title column, so only the first one is used.
type WarnNoJoinKey struct {
	Kept      string
	Discarded string
}

// Error implements the error interface.
func (e *WarnNoJoinKey) Error() string {
	return fmt.Sprintf("no common column ('id' or 'title') between %q and %q: using %q only, %q was discarded",
		e.Kept, e.Discarded, e.Kept, e.Discarded)
}

// Is allows for error checking with errors.Is().
func (e *WarnNoJoinKey) Is(target error) bool {
	_, ok := target.(*WarnNoJoinKey)
	return ok
}

// NewNoJoinKeyWarning creates a new WarnNoJoinKey.
func NewNoJoinKeyWarning(kept, discarded string) *WarnNoJoinKey {
	return &WarnNoJoinKey{Kept: kept, Discarded: discarded}
}

// ErrCoercionSkip records a cell that could not be converted for a predicate
// or view. The row is left out of that computation only.
type ErrCoercionSkip struct {
	Column string
	Row    int
	Value  string
}

// Error implements the error interface.
func (e *ErrCoercionSkip) Error() string {
	return fmt.Sprintf("row %d: cannot convert %s value %q", e.Row, e.Column, e.Value)
}

// Is allows for error checking with errors.Is().
func (e *ErrCoercionSkip) Is(target error) bool {
	_, ok := target.(*ErrCoercionSkip)
	return ok
}

// ErrSource wraps a failure to fetch or decode a source.
type ErrSource struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ErrSource) Error() string {
	return fmt.Sprintf("source %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ErrSource) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrSource) Is(target error) bool {
	_, ok := target.(*ErrSource)
	return ok
}

// NewSourceError creates a new ErrSource.
func NewSourceError(source string, err error) *ErrSource {
	return &ErrSource{Source: source, Err: err}
}

// ErrUnsupportedFormat is returned for sources whose content cannot be read as a table.
type ErrUnsupportedFormat struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported format for %q: %s", e.Name, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrUnsupportedFormat) Is(target error) bool {
	_, ok := target.(*ErrUnsupportedFormat)
	return ok
}

// ErrInvalidSelection is returned when a filter selection is inconsistent.
type ErrInvalidSelection struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ErrInvalidSelection) Error() string {
	return fmt.Sprintf("invalid selection field %s: %s", e.Field, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidSelection) Is(target error) bool {
	_, ok := target.(*ErrInvalidSelection)
	return ok
}

// NewInvalidSelectionError creates a new ErrInvalidSelection.
func NewInvalidSelectionError(field, reason string) *ErrInvalidSelection {
	return &ErrInvalidSelection{Field: field, Reason: reason}
}

// ErrSourceNotAllowed is returned when a request names a source outside the
// configured sources and allowed locations. The message never says whether
// the source exists.
type ErrSourceNotAllowed struct {
	Source string
}

// Error implements the error interface.
func (e *ErrSourceNotAllowed) Error() string {
	return fmt.Sprintf("source %q is not allowed: only configured sources and allowed locations can be loaded", e.Source)
}

// Is allows for error checking with errors.Is().
func (e *ErrSourceNotAllowed) Is(target error) bool {
	_, ok := target.(*ErrSourceNotAllowed)
	return ok
}

// NewSourceNotAllowedError creates a new ErrSourceNotAllowed.
func NewSourceNotAllowedError(source string) *ErrSourceNotAllowed {
	return &ErrSourceNotAllowed{Source: source}
}

// IsInputCountError reports whether err is ErrNoInput or ErrTooManyInputs.
func IsInputCountError(err error) bool {
	var noInput *ErrNoInput
	var tooMany *ErrTooManyInputs
	return errors.As(err, &noInput) || errors.As(err, &tooMany)
}
