package finder

import (
	"errors"
	"fmt"

	"github.com/roach88/sqlfinder/internal/field"
)

// ConfigError is returned by configuration calls. It is always raised
// before composition, never from it.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Field names the field, column, alias or join prefix involved.
	Field string

	// Message is a human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidName indicates a name outside [A-Za-z_][A-Za-z0-9_]*.
	ErrCodeInvalidName ConfigErrorCode = "INVALID_NAME"

	// ErrCodeDuplicateColumn indicates a sub-column requested twice on one field.
	ErrCodeDuplicateColumn ConfigErrorCode = "DUPLICATE_COLUMN"

	// ErrCodeDuplicateAlias indicates two fields producing the same output column.
	ErrCodeDuplicateAlias ConfigErrorCode = "DUPLICATE_ALIAS"

	// ErrCodeUnknownJoinParam indicates an unsupported join parameter.
	ErrCodeUnknownJoinParam ConfigErrorCode = "UNKNOWN_JOIN_PARAM"

	// ErrCodeMalformedJoinKey indicates a join key that cannot be resolved.
	ErrCodeMalformedJoinKey ConfigErrorCode = "MALFORMED_JOIN_KEY"

	// ErrCodeDuplicatePrefix indicates two joins sharing one prefix.
	ErrCodeDuplicatePrefix ConfigErrorCode = "DUPLICATE_PREFIX"

	// ErrCodeComposed indicates a change after the statement was composed.
	ErrCodeComposed ConfigErrorCode = "ALREADY_COMPOSED"

	// ErrCodeJoined indicates a change to a finder already joined into another.
	ErrCodeJoined ConfigErrorCode = "FINDER_JOINED"

	// ErrCodeUnknownKind indicates an unknown field type name.
	ErrCodeUnknownKind ConfigErrorCode = "UNKNOWN_KIND"

	// ErrCodeInvalidOption indicates any other rejected setting.
	ErrCodeInvalidOption ConfigErrorCode = "INVALID_OPTION"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// HasCode returns true if err is or wraps a ConfigError with the given code.
func HasCode(err error, code ConfigErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func configError(code ConfigErrorCode, name, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Field: name, Message: fmt.Sprintf(format, args...)}
}

// fromFieldError maps errors of the field package onto configuration codes.
func fromFieldError(name string, err error) *ConfigError {
	code := ErrCodeInvalidOption
	switch {
	case errors.Is(err, field.ErrInvalidName):
		code = ErrCodeInvalidName
	case errors.Is(err, field.ErrDuplicateColumn):
		code = ErrCodeDuplicateColumn
	case errors.Is(err, field.ErrFrozen):
		code = ErrCodeComposed
	case errors.Is(err, field.ErrUnknownKind):
		code = ErrCodeUnknownKind
	}
	return &ConfigError{Code: code, Field: name, Message: err.Error(), Err: err}
}

// Warning is a non-fatal problem found while configuring a finder.
// The only source today is a field the registry cannot classify; such
// fields are read as plain text attributes.
type Warning struct {
	Field string
	Err   error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Field, w.Err)
}
