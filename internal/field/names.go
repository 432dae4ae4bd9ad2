package field

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidName is returned for names outside [A-Za-z_][A-Za-z0-9_]*.
	ErrInvalidName = errors.New("invalid name")

	// ErrDuplicateColumn is returned when a column is added twice.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrFrozen is returned when a spec is changed after its finder composed.
	ErrFrozen = errors.New("field spec is frozen")

	// ErrUnknownKind is returned for kind names ParseKind does not know.
	ErrUnknownKind = errors.New("unknown field kind")

	// ErrInvalidSeparator is returned for sibling separators that would
	// clash with join output names.
	ErrInvalidSeparator = errors.New("invalid sibling separator")
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateName checks that s can be used as a field, column, alias or
// join prefix.
func ValidateName(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidName, s)
	}
	return nil
}

// TableName returns the host table holding a field's values.
func TableName(name string) string {
	return "field_" + strings.ToLower(name)
}

func validateSiblingSeparator(sep string) error {
	if sep == "" || strings.ContainsAny(sep, ".#\"'`") {
		return fmt.Errorf("%w: %q", ErrInvalidSeparator, sep)
	}
	return nil
}
