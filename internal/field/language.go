package field

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
)

// Language is one content language known to the host.
type Language struct {
	ID   int64
	Name string
	Tag  language.Tag
}

// Column returns the language-specific variant of a value column,
// e.g. "data1012".
func (l Language) Column(base string) string {
	return base + strconv.FormatInt(l.ID, 10)
}

func (l Language) String() string {
	return fmt.Sprintf("%s(%d)", l.Tag, l.ID)
}

// Languages is the language context of one composition.
type Languages struct {
	Current Language
	Default Language
}

// IsDefault reports whether values are read from the base columns.
func (l Languages) IsDefault() bool {
	return l.Current.ID == l.Default.ID
}

// DataColumn returns the unqualified column that holds values in the
// current language, without fallback.
func (l Languages) DataColumn(base string) string {
	if l.IsDefault() {
		return base
	}
	return l.Current.Column(base)
}

// Resolve renders the expression reading base in the current language.
//
//   - not capable or multi-language disabled: the base column
//   - current language is the default: the base column
//   - strict: the language column, which may be empty
//   - otherwise: the language column, falling back to the base column
//     when it is NULL or ''
//
// quote renders one qualified column reference.
func (l Languages) Resolve(quote func(column string) string, base string, capable, multi, strict bool) string {
	if !capable || !multi || l.IsDefault() {
		return quote(base)
	}
	langCol := quote(l.Current.Column(base))
	if strict {
		return langCol
	}
	return fmt.Sprintf("COALESCE(NULLIF(%s, ''), %s)", langCol, quote(base))
}
