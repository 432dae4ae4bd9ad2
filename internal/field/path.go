package field

import (
	"slices"
	"strings"
)

// RootScope names the outermost finder.
const RootScope = "root"

// AliasPath is the immutable sequence of scope names from the root finder
// to the current one. It is passed down during composition instead of
// walking parent pointers.
type AliasPath struct {
	parts []string
}

// Root returns the path of a top-level finder.
func Root() AliasPath {
	return AliasPath{parts: []string{RootScope}}
}

// Child returns the path of a finder joined under prefix.
// The receiver is not modified.
func (p AliasPath) Child(prefix string) AliasPath {
	parts := make([]string, len(p.parts), len(p.parts)+1)
	copy(parts, p.parts)
	return AliasPath{parts: append(parts, prefix)}
}

// Parts returns a copy of the path elements.
func (p AliasPath) Parts() []string {
	return slices.Clone(p.parts)
}

// Depth is 0 for the root finder.
func (p AliasPath) Depth() int {
	return len(p.parts) - 1
}

// Scope is the alias of the finder's composed result set.
func (p AliasPath) Scope() string {
	if len(p.parts) == 0 {
		return RootScope
	}
	return strings.Join(p.parts, ".")
}

// Base is the alias of the entity table inside the base subquery.
func (p AliasPath) Base() string {
	return p.Scope() + "#"
}

// Table is the alias of a field's joined subquery.
func (p AliasPath) Table(alias string) string {
	return p.Base() + alias
}

// SubTable is the alias of a table joined for one sub-column of a field.
func (p AliasPath) SubTable(alias, column string) string {
	return p.Table(alias) + ":" + column
}

func (p AliasPath) String() string {
	return p.Scope()
}
