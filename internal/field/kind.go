package field

import (
	"fmt"
	"strings"
)

// Kind enumerates the field variants.
type Kind int

const (
	// Text is a plain single-valued attribute stored in its own table.
	Text Kind = iota
	// File is an ordered collection of attachments.
	File
	// Page is an ordered collection of references to other entities.
	Page
	// Repeater is a group of child entities whose ids are stored as a
	// comma-delimited list.
	Repeater
	// PagesTable is a column of the base entity table itself.
	PagesTable
	// Closure is filled in after execution by a computed column.
	Closure
)

var kindNames = map[Kind]string{
	Text:       "text",
	File:       "file",
	Page:       "page",
	Repeater:   "repeater",
	PagesTable: "pagestable",
	Closure:    "closure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MultiValued reports whether the kind aggregates several rows per entity.
func (k Kind) MultiValued() bool {
	return k == File || k == Page || k == Repeater
}

// Classification is what the field registry knows about a field name.
type Classification struct {
	Kind          Kind
	MultiLanguage bool
}
