package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sqlfinder/internal/finder"
)

// FinderSpec is a named finder compiled from CUE. Joins name other
// finders and are inlined by Resolve.
type FinderSpec struct {
	Name       string
	Definition finder.Definition
	Joins      []JoinRef
	Pos        token.Pos
}

// JoinRef embeds the finder called Finder. Params are the join parameters
// (prefix, key, parent, child).
type JoinRef struct {
	Finder string
	Params map[string]string
	Pos    token.Pos
}

// CompileFinder parses a CUE value into a FinderSpec.
//
// The value is the finder struct itself, e.g.:
//
//	finder: posts: {
//		selector: "template=post"
//		fields: ["title", {name: "images", separator: "|"}]
//		joins: [{finder: "authors", prefix: "author"}]
//	}
func CompileFinder(v cue.Value) (*FinderSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &FinderSpec{Pos: v.Pos()}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	hasSelector := false
	for iter.Next() {
		label, val := iter.Label(), iter.Value()
		switch label {
		case "selector":
			if spec.Definition.Selector, err = stringValue(val, "selector"); err != nil {
				return nil, err
			}
			hasSelector = true
		case "fields":
			if spec.Definition.Fields, err = parseFields(val); err != nil {
				return nil, err
			}
		case "raw":
			if spec.Definition.Raw, err = parseRaw(val); err != nil {
				return nil, err
			}
		case "joins":
			if spec.Joins, err = parseJoins(val); err != nil {
				return nil, err
			}
		case "limit":
			if spec.Definition.Limit, err = stringValue(val, "limit"); err != nil {
				return nil, err
			}
		case "sort":
			b, err := val.Bool()
			if err != nil {
				return nil, &CompileError{Field: "sort", Message: "must be a bool", Pos: val.Pos()}
			}
			spec.Definition.Sort = &b
		default:
			return nil, &CompileError{Field: label, Message: "unknown finder key", Pos: val.Pos()}
		}
	}

	if !hasSelector {
		return nil, &CompileError{
			Field:   "selector",
			Message: "selector is required",
			Pos:     v.Pos(),
		}
	}
	return spec, nil
}

// parseFields accepts a list whose items are a field name or a struct.
func parseFields(v cue.Value) ([]finder.FieldDefinition, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "fields", Message: "must be a list", Pos: v.Pos()}
	}

	var fields []finder.FieldDefinition
	for list.Next() {
		item := list.Value()
		if name, err := item.String(); err == nil {
			fields = append(fields, finder.FieldDefinition{Name: name})
			continue
		}
		fd, err := parseField(item)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fd)
	}
	return fields, nil
}

func parseField(v cue.Value) (finder.FieldDefinition, error) {
	var fd finder.FieldDefinition
	iter, err := v.Fields()
	if err != nil {
		return fd, &CompileError{Field: "fields", Message: "must be a field name or a struct", Pos: v.Pos()}
	}

	for iter.Next() {
		label, val := iter.Label(), iter.Value()
		path := "field." + label
		switch label {
		case "name":
			fd.Name, err = stringValue(val, path)
		case "alias":
			fd.Alias, err = stringValue(val, path)
		case "columns":
			fd.Columns, err = stringList(val, path)
		case "all_columns":
			fd.AllColumns, err = boolValue(val, path)
		case "type":
			fd.Type, err = stringValue(val, path)
		case "multi_language":
			fd.MultiLanguage, err = boolValue(val, path)
		case "separator":
			fd.Separator, err = stringValue(val, path)
		case "sibling_separator":
			fd.SiblingSeparator, err = stringValue(val, path)
		case "strict_language":
			fd.StrictLanguage, err = boolValue(val, path)
		case "default_language":
			fd.DefaultLanguage, err = boolValue(val, path)
		default:
			err = &CompileError{Field: path, Message: "unknown field key", Pos: val.Pos()}
		}
		if err != nil {
			return fd, err
		}
	}

	if fd.Name == "" {
		return fd, &CompileError{Field: "field.name", Message: "name is required", Pos: v.Pos()}
	}
	return fd, nil
}

func parseRaw(v cue.Value) ([]finder.RawDefinition, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "raw", Message: "must be a list", Pos: v.Pos()}
	}

	var raw []finder.RawDefinition
	for list.Next() {
		item := list.Value()
		alias, err := stringValue(item.LookupPath(cue.ParsePath("alias")), "raw.alias")
		if err != nil {
			return nil, err
		}
		expr, err := stringValue(item.LookupPath(cue.ParsePath("expr")), "raw.expr")
		if err != nil {
			return nil, err
		}
		raw = append(raw, finder.RawDefinition{Alias: alias, Expr: expr})
	}
	return raw, nil
}

// parseJoins reads join references. Every key except finder is a join
// parameter.
func parseJoins(v cue.Value) ([]JoinRef, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "joins", Message: "must be a list", Pos: v.Pos()}
	}

	var joins []JoinRef
	for list.Next() {
		item := list.Value()
		ref := JoinRef{Params: make(map[string]string), Pos: item.Pos()}

		iter, err := item.Fields()
		if err != nil {
			return nil, &CompileError{Field: "joins", Message: "join must be a struct", Pos: item.Pos()}
		}
		for iter.Next() {
			label := iter.Label()
			s, err := stringValue(iter.Value(), "join."+label)
			if err != nil {
				return nil, err
			}
			if label == "finder" {
				ref.Finder = s
			} else {
				ref.Params[label] = s
			}
		}
		if ref.Finder == "" {
			return nil, &CompileError{Field: "join.finder", Message: "finder is required", Pos: item.Pos()}
		}
		joins = append(joins, ref)
	}
	return joins, nil
}

func stringValue(v cue.Value, path string) (string, error) {
	if !v.Exists() {
		return "", &CompileError{Field: path, Message: "is required", Pos: v.Pos()}
	}
	s, err := v.String()
	if err != nil {
		return "", &CompileError{Field: path, Message: "must be a string", Pos: v.Pos()}
	}
	return s, nil
}

func boolValue(v cue.Value, path string) (bool, error) {
	b, err := v.Bool()
	if err != nil {
		return false, &CompileError{Field: path, Message: "must be a bool", Pos: v.Pos()}
	}
	return b, nil
}

func stringList(v cue.Value, path string) ([]string, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: path, Message: "must be a list of strings", Pos: v.Pos()}
	}
	var out []string
	for list.Next() {
		s, err := stringValue(list.Value(), path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
