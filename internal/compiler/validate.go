package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlfinder/internal/field"
	"github.com/roach88/sqlfinder/internal/finder"
	"github.com/roach88/sqlfinder/internal/selector"
)

// Validation error codes (E100-E199)
const (
	ErrInvalidSelector   = "E101" // selector does not parse
	ErrInvalidName       = "E102" // field, alias, column or raw alias name
	ErrDuplicateOutput   = "E103" // two outputs share a name
	ErrInvalidFieldType  = "E104" // unknown or undeclarable type
	ErrInvalidJoinParams = "E105" // prefix/key/parent/child
	ErrInvalidSeparator  = "E106" // sibling separator
	ErrInvalidLimit      = "E107" // limit modifier does not parse
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled finder without touching a database.
// Returns all errors found (does not fail-fast).
func Validate(spec *FinderSpec) []ValidationError {
	line := 0
	if spec.Pos.IsValid() {
		line = spec.Pos.Line()
	}
	add := func(errs []ValidationError, code, path, msg string) []ValidationError {
		return append(errs, ValidationError{Field: path, Message: msg, Code: code, Line: line})
	}

	var errs []ValidationError
	def := spec.Definition

	if _, err := selector.Parse(def.Selector); err != nil {
		errs = add(errs, ErrInvalidSelector, "selector", err.Error())
	}
	if def.Limit != "" {
		if _, err := selector.Parse(def.Limit); err != nil {
			errs = add(errs, ErrInvalidLimit, "limit", err.Error())
		}
	}

	outputs := make(map[string]string)
	claim := func(name, path string) {
		if prev, ok := outputs[name]; ok {
			errs = add(errs, ErrDuplicateOutput, path, fmt.Sprintf("output %q already produced by %s", name, prev))
			return
		}
		outputs[name] = path
	}

	for i, fd := range def.Fields {
		path := fmt.Sprintf("fields[%d]", i)
		errs = append(errs, validateField(fd, path, line)...)
		out := fd.Alias
		if out == "" {
			out = fd.Name
		}
		claim(out, path)
	}
	for i, r := range def.Raw {
		path := fmt.Sprintf("raw[%d]", i)
		if err := field.ValidateName(r.Alias); err != nil {
			errs = add(errs, ErrInvalidName, path+".alias", err.Error())
		}
		if strings.TrimSpace(r.Expr) == "" {
			errs = add(errs, ErrInvalidName, path+".expr", "expression is required")
		}
		claim(r.Alias, path)
	}
	for i, ref := range spec.Joins {
		path := fmt.Sprintf("joins[%d]", i)
		opts, err := finder.ParseJoinOptions(ref.Params)
		if err != nil {
			errs = add(errs, ErrInvalidJoinParams, path, err.Error())
			continue
		}
		if opts.Prefix != "" {
			claim(opts.Prefix, path)
		}
	}
	return errs
}

func validateField(fd finder.FieldDefinition, path string, line int) []ValidationError {
	var errs []ValidationError
	add := func(code, p, msg string) {
		errs = append(errs, ValidationError{Field: p, Message: msg, Code: code, Line: line})
	}

	if err := field.ValidateName(fd.Name); err != nil {
		add(ErrInvalidName, path+".name", err.Error())
	}
	if fd.Alias != "" {
		if err := field.ValidateName(fd.Alias); err != nil {
			add(ErrInvalidName, path+".alias", err.Error())
		}
	}
	for j, col := range fd.Columns {
		if err := field.ValidateName(col); err != nil {
			add(ErrInvalidName, fmt.Sprintf("%s.columns[%d]", path, j), err.Error())
		}
	}
	if fd.Type != "" {
		kind, err := field.ParseKind(fd.Type)
		switch {
		case err != nil:
			add(ErrInvalidFieldType, path+".type", err.Error())
		case kind == field.Closure:
			add(ErrInvalidFieldType, path+".type", "computed columns are registered in code")
		}
	}
	if fd.SiblingSeparator != "" && strings.ContainsAny(fd.SiblingSeparator, ".#\"'`") {
		add(ErrInvalidSeparator, path+".sibling_separator",
			fmt.Sprintf("separator %q clashes with join output names", fd.SiblingSeparator))
	}
	return errs
}
