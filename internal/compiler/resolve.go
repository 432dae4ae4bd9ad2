package compiler

import (
	"fmt"
	"sort"

	"github.com/roach88/sqlfinder/internal/finder"
)

// Resolve inlines join references and returns one complete definition per
// finder name. Unknown references, duplicate names and join cycles are
// errors.
func Resolve(specs []*FinderSpec) (map[string]finder.Definition, error) {
	byName := make(map[string]*FinderSpec, len(specs))
	for _, spec := range specs {
		if prev, dup := byName[spec.Name]; dup {
			return nil, &CompileError{
				Field:   "finder." + spec.Name,
				Message: fmt.Sprintf("finder defined twice (first at %s)", prev.Pos),
				Pos:     spec.Pos,
			}
		}
		byName[spec.Name] = spec
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, ref := range byName[name].Joins {
			if _, ok := byName[ref.Finder]; !ok {
				return nil, &CompileError{
					Field:   "finder." + name + ".joins",
					Message: fmt.Sprintf("unknown finder %q", ref.Finder),
					Pos:     ref.Pos,
				}
			}
		}
	}
	if cycles := AnalyzeJoins(specs); len(cycles) > 0 {
		c := cycles[0]
		return nil, &CompileError{Field: "finder." + c.Path[0] + ".joins", Message: c.Message, Pos: byName[c.Path[0]].Pos}
	}

	out := make(map[string]finder.Definition, len(byName))
	var build func(name string) finder.Definition
	build = func(name string) finder.Definition {
		if def, ok := out[name]; ok {
			return def
		}
		spec := byName[name]
		def := spec.Definition
		def.Joins = nil
		for _, ref := range spec.Joins {
			params := make(map[string]string, len(ref.Params))
			for k, v := range ref.Params {
				params[k] = v
			}
			def.Joins = append(def.Joins, finder.JoinDefinition{Finder: build(ref.Finder), Params: params})
		}
		out[name] = def
		return def
	}
	for _, name := range names {
		build(name)
	}
	return out, nil
}
