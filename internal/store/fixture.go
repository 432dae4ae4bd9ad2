package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlfinder/internal/field"
)

// Fixture is a YAML description of host content.
//
//	languages:
//	  - {name: default, tag: en, default: true}
//	  - {name: german, tag: de}
//	fields:
//	  - {name: title, type: text, multilang: true}
//	  - {name: images, type: file, columns: [description]}
//	pages:
//	  - id: 5
//	    template: post
//	    values:
//	      title: {data: Hello, lang: {german: Hallo}}
//	      images:
//	        - {data: b.jpg, description: second}
//	        - a.jpg
type Fixture struct {
	Languages []FixtureLanguage `yaml:"languages"`
	Fields    []FixtureField    `yaml:"fields"`
	Pages     []FixturePage     `yaml:"pages"`
}

// FixtureLanguage defines a language.
type FixtureLanguage struct {
	Name    string `yaml:"name"`
	Tag     string `yaml:"tag"`
	Default bool   `yaml:"default"`
}

// FixtureField defines a field.
type FixtureField struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	MultiLang bool     `yaml:"multilang"`
	Columns   []string `yaml:"columns"`
	SubFields []string `yaml:"subfields"`
}

// FixturePage is an entity with its field values.
type FixturePage struct {
	ID       int64                    `yaml:"id"`
	Parent   int64                    `yaml:"parent"`
	Template string                   `yaml:"template"`
	Name     string                   `yaml:"name"`
	Status   *int64                   `yaml:"status"`
	Sort     int64                    `yaml:"sort"`
	Created  int64                    `yaml:"created"`
	Values   map[string]FixtureValues `yaml:"values"`
}

// FixtureValues is one value or a list of values.
type FixtureValues []FixtureValue

// UnmarshalYAML accepts a scalar, a mapping or a sequence of either.
func (v *FixtureValues) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		var one FixtureValue
		if err := node.Decode(&one); err != nil {
			return err
		}
		*v = FixtureValues{one}
		return nil
	}
	var many []FixtureValue
	if err := node.Decode(&many); err != nil {
		return err
	}
	*v = many
	return nil
}

// FixtureValue is a stored value. As a mapping, "data" is the value,
// "lang" holds translations by language name and any other key fills the
// extra column of that name.
type FixtureValue struct {
	Data  any
	Lang  map[string]any
	Extra map[string]any
}

// UnmarshalYAML accepts a scalar or a mapping.
func (v *FixtureValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return node.Decode(&v.Data)
	}
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return err
	}
	for k, val := range m {
		switch k {
		case "data":
			v.Data = val
		case "lang":
			langs, ok := val.(map[string]any)
			if !ok {
				return fmt.Errorf("line %d: lang must be a mapping of language names", node.Line)
			}
			v.Lang = langs
		default:
			if v.Extra == nil {
				v.Extra = make(map[string]any)
			}
			v.Extra[k] = val
		}
	}
	return nil
}

// LoadFixture reads a fixture file. Unknown keys are rejected.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML. Unknown keys are rejected.
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// Seed writes a fixture: languages, then fields, then pages and values.
func (s *Store) Seed(ctx context.Context, fx *Fixture) error {
	langIDs := make(map[string]int64)
	defaults := make(map[string]bool)
	for _, l := range fx.Languages {
		lang, err := s.DefineLanguage(ctx, LanguageDef{Name: l.Name, Tag: l.Tag, Default: l.Default})
		if err != nil {
			return err
		}
		langIDs[l.Name] = lang.ID
		defaults[l.Name] = l.Default
	}

	for _, f := range fx.Fields {
		kind, err := field.ParseKind(f.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		def := FieldDef{Name: f.Name, Type: kind, MultiLanguage: f.MultiLang, Columns: f.Columns, SubFields: f.SubFields}
		if err := s.DefineField(ctx, def); err != nil {
			return err
		}
	}

	for _, p := range fx.Pages {
		status := int64(1)
		if p.Status != nil {
			status = *p.Status
		}
		id, err := s.InsertPage(ctx, Page{
			ID:       p.ID,
			ParentID: p.Parent,
			Template: p.Template,
			Name:     p.Name,
			Status:   status,
			Sort:     p.Sort,
			Created:  p.Created,
		})
		if err != nil {
			return err
		}

		for _, name := range sortedFixtureKeys(p.Values) {
			values := make([]Value, 0, len(p.Values[name]))
			for _, fv := range p.Values[name] {
				v := Value{Data: fv.Data, Extra: fv.Extra}
				for langName, data := range fv.Lang {
					langID, ok := langIDs[langName]
					if !ok {
						return fmt.Errorf("page %d field %s: unknown language %q", id, name, langName)
					}
					if defaults[langName] {
						v.Data = data
						continue
					}
					if v.Lang == nil {
						v.Lang = make(map[int64]any)
					}
					v.Lang[langID] = data
				}
				values = append(values, v)
			}
			if err := s.SetValues(ctx, id, name, values...); err != nil {
				return fmt.Errorf("page %d: %w", id, err)
			}
		}
	}
	return nil
}

func sortedFixtureKeys(m map[string]FixtureValues) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
