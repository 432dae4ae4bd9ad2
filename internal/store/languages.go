package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/roach88/sqlfinder/internal/dialect"
	"github.com/roach88/sqlfinder/internal/field"
)

// LanguageDef describes a content language to define.
type LanguageDef struct {
	Name    string
	Tag     string
	Default bool
}

// DefineLanguage adds a content language. A non-default language adds its
// value column to every multi-language field table.
func (s *Store) DefineLanguage(ctx context.Context, def LanguageDef) (field.Language, error) {
	if err := field.ValidateName(def.Name); err != nil {
		return field.Language{}, fmt.Errorf("language name: %w", err)
	}
	tag, err := language.Parse(def.Tag)
	if err != nil {
		return field.Language{}, fmt.Errorf("language %s: %w", def.Name, err)
	}

	if def.Default && s.hasDefault(ctx) {
		return field.Language{}, fmt.Errorf("language %s: a default language is already defined", def.Name)
	}
	reg, err := s.Registry(ctx)
	if err != nil {
		return field.Language{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return field.Language{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := s.sq.Insert("languages").
		Columns("name", "tag", "is_default").
		Values(def.Name, tag.String(), def.Default).
		ToSql()
	if err != nil {
		return field.Language{}, fmt.Errorf("build insert: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return field.Language{}, fmt.Errorf("insert language %s: %w", def.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return field.Language{}, fmt.Errorf("language id: %w", err)
	}
	lang := field.Language{ID: id, Name: def.Name, Tag: tag}

	if !def.Default {
		q := dialect.SQLite{}.Quote
		for _, fd := range reg.Fields() {
			if !fd.MultiLanguage {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s NUMERIC", q(field.TableName(fd.Name)), q(lang.Column(field.BaseColumn)))
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return field.Language{}, fmt.Errorf("add language column to %s: %w", fd.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return field.Language{}, fmt.Errorf("commit: %w", err)
	}
	return lang, nil
}

func (s *Store) hasDefault(ctx context.Context) bool {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM languages WHERE is_default = 1").Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// Languages returns the content languages, the default one first.
func (s *Store) Languages(ctx context.Context) ([]field.Language, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, tag
		FROM languages
		ORDER BY is_default DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query languages: %w", err)
	}
	defer rows.Close()

	langs := []field.Language{}
	for rows.Next() {
		var (
			lang field.Language
			tag  string
		)
		if err := rows.Scan(&lang.ID, &lang.Name, &tag); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		if lang.Tag, err = language.Parse(tag); err != nil {
			return nil, fmt.Errorf("language %s: %w", lang.Name, err)
		}
		langs = append(langs, lang)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate languages: %w", err)
	}
	return langs, nil
}

// nonDefaultLanguages returns every language but the default one.
func (s *Store) nonDefaultLanguages(ctx context.Context) ([]field.Language, error) {
	langs, err := s.Languages(ctx)
	if err != nil {
		return nil, err
	}
	if len(langs) == 0 || !s.hasDefault(ctx) {
		return langs, nil
	}
	return langs[1:], nil
}

// LanguageSelection is a fixed language context. It implements
// finder.LanguageSource.
type LanguageSelection struct {
	Current field.Language
	Default field.Language
}

// CurrentLanguage implements finder.LanguageSource.
func (l *LanguageSelection) CurrentLanguage(context.Context) (field.Language, error) {
	return l.Current, nil
}

// DefaultLanguage implements finder.LanguageSource.
func (l *LanguageSelection) DefaultLanguage(context.Context) (field.Language, error) {
	return l.Default, nil
}

// ErrNoLanguage is returned when a requested language matches nothing.
var ErrNoLanguage = errors.New("no matching language")

// SelectLanguage picks the current language for a request. requested is
// a language name or a BCP 47 tag; tags are matched with a
// language.Matcher, so "de-CH" selects a "de" language. An empty request
// selects the default language.
func (s *Store) SelectLanguage(ctx context.Context, requested string) (*LanguageSelection, error) {
	langs, err := s.Languages(ctx)
	if err != nil {
		return nil, err
	}
	if len(langs) == 0 {
		if requested != "" {
			return nil, fmt.Errorf("%w: %s (no languages defined)", ErrNoLanguage, requested)
		}
		return &LanguageSelection{}, nil
	}

	sel := &LanguageSelection{Current: langs[0], Default: langs[0]}
	if requested == "" {
		return sel, nil
	}
	for _, lang := range langs {
		if lang.Name == requested {
			sel.Current = lang
			return sel, nil
		}
	}

	want, err := language.Parse(requested)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoLanguage, requested)
	}
	tags := make([]language.Tag, len(langs))
	for i, lang := range langs {
		tags[i] = lang.Tag
	}
	_, idx, confidence := language.NewMatcher(tags).Match(want)
	if confidence == language.No {
		return nil, fmt.Errorf("%w: %s", ErrNoLanguage, requested)
	}
	sel.Current = langs[idx]
	return sel, nil
}
