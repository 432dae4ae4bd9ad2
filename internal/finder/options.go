package finder

import (
	"log/slog"

	"github.com/roach88/sqlfinder/internal/dialect"
)

// Option configures a Finder at construction.
type Option func(*Finder)

// WithLogger sets the logger for warnings and debug output.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithDialect selects the SQL dialect. Default: dialect.SQLite.
func WithDialect(d dialect.Dialect) Option {
	return func(f *Finder) {
		if d != nil {
			f.dialect = d
		}
	}
}

// WithSort controls whether rows keep the order of the resolved ids.
// Default: true.
func WithSort(sort bool) Option {
	return func(f *Finder) {
		f.sort = sort
	}
}

// WithLimit appends a modifier such as "limit=1" to the selector when
// resolving ids. Computed columns are not evaluated while a limit is set.
func WithLimit(modifier string) Option {
	return func(f *Finder) {
		f.limit = modifier
	}
}

// WithTimer installs an instrumentation hook.
func WithTimer(t Timer) Option {
	return func(f *Finder) {
		if t != nil {
			f.timer = t
		}
	}
}

// WithPrefixGenerator sets how prefixes are generated for joins that do
// not name one. Default: UUIDPrefixGenerator.
func WithPrefixGenerator(g PrefixGenerator) Option {
	return func(f *Finder) {
		if g != nil {
			f.prefixes = g
		}
	}
}
