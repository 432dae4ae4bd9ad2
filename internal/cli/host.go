package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlfinder/internal/dialect"
	"github.com/roach88/sqlfinder/internal/entityloader"
	"github.com/roach88/sqlfinder/internal/finder"
	"github.com/roach88/sqlfinder/internal/pgstore"
	"github.com/roach88/sqlfinder/internal/store"
)

// HostOptions are the flags of commands that read the host database.
// Empty values fall back to the configuration.
type HostOptions struct {
	Database string
	Language string
	PGDSN    string
}

func addHostFlags(cmd *cobra.Command, h *HostOptions) {
	cmd.Flags().StringVar(&h.Database, "db", "", "path to the SQLite host database (default from config)")
	cmd.Flags().StringVar(&h.Language, "lang", "", "content language name or tag (default from config)")
	cmd.Flags().StringVar(&h.PGDSN, "pg-dsn", "", "execute on PostgreSQL instead of SQLite")
}

// host is an opened host database with the finder collaborators wired.
type host struct {
	store *store.Store
	pg    *pgstore.Store
	deps  finder.Deps
	opts  []finder.Option
}

// openHost opens the SQLite host named by the flags or config. The
// database must already exist. With a PostgreSQL DSN, selectors resolve
// and statements execute on PostgreSQL while the field registry and
// languages are still read from the SQLite host.
func openHost(ctx context.Context, root *RootOptions, h HostOptions) (*host, error) {
	cfg, err := root.Config()
	if err != nil {
		return nil, err
	}
	logger := root.Logger()

	database := firstNonEmpty(h.Database, cfg.Database)
	if _, err := os.Stat(database); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database not found: %s", database), err)
	}
	st, err := store.Open(database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	out := &host{store: st}

	reg, err := st.Registry(ctx)
	if err != nil {
		out.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load field registry", err)
	}
	langs, err := st.SelectLanguage(ctx, firstNonEmpty(h.Language, cfg.Language))
	if err != nil {
		out.Close()
		return nil, WrapExitError(ExitCommandError, "failed to select language", err)
	}

	out.deps = finder.Deps{
		Resolver:  st,
		Registry:  reg,
		Loader:    entityloader.NewEntityLoader(st),
		Executor:  st,
		Languages: langs,
	}
	out.opts = []finder.Option{
		finder.WithLogger(logger),
		finder.WithSort(cfg.Sort),
		finder.WithTimer(finder.LogTimer{Logger: logger}),
	}

	if dsn := firstNonEmpty(h.PGDSN, cfg.PGDSN); dsn != "" {
		pg, err := pgstore.Open(ctx, pgstore.DefaultConfig(dsn), logger)
		if err != nil {
			out.Close()
			return nil, WrapExitError(ExitCommandError, "failed to connect to PostgreSQL", err)
		}
		out.pg = pg
		out.deps.Resolver = pg
		out.deps.Executor = pg
		out.opts = append(out.opts, finder.WithDialect(dialect.Postgres{}))
		logger.Debug("executing on postgres")
	}
	return out, nil
}

// build creates the finder for a definition.
func (h *host) build(def finder.Definition, extra ...finder.Option) (*finder.Finder, error) {
	opts := append(append([]finder.Option{}, h.opts...), extra...)
	return finder.Build(def, h.deps, opts...)
}

// Close releases the databases.
func (h *host) Close() {
	if h.pg != nil {
		h.pg.Close()
	}
	if h.store != nil {
		_ = h.store.Close()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
