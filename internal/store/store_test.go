package store

import (
	"database/sql"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open %d", i)
		require.NoError(t, s.Close())
	}
	assert.FileExists(t, path)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	for _, table := range []string{"pages", "fields", "languages"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_InMemoryKeepsData(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec(`INSERT INTO pages (id, template) VALUES (1, 'post')`)
	require.NoError(t, err)

	var template string
	require.NoError(t, s.db.QueryRow(`SELECT template FROM pages WHERE id = 1`).Scan(&template))
	assert.Equal(t, "post", template)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/host.db")
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())

	s, err := Open(filepath.Join(t.TempDir(), "host.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_ = s.Close()
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := s.pragma(name)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestSchema_Columns(t *testing.T) {
	s := createTestStore(t)

	tests := map[string][]string{
		"pages":     {"id", "parent_id", "template", "name", "status", "sort", "created"},
		"fields":    {"id", "name", "type", "multilang", "columns", "subfields"},
		"languages": {"id", "name", "tag", "is_default"},
	}
	for table, want := range tests {
		t.Run(table, func(t *testing.T) {
			assert.Subset(t, tableColumns(t, s.db, table), want)
		})
	}
}

func TestSchema_PagesIndexes(t *testing.T) {
	s := createTestStore(t)
	assert.Subset(t, tableIndexes(t, s.db, "pages"), []string{"idx_pages_template", "idx_pages_parent"})
}

func TestSchema_Constraints(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO fields (name, type) VALUES ('title', 'text')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO fields (name, type) VALUES ('title', 'file')`)
	assert.Error(t, err, "field names are unique")

	_, err = s.db.Exec(`INSERT INTO languages (name, tag) VALUES ('german', 'de')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO languages (name, tag) VALUES ('german', 'de-AT')`)
	assert.Error(t, err, "language names are unique")
}

func TestSchema_PageDefaults(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO pages (id) VALUES (7)`)
	require.NoError(t, err)

	var (
		parent, status, sort int64
		template, name       string
	)
	err = s.db.QueryRow(`SELECT parent_id, template, name, status, sort FROM pages WHERE id = 7`).
		Scan(&parent, &template, &name, &status, &sort)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(0), "", "", int64(1), int64(0)}, []any{parent, template, name, status, sort})
}

func TestMigrate_UpgradesOldDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.db")

	// A database from before the first migration: base schema, version 0,
	// no parent index.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NotContains(t, tableIndexes(t, db, "pages"), "idx_pages_parent")
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.pragma("user_version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)
	assert.Equal(t, 1, schemaVersion)
	assert.Contains(t, tableIndexes(t, s.db, "pages"), "idx_pages_parent")
}

func tableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	require.NoError(t, err)
	defer rows.Close()
	return scanNames(t, rows)
}

func tableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	require.NoError(t, err)
	defer rows.Close()
	return scanNames(t, rows)
}

func scanNames(t *testing.T, rows *sql.Rows) []string {
	t.Helper()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	slices.Sort(names)
	return names
}
