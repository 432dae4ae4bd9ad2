package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlfinder/internal/store"
)

const testFinders = "testdata/finders"

// seedTestDB creates a host database from testdata/site.yaml and returns
// its path.
//
// Pages 1, 2 and 5 are posts sorted 5, 1, 2. Block 10 (headline Intro)
// and block 11 are children of post 5.
func seedTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	fx, err := store.LoadFixture(filepath.Join("testdata", "site.yaml"))
	require.NoError(t, err)
	require.NoError(t, st.Seed(context.Background(), fx))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}
