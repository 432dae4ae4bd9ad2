package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createSeededStore creates a store filled with testdata/site.yaml.
//
// Pages 1, 2 and 5 are posts sorted 5, 1, 2; 3 and 4 are persons, 4 is
// unpublished. Post 5 has two images and a repeater of blocks 10 and 11.
func createSeededStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	fx, err := LoadFixture(filepath.Join("testdata", "site.yaml"))
	require.NoError(t, err)
	require.NoError(t, s.Seed(context.Background(), fx))
	return s
}
