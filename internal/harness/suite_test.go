package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	paths, err := FindScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.Len(t, paths, 6)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "blocks.yaml"), paths[0])
}

func TestRunSuite_Directory(t *testing.T) {
	result, err := RunSuite(context.Background(), []string{filepath.Join("testdata", "scenarios")})
	require.NoError(t, err)
	assert.Equal(t, 6, result.TotalScenarios)
	assert.Equal(t, 6, result.Passed, "failures: %v", result.Failures)
	assert.Zero(t, result.Failed)
}

func TestRunSuite_MixedResults(t *testing.T) {
	failing := writeScenario(t, `
name: wrong_count
description: expects too many posts
fixture: site.yaml
finder: {selector: template=post}
assertions: [{type: row_count, count: 9}]
`)
	broken := filepath.Join(filepath.Dir(failing), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("name: [\n"), 0644))

	result, err := RunSuite(context.Background(), []string{scenarioPath("post_titles"), failing, broken})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalScenarios)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Failed)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, "wrong_count", result.Failures[0].Scenario)
	assert.Contains(t, result.Failures[0].Error, "scenario assertions failed")
	assert.Contains(t, result.Failures[1].Error, "failed to load scenario")
}

func TestRunSuite_MissingPath(t *testing.T) {
	_, err := RunSuite(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}
