package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joining(name string, refs ...string) *FinderSpec {
	spec := &FinderSpec{Name: name}
	for _, ref := range refs {
		spec.Joins = append(spec.Joins, JoinRef{Finder: ref, Params: map[string]string{"prefix": ref}})
	}
	return spec
}

func TestAnalyzeJoins_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeJoins(nil))
}

func TestAnalyzeJoins_DAG(t *testing.T) {
	specs := []*FinderSpec{
		joining("posts", "authors", "images"),
		joining("authors", "images"),
		joining("images"),
	}
	assert.Empty(t, AnalyzeJoins(specs))
}

func TestAnalyzeJoins_SelfJoin(t *testing.T) {
	cycles := AnalyzeJoins([]*FinderSpec{joining("posts", "posts")})
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"posts", "posts"}, cycles[0].Path)
	assert.Contains(t, cycles[0].Message, "joins itself")
}

func TestAnalyzeJoins_TwoFinderCycle(t *testing.T) {
	specs := []*FinderSpec{
		joining("posts", "authors"),
		joining("authors", "posts"),
	}
	cycles := AnalyzeJoins(specs)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"authors", "posts", "authors"}, cycles[0].Path)
	assert.Equal(t, "join cycle: authors → posts → authors", cycles[0].Error())
}

func TestAnalyzeJoins_ThreeFinderCycle(t *testing.T) {
	specs := []*FinderSpec{
		joining("c", "a"),
		joining("a", "b"),
		joining("b", "c"),
		joining("d", "a"),
	}
	cycles := AnalyzeJoins(specs)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycles[0].Path)
}

func TestAnalyzeJoins_UnknownReferenceIgnored(t *testing.T) {
	assert.Empty(t, AnalyzeJoins([]*FinderSpec{joining("posts", "missing")}))
}

func TestAnalyzeJoins_Deterministic(t *testing.T) {
	specs := []*FinderSpec{
		joining("x", "y"),
		joining("y", "x"),
		joining("a", "a"),
	}
	first := AnalyzeJoins(specs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, AnalyzeJoins(specs))
	}
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].Path[0])
	assert.Equal(t, "x", first[1].Path[0])
}
