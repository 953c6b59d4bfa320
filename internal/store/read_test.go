package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAll(t *testing.T, s *Store, gens ...Generation) {
	t.Helper()
	for _, g := range gens {
		require.NoError(t, s.WriteGeneration(context.Background(), g))
	}
}

func TestReadGenerations_Empty(t *testing.T) {
	s := createTestStore(t)

	gens, err := s.ReadGenerations(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, gens, "empty history is an empty slice")
	assert.Empty(t, gens)
}

func TestReadGenerations_Order(t *testing.T) {
	s := createTestStore(t)
	writeAll(t, s,
		createTestGeneration("b", "lib", "cfg"),
		createTestGeneration("a", "lib", "cfg"),
		createTestGeneration("c", "lib", "cfg"),
	)

	gens, err := s.ReadGenerations(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, gens, 3)

	var ids []string
	for i, g := range gens {
		ids = append(ids, g.ID)
		assert.Equal(t, int64(i+1), g.Seq)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids, "insertion order, not id order")
	assert.Equal(t, "out-a", gens[1].OutputHash)
	assert.Equal(t, 2, gens[1].FunctionCount)
}

func TestReadGenerations_Limit(t *testing.T) {
	s := createTestStore(t)
	writeAll(t, s,
		createTestGeneration("1", "lib", "cfg"),
		createTestGeneration("2", "lib", "cfg"),
		createTestGeneration("3", "lib", "cfg"),
	)

	gens, err := s.ReadGenerations(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, gens, 2)
	assert.Equal(t, "2", gens[0].ID)
	assert.Equal(t, "3", gens[1].ID)
}

func TestReadGeneration_Types(t *testing.T) {
	s := createTestStore(t)
	g := createTestGeneration("run", "lib", "cfg")
	g.Types = []TypeEntry{
		{Name: "Context", Kind: "opaque"},
		{Name: "Vec3", Kind: "composite"},
		{Name: "Callback", Kind: "fn_pointer"},
	}
	writeAll(t, s, g)

	read, err := s.ReadGeneration(context.Background(), "run")
	require.NoError(t, err)
	assert.Equal(t, g.Types, read.Types)
	assert.Equal(t, "include/run.h", read.OutputPath)
}

func TestReadGeneration_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadGeneration(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestLatestForInputs(t *testing.T) {
	s := createTestStore(t)
	writeAll(t, s,
		createTestGeneration("old", "lib", "cfg"),
		createTestGeneration("other", "lib", "cfg-2"),
		createTestGeneration("new", "lib", "cfg"),
	)

	g, ok, err := s.LatestForInputs(context.Background(), "lib", "cfg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", g.ID)

	_, ok, err = s.LatestForInputs(context.Background(), "lib", "none")
	require.NoError(t, err)
	assert.False(t, ok)
}
