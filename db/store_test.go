package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "structures.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	run, err := store.NewRun(ctx, []string{"max_atom_pair_dist", "com_distance_sum"}, "batch = 2")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	got, err := store.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Descriptors, got.Descriptors)
	assert.Equal(t, "batch = 2", got.Config)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = store.Run(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.NewRun(ctx, nil, "")
	require.NoError(t, err)
	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStructures(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	run, err := store.NewRun(ctx, []string{"max_atom_pair_dist"}, "")
	require.NoError(t, err)

	energy := -76.4
	records := []Record{
		{
			Frame:       0,
			Numbers:     []int{8, 1, 1},
			Positions:   []float64{0, 0, 0, 0.757, 0.586, 0, -0.757, 0.586, 0},
			Energy:      &energy,
			Comment:     "water",
			Accepted:    true,
			Descriptors: map[string]float64{"max_atom_pair_dist": 1.514, "com_distance_sum": 0},
		},
		{
			Frame:       1,
			Numbers:     []int{8, 1, 1},
			Positions:   []float64{0, 0, 0, 7.57, 5.86, 0, -7.57, 5.86, 0},
			Accepted:    false,
			Descriptors: map[string]float64{"max_atom_pair_dist": 15.14},
		},
		{
			Frame:     2,
			Numbers:   []int{1},
			Positions: []float64{1, 2, 3},
			Accepted:  true,
		},
	}
	for _, rec := range records {
		require.NoError(t, store.WriteStructure(ctx, run.ID, rec))
	}

	all, err := store.Structures(ctx, run.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, records[0].Numbers, all[0].Numbers)
	assert.Equal(t, records[0].Positions, all[0].Positions)
	require.NotNil(t, all[0].Energy)
	assert.Equal(t, energy, *all[0].Energy)
	assert.Equal(t, "water", all[0].Comment)
	assert.Equal(t, records[0].Descriptors, all[0].Descriptors)
	assert.Nil(t, all[1].Energy)
	assert.False(t, all[1].Accepted)
	assert.Empty(t, all[2].Descriptors)

	accepted, err := store.Structures(ctx, run.ID, true)
	require.NoError(t, err)
	require.Len(t, accepted, 2)
	assert.Equal(t, 0, accepted[0].Frame)
	assert.Equal(t, 2, accepted[1].Frame)

	total, acc, err := store.Count(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, acc)
}

func TestWriteStructureErrors(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	run, err := store.NewRun(ctx, nil, "")
	require.NoError(t, err)

	err = store.WriteStructure(ctx, run.ID, Record{Numbers: []int{1, 1}, Positions: []float64{0, 0, 0}})
	assert.Error(t, err)

	rec := Record{Frame: 3, Numbers: []int{1}, Positions: []float64{0, 0, 0}}
	require.NoError(t, store.WriteStructure(ctx, run.ID, rec))
	assert.Error(t, store.WriteStructure(ctx, run.ID, rec), "a frame can only be stored once per run")
	assert.Error(t, store.WriteStructure(ctx, "missing-run", rec), "the run must exist")

	total, _, err := store.Count(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "s.db")
	store, err := Open(path)
	require.NoError(t, err)
	run, err := store.NewRun(ctx, nil, "")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, path, store.Path())
	_, err = store.Run(ctx, run.ID)
	assert.NoError(t, err, "migrations should not be applied twice")
}

func TestFloatBlob(t *testing.T) {
	f := []float64{0, -1.5, 1e-300, 3.141592653589793}
	assert.Equal(t, f, bytesToFloat64Slice(float64SliceToBytes(f)))
}
