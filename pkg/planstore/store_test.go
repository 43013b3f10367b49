package planstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheatday/planner/pkg/models"
)

func TestMemoryStoreAbsentIsNotAnError(t *testing.T) {
	store := NewMemoryStore()

	set, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, set)
}

func TestMemoryStoreRoundtrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	in := models.NewPlanSet(time.Now())
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.CurrentID, out.CurrentID)
	assert.Len(t, out.Plans, 1)
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := models.PlanSet{Plans: []models.Plan{{ID: "p1", Name: "first"}}}
	second := models.PlanSet{Plans: []models.Plan{{ID: "p2", Name: "second"}}}

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out.Plans, 1)
	assert.Equal(t, "second", out.Plans[0].Name)
}

func TestStorageErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := &StorageError{Op: "save", Err: cause}

	assert.Contains(t, err.Error(), "save")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)

	var storageErr *StorageError
	assert.ErrorAs(t, error(err), &storageErr)
}
