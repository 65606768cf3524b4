package outcomes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/crossroads/models"
)

func ptrInt(v int64) *int64    { return &v }
func ptrStr(v string) *string { return &v }

func sampleGraph() []models.Outcome {
	return []models.Outcome{
		{
			ID:            1,
			Title:         "The Crossroads",
			Decision1ID:   ptrInt(2),
			Decision2ID:   ptrInt(3),
			Decision1Text: ptrStr("Take the forest path"),
			Decision2Text: ptrStr("Follow the river"),
			Duration:      45,
		},
		{ID: 2, Title: "The Forest", Decision1ID: ptrInt(1), Decision1Text: ptrStr("Turn back"), Duration: 30},
		{ID: 3, Title: "The River", Duration: 0},
	}
}

// runStoreContract checks behavior every Store backend must share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.GetCurrentOutcome(ctx)
	assert.True(t, errors.Is(err, ErrNotFound), "unset pointer should be not found, got %v", err)

	for _, o := range sampleGraph() {
		require.NoError(t, store.PutOutcome(ctx, o))
	}

	got, err := store.GetOutcome(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sampleGraph()[0], got)

	leaf, err := store.GetOutcome(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, leaf.Decision1ID)
	assert.Nil(t, leaf.Decision1Text)

	_, err = store.GetOutcome(ctx, 99)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.SetCurrentOutcome(ctx, 2))
	current, err := store.GetCurrentOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.ID)

	err = store.SetCurrentOutcome(ctx, 99)
	assert.True(t, errors.Is(err, ErrNotFound))
	current, err = store.GetCurrentOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.ID, "failed set must not move the pointer")

	updated := sampleGraph()[2]
	updated.Title = "The Dry Riverbed"
	require.NoError(t, store.PutOutcome(ctx, updated))

	list, err := store.ListOutcomes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "The Dry Riverbed", list[2].Title)

	bad := models.Outcome{ID: 4, Title: "Broken", Decision1ID: ptrInt(1)}
	err = store.PutOutcome(ctx, bad)
	assert.True(t, errors.Is(err, models.ErrInvalidOutcome))
}
