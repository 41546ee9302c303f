package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruki/examquest/internal/models"
	"github.com/haruki/examquest/internal/repository/sqlite"
	"github.com/haruki/examquest/internal/state"
	"github.com/haruki/examquest/internal/testutil"
)

func newStore(t *testing.T) *state.Store {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })
	return state.New(sqlite.NewStateStore(db))
}

func TestSavedDataZeroValue(t *testing.T) {
	store := newStore(t)

	data, err := store.SavedData(context.Background())
	require.NoError(t, err)

	assert.Zero(t, data.TotalScore)
	assert.Zero(t, data.TotalAnswered)
	assert.Zero(t, data.TotalCorrect)
	assert.NotNil(t, data.History)
	assert.Empty(t, data.History)
}

func TestSavedDataRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	in := models.SavedData{
		TotalScore:    120,
		TotalAnswered: 14,
		TotalCorrect:  9,
		History: []models.SessionRecord{
			{Date: "2026-08-28T10:00:00Z", Category: "network", Score: 90, Correct: 6, Total: 6, Streak: 6},
		},
	}
	require.NoError(t, store.SetSavedData(ctx, in))

	out, err := store.SavedData(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRecencyRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	rec := models.Recency{
		PatternSignatures: []string{"1|2|3", "2|3|4"},
		FirstQuestionID:   2,
		QuestionIDs:       []int{1, 2, 3, 4},
	}
	require.NoError(t, store.SetRecency(ctx, "network", rec))

	got, err := store.Recency(ctx, "network")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// Other scopes stay untouched.
	other, err := store.Recency(ctx, "database")
	require.NoError(t, err)
	assert.Empty(t, other.PatternSignatures)
	assert.Zero(t, other.FirstQuestionID)
}

func TestReviewPlanIntKeys(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	due := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	plan := map[int]models.ReviewPlanEntry{
		42: {NextReviewAt: due, IntervalDays: 1},
	}
	require.NoError(t, store.SetReviewPlan(ctx, plan))

	got, err := store.ReviewPlan(ctx)
	require.NoError(t, err)
	require.Contains(t, got, 42)
	assert.Equal(t, 1, got[42].IntervalDays)
	assert.True(t, got[42].NextReviewAt.Equal(due))
}

func TestClearAll(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetWeakQuestionIDs(ctx, []int{1, 2}))
	require.NoError(t, store.SetBookmarkQuestionIDs(ctx, []int{3}))
	require.NoError(t, store.ClearAll(ctx))

	weak, err := store.WeakQuestionIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, weak)

	bookmarks, err := store.BookmarkQuestionIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)
}
