package backup_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruki/examquest/internal/backup"
	"github.com/haruki/examquest/internal/models"
	"github.com/haruki/examquest/internal/repository/sqlite"
	"github.com/haruki/examquest/internal/state"
	"github.com/haruki/examquest/internal/testutil"
)

func newManager(t *testing.T) (*backup.Manager, *state.Store) {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })
	states := state.New(sqlite.NewStateStore(db))
	return backup.NewManager(states), states
}

func seedState(t *testing.T, states *state.Store) {
	ctx := context.Background()
	require.NoError(t, states.SetSavedData(ctx, models.SavedData{
		TotalScore:    90,
		TotalAnswered: 6,
		TotalCorrect:  6,
		History: []models.SessionRecord{
			{Date: "2026-08-28T10:00:00Z", Category: "network", Score: 90, Correct: 6, Total: 6, Streak: 6},
		},
	}))
	require.NoError(t, states.SetRecency(ctx, "network", models.Recency{
		PatternSignatures: []string{"1|2|3|4|5|6"},
		FirstQuestionID:   3,
		QuestionIDs:       []int{1, 2, 3, 4, 5, 6},
	}))
	require.NoError(t, states.SetWeakQuestionIDs(ctx, []int{2, 5}))
	require.NoError(t, states.SetBookmarkQuestionIDs(ctx, []int{4}))
	require.NoError(t, states.SetReportedReasons(ctx, map[int]string{6: "ambiguous wording"}))
	require.NoError(t, states.SetLearningTags(ctx, map[int]models.LearningTag{2: models.TagUnknown}))
	require.NoError(t, states.SetReviewPlan(ctx, map[int]models.ReviewPlanEntry{
		2: {NextReviewAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC), IntervalDays: 1},
	}))
}

func TestExportImportRoundTrip(t *testing.T) {
	manager, states := newManager(t)
	ctx := context.Background()
	seedState(t, states)

	snapshot, err := manager.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, backup.Version, snapshot.Version)
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)

	// Wipe everything, then restore from the snapshot.
	require.NoError(t, manager.ResetAll(ctx))
	result, err := manager.Import(ctx, raw)
	require.NoError(t, err)
	require.True(t, result.OK, result.Message)

	restored, err := manager.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Data, restored.Data)
}

func TestImportRejectsWrongVersion(t *testing.T) {
	manager, states := newManager(t)
	ctx := context.Background()
	seedState(t, states)

	before, err := manager.Export(ctx)
	require.NoError(t, err)

	result, err := manager.Import(ctx, []byte(`{"version":2,"exportedAt":"2026-08-28T00:00:00Z","data":{}}`))
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Message)

	// Rejection must leave state untouched.
	after, err := manager.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Data, after.Data)
}

func TestImportRejectsMissingData(t *testing.T) {
	manager, _ := newManager(t)

	result, err := manager.Import(context.Background(), []byte(`{"version":1,"exportedAt":"2026-08-28T00:00:00Z"}`))
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestImportRejectsGarbage(t *testing.T) {
	manager, _ := newManager(t)

	result, err := manager.Import(context.Background(), []byte(`not json at all`))
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestImportReplacesWholesale(t *testing.T) {
	manager, states := newManager(t)
	ctx := context.Background()
	seedState(t, states)

	// Snapshot with only a bookmark: everything else must come back empty.
	result, err := manager.Import(ctx, []byte(`{"version":1,"exportedAt":"2026-08-28T00:00:00Z","data":{"bookmarkQuestionIds":[9]}}`))
	require.NoError(t, err)
	require.True(t, result.OK)

	bookmarks, err := states.BookmarkQuestionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{9}, bookmarks)

	weak, err := states.WeakQuestionIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, weak)

	data, err := states.SavedData(ctx)
	require.NoError(t, err)
	assert.Zero(t, data.TotalScore)
}

func TestResetAll(t *testing.T) {
	manager, states := newManager(t)
	ctx := context.Background()
	seedState(t, states)

	require.NoError(t, manager.ResetAll(ctx))

	data, err := states.SavedData(ctx)
	require.NoError(t, err)
	assert.Zero(t, data.TotalAnswered)
	assert.Empty(t, data.History)

	weak, err := states.WeakQuestionIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, weak)
}
