package learning_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruki/examquest/internal/learning"
	"github.com/haruki/examquest/internal/models"
	"github.com/haruki/examquest/internal/repository/sqlite"
	"github.com/haruki/examquest/internal/state"
	"github.com/haruki/examquest/internal/testutil"
)

type staticSource struct {
	questions []models.Question
}

func (s staticSource) AllQuestions() []models.Question {
	return s.questions
}

func newTracker(t *testing.T, opts ...learning.TrackerOption) (*learning.Tracker, *state.Store) {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })
	states := state.New(sqlite.NewStateStore(db))
	source := staticSource{questions: testutil.Questions(1, 50)}
	return learning.NewTracker(states, source, opts...), states
}

func TestToggleBookmark(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := context.Background()

	bookmarked, err := tracker.ToggleBookmark(ctx, 42)
	require.NoError(t, err)
	assert.True(t, bookmarked)

	pool, err := tracker.BookmarkPool(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, 42, pool[0].ID)

	bookmarked, err = tracker.ToggleBookmark(ctx, 42)
	require.NoError(t, err)
	assert.False(t, bookmarked)

	pool, err = tracker.BookmarkPool(ctx)
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestReportReasonLastWriteWins(t *testing.T) {
	tracker, states := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.SetReportReason(ctx, 7, "typo in answers"))
	require.NoError(t, tracker.SetReportReason(ctx, 7, "wrong answer marked correct"))

	reasons, err := states.ReportedReasons(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wrong answer marked correct", reasons[7])

	require.NoError(t, tracker.ClearReport(ctx, 7))
	reasons, err = states.ReportedReasons(ctx)
	require.NoError(t, err)
	assert.NotContains(t, reasons, 7)
}

func TestReportReasonEmptyRejected(t *testing.T) {
	tracker, _ := newTracker(t)

	err := tracker.SetReportReason(context.Background(), 7, "")
	assert.Error(t, err)
}

func TestSetLearningTagSchedulesReview(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	tracker, states := newTracker(t, learning.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	tests := []struct {
		tag          models.LearningTag
		intervalDays int
	}{
		{models.TagUnknown, 1},
		{models.TagKnewButMissed, 2},
		{models.TagPartial, 3},
		{models.TagCareless, 7},
	}

	for i, tt := range tests {
		questionID := i + 1
		require.NoError(t, tracker.SetLearningTag(ctx, questionID, tt.tag))

		plan, err := states.ReviewPlan(ctx)
		require.NoError(t, err)
		entry := plan[questionID]
		assert.Equal(t, tt.intervalDays, entry.IntervalDays, "tag %s", tt.tag)
		assert.WithinDuration(t, now.Add(time.Duration(tt.intervalDays)*24*time.Hour), entry.NextReviewAt, time.Second, "tag %s", tt.tag)
	}
}

func TestSetLearningTagWeakSetSideEffects(t *testing.T) {
	tracker, states := newTracker(t)
	ctx := context.Background()

	for _, tag := range []models.LearningTag{models.TagUnknown, models.TagPartial, models.TagKnewButMissed} {
		require.NoError(t, tracker.SetLearningTag(ctx, 10, tag))
		weak, err := states.WeakQuestionIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, weak, 10, "tag %s must mark the question weak", tag)
	}

	require.NoError(t, tracker.SetLearningTag(ctx, 10, models.TagCareless))
	weak, err := states.WeakQuestionIDs(ctx)
	require.NoError(t, err)
	assert.NotContains(t, weak, 10, "careless must clear the weak mark")

	// Careless on a question that was never weak stays a no-op.
	require.NoError(t, tracker.SetLearningTag(ctx, 11, models.TagCareless))
	weak, err = states.WeakQuestionIDs(ctx)
	require.NoError(t, err)
	assert.NotContains(t, weak, 11)
}

func TestSetLearningTagInvalid(t *testing.T) {
	tracker, _ := newTracker(t)

	err := tracker.SetLearningTag(context.Background(), 1, models.LearningTag("guessed"))
	assert.Error(t, err)
}

func TestWeakSetDedup(t *testing.T) {
	tracker, states := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.AddWeak(ctx, 5))
	require.NoError(t, tracker.AddWeak(ctx, 5))

	weak, err := states.WeakQuestionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, weak)

	require.NoError(t, tracker.RemoveWeak(ctx, 5))
	weak, err = states.WeakQuestionIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, weak)
}

func TestTagPool(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.SetLearningTag(ctx, 3, models.TagUnknown))
	require.NoError(t, tracker.SetLearningTag(ctx, 8, models.TagUnknown))
	require.NoError(t, tracker.SetLearningTag(ctx, 12, models.TagPartial))

	pool, err := tracker.TagPool(ctx, models.TagUnknown)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, 3, pool[0].ID)
	assert.Equal(t, 8, pool[1].ID)
}

func TestDueReviewPool(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	clock := &now
	tracker, _ := newTracker(t, learning.WithClock(func() time.Time { return *clock }))
	ctx := context.Background()

	require.NoError(t, tracker.SetLearningTag(ctx, 3, models.TagUnknown))       // due in 1 day
	require.NoError(t, tracker.SetLearningTag(ctx, 8, models.TagCareless))      // due in 7 days
	require.NoError(t, tracker.SetLearningTag(ctx, 12, models.TagKnewButMissed)) // due in 2 days

	pool, err := tracker.DueReviewPool(ctx)
	require.NoError(t, err)
	assert.Empty(t, pool, "nothing due immediately after tagging")

	later := now.Add(48 * time.Hour)
	clock = &later

	pool, err = tracker.DueReviewPool(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, 3, pool[0].ID)
	assert.Equal(t, 12, pool[1].ID)

	count, err := tracker.DueReviewCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTagCounts(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.SetLearningTag(ctx, 1, models.TagUnknown))
	require.NoError(t, tracker.SetLearningTag(ctx, 2, models.TagUnknown))
	require.NoError(t, tracker.SetLearningTag(ctx, 3, models.TagCareless))

	counts, err := tracker.TagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.TagUnknown])
	assert.Equal(t, 1, counts[models.TagCareless])
	assert.Equal(t, 0, counts[models.TagPartial])
}
