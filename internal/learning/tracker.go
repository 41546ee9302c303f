package learning

import (
	"context"
	"sync"
	"time"

	"github.com/haruki/examquest/internal/errors"
	"github.com/haruki/examquest/internal/logger"
	"github.com/haruki/examquest/internal/models"
	"github.com/haruki/examquest/internal/state"
)

// QuestionSource supplies the union of every static pool, used to resolve
// drill pools from persisted question ids.
type QuestionSource interface {
	AllQuestions() []models.Question
}

// Tracker maintains per-question learning state independent of any single
// session: weak and bookmarked questions, report reasons, self-assessment
// tags and the spaced-review plan.
type Tracker struct {
	mu     sync.Mutex
	states *state.Store
	source QuestionSource
	now    func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock sets the time source, for deterministic review plans in tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a Tracker over the given persisted state.
func NewTracker(states *state.Store, source QuestionSource, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		states: states,
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ReviewIntervalDays is the fixed spaced-review policy per tag. Careless
// mistakes get the longest interval: they do not indicate a knowledge gap.
func ReviewIntervalDays(tag models.LearningTag) int {
	switch tag {
	case models.TagUnknown:
		return 1
	case models.TagKnewButMissed:
		return 2
	case models.TagPartial:
		return 3
	default:
		return 7
	}
}

// ToggleBookmark adds or removes the question from the bookmark set and
// reports whether it is bookmarked afterwards.
func (t *Tracker) ToggleBookmark(ctx context.Context, questionID int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	log := logger.FromContext(ctx)

	ids, err := t.states.BookmarkQuestionIDs(ctx)
	if err != nil {
		return false, err
	}

	next := make([]int, 0, len(ids)+1)
	removed := false
	for _, id := range ids {
		if id == questionID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, questionID)
	}

	if err := t.states.SetBookmarkQuestionIDs(ctx, next); err != nil {
		return false, err
	}
	log.Debug("bookmark toggled: question_id=%d, bookmarked=%t", questionID, !removed)
	return !removed, nil
}

// SetReportReason records a report reason for the question, replacing any
// previous one.
func (t *Tracker) SetReportReason(ctx context.Context, questionID int, reason string) error {
	if reason == "" {
		return errors.NewValidationError("reason", "must not be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	reasons, err := t.states.ReportedReasons(ctx)
	if err != nil {
		return err
	}
	reasons[questionID] = reason
	if err := t.states.SetReportedReasons(ctx, reasons); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("question reported: question_id=%d", questionID)
	return nil
}

// ClearReport removes the active report reason for the question, if any.
func (t *Tracker) ClearReport(ctx context.Context, questionID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	reasons, err := t.states.ReportedReasons(ctx)
	if err != nil {
		return err
	}
	delete(reasons, questionID)
	return t.states.SetReportedReasons(ctx, reasons)
}

// SetLearningTag records the self-assessment tag, schedules the next spaced
// review, and updates the weak set: unknown/partial/knew-but-missed mark the
// question weak, careless clears it.
func (t *Tracker) SetLearningTag(ctx context.Context, questionID int, tag models.LearningTag) error {
	if !tag.Valid() {
		return errors.NewValidationError("tag", "must be one of unknown, partial, knew-but-missed, careless")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	log := logger.FromContext(ctx)

	tags, err := t.states.LearningTags(ctx)
	if err != nil {
		return err
	}
	tags[questionID] = tag
	if err := t.states.SetLearningTags(ctx, tags); err != nil {
		return err
	}

	intervalDays := ReviewIntervalDays(tag)
	plan, err := t.states.ReviewPlan(ctx)
	if err != nil {
		return err
	}
	plan[questionID] = models.ReviewPlanEntry{
		NextReviewAt: t.now().Add(time.Duration(intervalDays) * 24 * time.Hour),
		IntervalDays: intervalDays,
	}
	if err := t.states.SetReviewPlan(ctx, plan); err != nil {
		return err
	}

	if tag == models.TagCareless {
		if err := t.removeWeakLocked(ctx, questionID); err != nil {
			return err
		}
	} else {
		if err := t.addWeakLocked(ctx, questionID); err != nil {
			return err
		}
	}

	log.Debug("learning tag set: question_id=%d, tag=%s, interval_days=%d", questionID, tag, intervalDays)
	return nil
}

// AddWeak inserts the question into the weak set, deduplicated.
func (t *Tracker) AddWeak(ctx context.Context, questionID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addWeakLocked(ctx, questionID)
}

// RemoveWeak drops the question from the weak set.
func (t *Tracker) RemoveWeak(ctx context.Context, questionID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeWeakLocked(ctx, questionID)
}

func (t *Tracker) addWeakLocked(ctx context.Context, questionID int) error {
	ids, err := t.states.WeakQuestionIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == questionID {
			return nil
		}
	}
	return t.states.SetWeakQuestionIDs(ctx, append(ids, questionID))
}

func (t *Tracker) removeWeakLocked(ctx context.Context, questionID int) error {
	ids, err := t.states.WeakQuestionIDs(ctx)
	if err != nil {
		return err
	}
	next := make([]int, 0, len(ids))
	for _, id := range ids {
		if id != questionID {
			next = append(next, id)
		}
	}
	return t.states.SetWeakQuestionIDs(ctx, next)
}

// IsBookmarked reports whether the question is in the bookmark set.
func (t *Tracker) IsBookmarked(ctx context.Context, questionID int) (bool, error) {
	ids, err := t.states.BookmarkQuestionIDs(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == questionID {
			return true, nil
		}
	}
	return false, nil
}

// TagFor returns the question's learning tag, or "" when untagged.
func (t *Tracker) TagFor(ctx context.Context, questionID int) (models.LearningTag, error) {
	tags, err := t.states.LearningTags(ctx)
	if err != nil {
		return "", err
	}
	return tags[questionID], nil
}

// WeakPool resolves the weak set against the full question catalog.
func (t *Tracker) WeakPool(ctx context.Context) ([]models.Question, error) {
	ids, err := t.states.WeakQuestionIDs(ctx)
	if err != nil {
		return nil, err
	}
	return t.filterByIDs(ids), nil
}

// BookmarkPool resolves the bookmark set against the full question catalog.
func (t *Tracker) BookmarkPool(ctx context.Context) ([]models.Question, error) {
	ids, err := t.states.BookmarkQuestionIDs(ctx)
	if err != nil {
		return nil, err
	}
	return t.filterByIDs(ids), nil
}

// TagPool resolves every question carrying the given tag.
func (t *Tracker) TagPool(ctx context.Context, tag models.LearningTag) ([]models.Question, error) {
	tags, err := t.states.LearningTags(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]models.Question, 0)
	for _, q := range t.source.AllQuestions() {
		if tags[q.ID] == tag {
			pool = append(pool, q)
		}
	}
	return pool, nil
}

// DueReviewPool resolves every question whose next review slot has passed.
func (t *Tracker) DueReviewPool(ctx context.Context) ([]models.Question, error) {
	plan, err := t.states.ReviewPlan(ctx)
	if err != nil {
		return nil, err
	}
	now := t.now()
	due := make([]int, 0, len(plan))
	for id, entry := range plan {
		if !entry.NextReviewAt.After(now) {
			due = append(due, id)
		}
	}
	return t.filterByIDs(due), nil
}

// TagCounts returns how many questions carry each tag.
func (t *Tracker) TagCounts(ctx context.Context) (map[models.LearningTag]int, error) {
	tags, err := t.states.LearningTags(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[models.LearningTag]int{
		models.TagUnknown:       0,
		models.TagPartial:       0,
		models.TagKnewButMissed: 0,
		models.TagCareless:      0,
	}
	for _, tag := range tags {
		counts[tag]++
	}
	return counts, nil
}

// DueReviewCount returns how many questions are currently due for review.
func (t *Tracker) DueReviewCount(ctx context.Context) (int, error) {
	plan, err := t.states.ReviewPlan(ctx)
	if err != nil {
		return 0, err
	}
	now := t.now()
	count := 0
	for _, entry := range plan {
		if !entry.NextReviewAt.After(now) {
			count++
		}
	}
	return count, nil
}

// filterByIDs keeps catalog order, which matters for stable drill pools.
func (t *Tracker) filterByIDs(ids []int) []models.Question {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	pool := make([]models.Question, 0, len(ids))
	for _, q := range t.source.AllQuestions() {
		if want[q.ID] {
			pool = append(pool, q)
		}
	}
	return pool
}
