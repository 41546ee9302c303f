package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haruki/examquest/internal/models"
	"github.com/haruki/examquest/internal/repository"
)

// One key per persisted state slice. The names are carried over from the
// v1 storage layout so existing backups stay importable.
const (
	KeySavedData           = "examquest-v1"
	KeyRecentPatterns      = "examquest-patterns-v1"
	KeyRecentFirstQuestion = "examquest-first-question-v1"
	KeyRecentQuestionIDs   = "examquest-recent-questions-v1"
	KeyReportedReasons     = "examquest-reported-question-reasons-v1"
	KeyWeakQuestions       = "examquest-weak-questions-v1"
	KeyBookmarks           = "examquest-bookmark-questions-v1"
	KeyLearningTags        = "examquest-learning-tags-v1"
	KeyReviewPlan          = "examquest-review-plan-v1"
)

// Store is the typed layer over the durable key-value store. Every slice
// reads as its zero value until first written.
type Store struct {
	kv repository.StateStore
}

func New(kv repository.StateStore) *Store {
	return &Store{kv: kv}
}

func (s *Store) load(ctx context.Context, key string, out any) error {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SavedData returns the cumulative score state.
func (s *Store) SavedData(ctx context.Context) (models.SavedData, error) {
	var data models.SavedData
	if err := s.load(ctx, KeySavedData, &data); err != nil {
		return models.SavedData{}, err
	}
	if data.History == nil {
		data.History = []models.SessionRecord{}
	}
	return data, nil
}

func (s *Store) SetSavedData(ctx context.Context, data models.SavedData) error {
	return s.save(ctx, KeySavedData, data)
}

// RecentPatterns maps scope id to its recent draw signatures, newest first.
func (s *Store) RecentPatterns(ctx context.Context) (map[string][]string, error) {
	out := map[string][]string{}
	err := s.load(ctx, KeyRecentPatterns, &out)
	return out, err
}

func (s *Store) SetRecentPatterns(ctx context.Context, patterns map[string][]string) error {
	return s.save(ctx, KeyRecentPatterns, patterns)
}

// RecentFirstQuestions maps scope id to the opening question of the
// previous session drawn for that scope.
func (s *Store) RecentFirstQuestions(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	err := s.load(ctx, KeyRecentFirstQuestion, &out)
	return out, err
}

func (s *Store) SetRecentFirstQuestions(ctx context.Context, firsts map[string]int) error {
	return s.save(ctx, KeyRecentFirstQuestion, firsts)
}

// RecentQuestionIDs maps scope id to recently drawn question ids, oldest first.
func (s *Store) RecentQuestionIDs(ctx context.Context) (map[string][]int, error) {
	out := map[string][]int{}
	err := s.load(ctx, KeyRecentQuestionIDs, &out)
	return out, err
}

func (s *Store) SetRecentQuestionIDs(ctx context.Context, ids map[string][]int) error {
	return s.save(ctx, KeyRecentQuestionIDs, ids)
}

// Recency assembles the per-scope recency view consumed by the selection
// engine.
func (s *Store) Recency(ctx context.Context, scopeID string) (models.Recency, error) {
	patterns, err := s.RecentPatterns(ctx)
	if err != nil {
		return models.Recency{}, err
	}
	firsts, err := s.RecentFirstQuestions(ctx)
	if err != nil {
		return models.Recency{}, err
	}
	recentIDs, err := s.RecentQuestionIDs(ctx)
	if err != nil {
		return models.Recency{}, err
	}
	return models.Recency{
		PatternSignatures: patterns[scopeID],
		FirstQuestionID:   firsts[scopeID],
		QuestionIDs:       recentIDs[scopeID],
	}, nil
}

// SetRecency writes one scope's recency back into the per-scope maps.
func (s *Store) SetRecency(ctx context.Context, scopeID string, rec models.Recency) error {
	patterns, err := s.RecentPatterns(ctx)
	if err != nil {
		return err
	}
	patterns[scopeID] = rec.PatternSignatures
	if err := s.SetRecentPatterns(ctx, patterns); err != nil {
		return err
	}

	firsts, err := s.RecentFirstQuestions(ctx)
	if err != nil {
		return err
	}
	firsts[scopeID] = rec.FirstQuestionID
	if err := s.SetRecentFirstQuestions(ctx, firsts); err != nil {
		return err
	}

	recentIDs, err := s.RecentQuestionIDs(ctx)
	if err != nil {
		return err
	}
	recentIDs[scopeID] = rec.QuestionIDs
	return s.SetRecentQuestionIDs(ctx, recentIDs)
}

// ReportedReasons maps question id to the active report reason.
func (s *Store) ReportedReasons(ctx context.Context) (map[int]string, error) {
	out := map[int]string{}
	err := s.load(ctx, KeyReportedReasons, &out)
	return out, err
}

func (s *Store) SetReportedReasons(ctx context.Context, reasons map[int]string) error {
	return s.save(ctx, KeyReportedReasons, reasons)
}

// WeakQuestionIDs returns the ids answered wrong (or tagged as not known)
// that have not been cleared since.
func (s *Store) WeakQuestionIDs(ctx context.Context) ([]int, error) {
	out := []int{}
	err := s.load(ctx, KeyWeakQuestions, &out)
	return out, err
}

func (s *Store) SetWeakQuestionIDs(ctx context.Context, ids []int) error {
	return s.save(ctx, KeyWeakQuestions, ids)
}

// BookmarkQuestionIDs returns the bookmarked question ids.
func (s *Store) BookmarkQuestionIDs(ctx context.Context) ([]int, error) {
	out := []int{}
	err := s.load(ctx, KeyBookmarks, &out)
	return out, err
}

func (s *Store) SetBookmarkQuestionIDs(ctx context.Context, ids []int) error {
	return s.save(ctx, KeyBookmarks, ids)
}

// LearningTags maps question id to its self-assessment tag.
func (s *Store) LearningTags(ctx context.Context) (map[int]models.LearningTag, error) {
	out := map[int]models.LearningTag{}
	err := s.load(ctx, KeyLearningTags, &out)
	return out, err
}

func (s *Store) SetLearningTags(ctx context.Context, tags map[int]models.LearningTag) error {
	return s.save(ctx, KeyLearningTags, tags)
}

// ReviewPlan maps question id to its next spaced-review slot.
func (s *Store) ReviewPlan(ctx context.Context) (map[int]models.ReviewPlanEntry, error) {
	out := map[int]models.ReviewPlanEntry{}
	err := s.load(ctx, KeyReviewPlan, &out)
	return out, err
}

func (s *Store) SetReviewPlan(ctx context.Context, plan map[int]models.ReviewPlanEntry) error {
	return s.save(ctx, KeyReviewPlan, plan)
}

// ClearAll wipes every persisted slice back to its zero value.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.kv.Clear(ctx)
}
