package stats

import (
	"context"
	"math"
	"sync"

	"github.com/haruki/examquest/internal/logger"
	"github.com/haruki/examquest/internal/models"
	"github.com/haruki/examquest/internal/state"
)

const (
	// MaxHistoryEntries bounds the persisted session history.
	MaxHistoryEntries = 20

	// PointsPerLevel is how many cumulative points advance the user a level.
	PointsPerLevel = 50
)

// Aggregator maintains the cumulative score state across sessions.
type Aggregator struct {
	mu     sync.Mutex
	states *state.Store
}

func NewAggregator(states *state.Store) *Aggregator {
	return &Aggregator{states: states}
}

// RecordAnswer folds one answer outcome into the cumulative totals. Points
// are only awarded for correct answers.
func (a *Aggregator) RecordAnswer(ctx context.Context, correct bool, points int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := a.states.SavedData(ctx)
	if err != nil {
		return err
	}

	data.TotalAnswered++
	if correct {
		data.TotalCorrect++
		data.TotalScore += points
	}
	return a.states.SetSavedData(ctx, data)
}

// AppendHistory prepends one finished session, keeping the newest
// MaxHistoryEntries records.
func (a *Aggregator) AppendHistory(ctx context.Context, record models.SessionRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := a.states.SavedData(ctx)
	if err != nil {
		return err
	}

	history := make([]models.SessionRecord, 0, len(data.History)+1)
	history = append(history, record)
	history = append(history, data.History...)
	if len(history) > MaxHistoryEntries {
		history = history[:MaxHistoryEntries]
	}
	data.History = history

	if err := a.states.SetSavedData(ctx, data); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("session recorded: category=%s, score=%d, correct=%d/%d", record.Category, record.Score, record.Correct, record.Total)
	return nil
}

// Snapshot returns the current cumulative state.
func (a *Aggregator) Snapshot(ctx context.Context) (models.SavedData, error) {
	return a.states.SavedData(ctx)
}

// Level derives the user level from the cumulative score.
func Level(totalScore int) int {
	return totalScore/PointsPerLevel + 1
}

// SessionAccuracy is the session's correct percentage, rounded; 0 for an
// empty session.
func SessionAccuracy(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
