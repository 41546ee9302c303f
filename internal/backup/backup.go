package backup

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/haruki/examquest/internal/logger"
	"github.com/haruki/examquest/internal/models"
	"github.com/haruki/examquest/internal/state"
)

// Version is the only snapshot version this build can import.
const Version = 1

// Snapshot is the versioned export of every persisted state slice.
type Snapshot struct {
	Version    int           `json:"version"    validate:"required,eq=1"`
	ExportedAt string        `json:"exportedAt"`
	Data       *SnapshotData `json:"data"       validate:"required"`
}

// SnapshotData mirrors the persisted slices one to one. Field names are the
// v1 backup format and must not change.
type SnapshotData struct {
	SavedData                     models.SavedData               `json:"savedData"`
	RecentPatternsByCategory      map[string][]string            `json:"recentPatternsByCategory"`
	RecentFirstQuestionByCategory map[string]int                 `json:"recentFirstQuestionByCategory"`
	RecentQuestionIDsByScope      map[string][]int               `json:"recentQuestionIdsByScope"`
	ReportedQuestionReasons       map[int]string                 `json:"reportedQuestionReasons"`
	WeakQuestionIDs               []int                          `json:"weakQuestionIds"`
	BookmarkQuestionIDs           []int                          `json:"bookmarkQuestionIds"`
	LearningTagByQuestionID       map[int]models.LearningTag     `json:"learningTagByQuestionId"`
	ReviewPlanByQuestionID        map[int]models.ReviewPlanEntry `json:"reviewPlanByQuestionId"`
}

// ImportResult reports the outcome of an import to the caller. A rejected
// import is not an error; state is simply left untouched.
type ImportResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Manager exports, imports, and resets the whole learning state.
type Manager struct {
	mu       sync.Mutex
	states   *state.Store
	validate *validator.Validate
	now      func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock sets the time source used for export timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(states *state.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		states:   states,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Export serializes all persisted state into one snapshot.
func (m *Manager) Export(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.collect(ctx)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("learning data exported")
	return &Snapshot{
		Version:    Version,
		ExportedAt: m.now().UTC().Format(time.RFC3339),
		Data:       data,
	}, nil
}

func (m *Manager) collect(ctx context.Context) (*SnapshotData, error) {
	savedData, err := m.states.SavedData(ctx)
	if err != nil {
		return nil, err
	}
	patterns, err := m.states.RecentPatterns(ctx)
	if err != nil {
		return nil, err
	}
	firsts, err := m.states.RecentFirstQuestions(ctx)
	if err != nil {
		return nil, err
	}
	recentIDs, err := m.states.RecentQuestionIDs(ctx)
	if err != nil {
		return nil, err
	}
	reasons, err := m.states.ReportedReasons(ctx)
	if err != nil {
		return nil, err
	}
	weak, err := m.states.WeakQuestionIDs(ctx)
	if err != nil {
		return nil, err
	}
	bookmarks, err := m.states.BookmarkQuestionIDs(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := m.states.LearningTags(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := m.states.ReviewPlan(ctx)
	if err != nil {
		return nil, err
	}
	return &SnapshotData{
		SavedData:                     savedData,
		RecentPatternsByCategory:      patterns,
		RecentFirstQuestionByCategory: firsts,
		RecentQuestionIDsByScope:      recentIDs,
		ReportedQuestionReasons:       reasons,
		WeakQuestionIDs:               weak,
		BookmarkQuestionIDs:           bookmarks,
		LearningTagByQuestionID:       tags,
		ReviewPlanByQuestionID:        plan,
	}, nil
}

// Import replaces all persisted state with the snapshot payload. Validation
// happens before any write, so a rejected import leaves state untouched.
// The returned error is reserved for storage failures.
func (m *Manager) Import(ctx context.Context, raw []byte) (ImportResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log := logger.FromContext(ctx)

	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		log.Warn("backup import rejected, unparseable payload: %v", err)
		return ImportResult{OK: false, Message: "could not parse the backup file as JSON"}, nil
	}

	if err := m.validate.Struct(snapshot); err != nil {
		log.Warn("backup import rejected, invalid snapshot: %v", err)
		return ImportResult{OK: false, Message: "unsupported backup version or missing data"}, nil
	}

	if err := m.apply(ctx, snapshot.Data); err != nil {
		return ImportResult{}, err
	}

	log.Info("learning data imported from backup exported at %s", snapshot.ExportedAt)
	return ImportResult{OK: true, Message: "learning data restored"}, nil
}

func (m *Manager) apply(ctx context.Context, data *SnapshotData) error {
	if err := m.states.SetSavedData(ctx, normalizeSavedData(data.SavedData)); err != nil {
		return err
	}
	if err := m.states.SetRecentPatterns(ctx, orMap(data.RecentPatternsByCategory)); err != nil {
		return err
	}
	if err := m.states.SetRecentFirstQuestions(ctx, orMap(data.RecentFirstQuestionByCategory)); err != nil {
		return err
	}
	if err := m.states.SetRecentQuestionIDs(ctx, orMap(data.RecentQuestionIDsByScope)); err != nil {
		return err
	}
	if err := m.states.SetReportedReasons(ctx, orMap(data.ReportedQuestionReasons)); err != nil {
		return err
	}
	if err := m.states.SetWeakQuestionIDs(ctx, orSlice(data.WeakQuestionIDs)); err != nil {
		return err
	}
	if err := m.states.SetBookmarkQuestionIDs(ctx, orSlice(data.BookmarkQuestionIDs)); err != nil {
		return err
	}
	if err := m.states.SetLearningTags(ctx, orMap(data.LearningTagByQuestionID)); err != nil {
		return err
	}
	return m.states.SetReviewPlan(ctx, orMap(data.ReviewPlanByQuestionID))
}

// ResetAll clears every persisted slice back to its initial empty state.
func (m *Manager) ResetAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.states.ClearAll(ctx); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("all learning data reset")
	return nil
}

func normalizeSavedData(data models.SavedData) models.SavedData {
	if data.History == nil {
		data.History = []models.SessionRecord{}
	}
	return data
}

func orMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}

func orSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
