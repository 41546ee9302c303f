package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/haruki/examquest/internal/errors"
	"github.com/haruki/examquest/internal/learning"
	"github.com/haruki/examquest/internal/logger"
	"github.com/haruki/examquest/internal/models"
	"github.com/haruki/examquest/internal/selection"
	"github.com/haruki/examquest/internal/state"
	"github.com/haruki/examquest/internal/stats"
)

// Synthetic scope ids for sessions not backed by a static pool.
const (
	ScopeMockAll       = "mock-all"
	ScopeWeakDrill     = "weak-drill"
	ScopeBookmarkDrill = "bookmark-drill"
	ScopeDueReview     = "due-review"

	tagScopePrefix = "tag-"
)

// pastScopePrefix marks exam-set sessions in the history.
const pastScopePrefix = "past:"

// Catalog is the slice of the question catalog the machine draws from.
type Catalog interface {
	CategoryPool(id string) []models.Question
	PastExamPool(id string) []models.Question
	AllQuestions() []models.Question
}

// Phase is the lifecycle state of the machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseActive    Phase = "active"
	PhaseFinalized Phase = "finalized"
)

// Config carries the session sizing knobs.
type Config struct {
	QuestionsPerSession    int
	MockQuestionCount      int
	MockSecondsPerQuestion int
	MinMockQuestions       int
}

// DefaultConfig returns the stock sizing: 6-question practice sessions and
// 20-question mock exams at 90 seconds per question.
func DefaultConfig() Config {
	return Config{
		QuestionsPerSession:    6,
		MockQuestionCount:      20,
		MockSecondsPerQuestion: 90,
		MinMockQuestions:       5,
	}
}

// Machine is the session state machine: idle -> active -> finalized. All
// mutations are serialized by one mutex since HTTP handlers and the mock
// countdown run concurrently.
type Machine struct {
	mu      sync.Mutex
	cfg     Config
	catalog Catalog
	engine  *selection.Engine
	tracker *learning.Tracker
	agg     *stats.Aggregator
	states  *state.Store
	now     func() time.Time

	// countdown controls whether a wall-clock ticker drives mock sessions.
	// Tests disable it and call Tick directly.
	countdown  bool
	stopTicker chan struct{}

	phase       Phase
	mode        models.SessionMode
	scopeID     string
	isPastExam  bool
	questions   []models.Question
	patternID   string
	index       int
	selected    int
	answered    bool
	hintVisible bool
	score       int
	streak      int
	correct     int
	mockCount   int
	timeLimit   int
	timeLeft    int
	timeUp      bool
	finalized   bool
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithClock sets the time source used for history timestamps.
func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) {
		m.now = now
	}
}

// WithoutCountdown disables the wall-clock mock ticker; tests drive the
// countdown through Tick.
func WithoutCountdown() MachineOption {
	return func(m *Machine) {
		m.countdown = false
	}
}

// NewMachine creates an idle Machine.
func NewMachine(cfg Config, cat Catalog, engine *selection.Engine, tracker *learning.Tracker, agg *stats.Aggregator, states *state.Store, opts ...MachineOption) *Machine {
	m := &Machine{
		cfg:       cfg,
		catalog:   cat,
		engine:    engine,
		tracker:   tracker,
		agg:       agg,
		states:    states,
		now:       time.Now,
		countdown: true,
		phase:     PhaseIdle,
		selected:  -1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartCategory draws a practice session from one category pool.
func (m *Machine) StartCategory(ctx context.Context, categoryID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startWithPool(ctx, categoryID, m.catalog.CategoryPool(categoryID), false, models.ModePractice, m.cfg.QuestionsPerSession, 0)
}

// StartPastExam draws a practice session from one past-exam set.
func (m *Machine) StartPastExam(ctx context.Context, setID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startWithPool(ctx, setID, m.catalog.PastExamPool(setID), true, models.ModePractice, m.cfg.QuestionsPerSession, 0)
}

// StartMock draws a timed session from the union of all pools. count <= 0
// means the configured default; the count is clamped to the pool size and
// to the configured minimum.
func (m *Machine) StartMock(ctx context.Context, count int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if count <= 0 {
		count = m.cfg.MockQuestionCount
	}
	pool := m.catalog.AllQuestions()
	if count > len(pool) {
		count = len(pool)
	}
	if count < m.cfg.MinMockQuestions {
		count = m.cfg.MinMockQuestions
	}

	started, err := m.startWithPool(ctx, ScopeMockAll, pool, false, models.ModeMock, count, count*m.cfg.MockSecondsPerQuestion)
	if started {
		m.mockCount = count
	}
	return started, err
}

// StartWeakDrill draws a practice session from the current weak set.
func (m *Machine) StartWeakDrill(ctx context.Context) (bool, error) {
	pool, err := m.tracker.WeakPool(ctx)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startWithPool(ctx, ScopeWeakDrill, pool, false, models.ModePractice, m.cfg.QuestionsPerSession, 0)
}

// StartBookmarkDrill draws a practice session from the bookmarked questions.
func (m *Machine) StartBookmarkDrill(ctx context.Context) (bool, error) {
	pool, err := m.tracker.BookmarkPool(ctx)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startWithPool(ctx, ScopeBookmarkDrill, pool, false, models.ModePractice, m.cfg.QuestionsPerSession, 0)
}

// StartTagDrill draws a practice session from every question carrying the
// given learning tag.
func (m *Machine) StartTagDrill(ctx context.Context, tag models.LearningTag) (bool, error) {
	if !tag.Valid() {
		return false, errors.NewValidationError("tag", "must be one of unknown, partial, knew-but-missed, careless")
	}
	pool, err := m.tracker.TagPool(ctx, tag)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startWithPool(ctx, tagScopePrefix+string(tag), pool, false, models.ModePractice, m.cfg.QuestionsPerSession, 0)
}

// StartDueReviewDrill draws a practice session from every question whose
// spaced-review slot has passed.
func (m *Machine) StartDueReviewDrill(ctx context.Context) (bool, error) {
	pool, err := m.tracker.DueReviewPool(ctx)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startWithPool(ctx, ScopeDueReview, pool, false, models.ModePractice, m.cfg.QuestionsPerSession, 0)
}

// startWithPool draws and activates a session. An empty pool is a silent
// no-op by contract: the caller observes no state transition.
func (m *Machine) startWithPool(ctx context.Context, scopeID string, pool []models.Question, isPastExam bool, mode models.SessionMode, count, timeLimitSec int) (bool, error) {
	log := logger.FromContext(ctx)

	if len(pool) == 0 {
		log.Debug("start requested for empty pool: scope=%s", scopeID)
		return false, nil
	}

	rec, err := m.states.Recency(ctx, scopeID)
	if err != nil {
		return false, err
	}

	draw, ok := m.engine.Pick(scopeID, pool, count, &rec)
	if !ok {
		return false, nil
	}
	if err := m.states.SetRecency(ctx, scopeID, rec); err != nil {
		return false, err
	}

	m.stopCountdownLocked()

	m.phase = PhaseActive
	m.mode = mode
	m.scopeID = scopeID
	m.isPastExam = isPastExam
	m.questions = draw.Questions
	m.patternID = draw.PatternID
	m.index = 0
	m.selected = -1
	m.answered = false
	m.hintVisible = false
	m.score = 0
	m.streak = 0
	m.correct = 0
	m.timeLimit = timeLimitSec
	m.timeLeft = timeLimitSec
	m.timeUp = false
	m.finalized = false

	if mode == models.ModeMock && m.countdown {
		m.startCountdownLocked()
	}

	log.Info("session started: scope=%s, mode=%s, questions=%d, pattern=%s", scopeID, mode, len(draw.Questions), draw.PatternID)
	return true, nil
}

// Answer records the user's pick for the current question. Answering with
// no active question or answering twice is ignored.
func (m *Machine) Answer(ctx context.Context, optionIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log := logger.FromContext(ctx)

	if m.phase != PhaseActive || m.answered {
		log.Debug("answer ignored: phase=%s, answered=%t", m.phase, m.answered)
		return nil
	}
	question := m.questions[m.index]
	if optionIndex < 0 || optionIndex >= len(question.Answers) {
		return errors.NewValidationError("option", "index out of range")
	}

	m.selected = optionIndex
	m.answered = true

	if optionIndex == question.Correct {
		points := 10 + m.streak*2
		m.score += points
		m.streak++
		m.correct++
		if err := m.agg.RecordAnswer(ctx, true, points); err != nil {
			return err
		}
		if err := m.tracker.RemoveWeak(ctx, question.ID); err != nil {
			return err
		}
		log.Debug("correct answer: question_id=%d, points=%d, streak=%d", question.ID, points, m.streak)
		return nil
	}

	m.streak = 0
	if err := m.agg.RecordAnswer(ctx, false, 0); err != nil {
		return err
	}
	if err := m.tracker.AddWeak(ctx, question.ID); err != nil {
		return err
	}
	log.Debug("wrong answer: question_id=%d, selected=%d", question.ID, optionIndex)
	return nil
}

// Next advances to the next question, or finalizes the session when the
// current question was the last one.
func (m *Machine) Next(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return nil
	}
	if m.index < len(m.questions)-1 {
		m.index++
		m.selected = -1
		m.answered = false
		m.hintVisible = false
		return nil
	}
	return m.finalizeLocked(ctx)
}

// Finalize ends the session and appends its history record. Idempotent:
// the manual last-question path and the mock timeout can race to call it,
// and exactly one record must be written.
func (m *Machine) Finalize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalizeLocked(ctx)
}

func (m *Machine) finalizeLocked(ctx context.Context) error {
	if m.finalized || m.phase != PhaseActive {
		return nil
	}

	category := m.scopeID
	if m.isPastExam {
		category = pastScopePrefix + m.scopeID
	}
	record := models.SessionRecord{
		Date:     m.now().UTC().Format(time.RFC3339),
		Category: category,
		Score:    m.score,
		Correct:  m.correct,
		Total:    len(m.questions),
		Streak:   m.streak,
	}
	if err := m.agg.AppendHistory(ctx, record); err != nil {
		return err
	}

	m.finalized = true
	m.phase = PhaseFinalized
	m.stopCountdownLocked()
	return nil
}

// Tick advances the mock countdown by one second. At zero the session is
// force-finalized with whatever was answered so far.
func (m *Machine) Tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive || m.mode != models.ModeMock || m.timeLeft <= 0 {
		return nil
	}
	m.timeLeft--
	if m.timeLeft > 0 {
		return nil
	}

	m.timeUp = true
	logger.FromContext(ctx).Info("mock time limit reached: scope=%s, answered=%d/%d", m.scopeID, m.correct, len(m.questions))
	return m.finalizeLocked(ctx)
}

// Retry starts a fresh session with the same scope and mode. Drill scopes
// re-resolve their pool from current learning state, so a drill retry can
// be a no-op when the underlying set has emptied.
func (m *Machine) Retry(ctx context.Context) (bool, error) {
	m.mu.Lock()
	mode := m.mode
	scopeID := m.scopeID
	isPastExam := m.isPastExam
	mockCount := m.mockCount
	m.mu.Unlock()

	switch {
	case mode == models.ModeMock:
		return m.StartMock(ctx, mockCount)
	case scopeID == ScopeDueReview:
		return m.StartDueReviewDrill(ctx)
	case scopeID == ScopeWeakDrill:
		return m.StartWeakDrill(ctx)
	case scopeID == ScopeBookmarkDrill:
		return m.StartBookmarkDrill(ctx)
	case strings.HasPrefix(scopeID, tagScopePrefix):
		return m.StartTagDrill(ctx, models.LearningTag(strings.TrimPrefix(scopeID, tagScopePrefix)))
	case isPastExam:
		return m.StartPastExam(ctx, scopeID)
	case scopeID != "":
		return m.StartCategory(ctx, scopeID)
	default:
		return false, nil
	}
}

// Reset discards the current session without writing history and returns
// the machine to idle.
func (m *Machine) Reset(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopCountdownLocked()
	m.phase = PhaseIdle
	m.mode = ""
	m.scopeID = ""
	m.isPastExam = false
	m.questions = nil
	m.patternID = ""
	m.index = 0
	m.selected = -1
	m.answered = false
	m.hintVisible = false
	m.score = 0
	m.streak = 0
	m.correct = 0
	m.timeLimit = 0
	m.timeLeft = 0
	m.timeUp = false
	m.finalized = false

	logger.FromContext(ctx).Debug("session reset")
}

// SetHintVisible shows or hides the current question's hint.
func (m *Machine) SetHintVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseActive {
		m.hintVisible = visible
	}
}

// View is a point-in-time copy of the session for rendering. Accuracy is
// computed over the full session length, matching the result screen.
type View struct {
	Phase       Phase              `json:"phase"`
	Mode        models.SessionMode `json:"mode,omitempty"`
	ScopeID     string             `json:"scopeId,omitempty"`
	IsPastExam  bool               `json:"isPastExam"`
	PatternID   string             `json:"patternId,omitempty"`
	Index       int                `json:"index"`
	Total       int                `json:"total"`
	Current     *models.Question   `json:"current,omitempty"`
	Selected    int                `json:"selected"`
	Answered    bool               `json:"answered"`
	HintVisible bool               `json:"hintVisible"`
	Score       int                `json:"score"`
	Streak      int                `json:"streak"`
	Correct     int                `json:"correct"`
	Accuracy    int                `json:"accuracy"`
	TimeLimit   int                `json:"timeLimitSec,omitempty"`
	TimeLeft    int                `json:"timeLeftSec,omitempty"`
	TimeUp      bool               `json:"isTimeUp"`
}

// View snapshots the session under the lock.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Phase:       m.phase,
		Mode:        m.mode,
		ScopeID:     m.scopeID,
		IsPastExam:  m.isPastExam,
		PatternID:   m.patternID,
		Index:       m.index,
		Total:       len(m.questions),
		Selected:    m.selected,
		Answered:    m.answered,
		HintVisible: m.hintVisible,
		Score:       m.score,
		Streak:      m.streak,
		Correct:     m.correct,
		Accuracy:    stats.SessionAccuracy(m.correct, len(m.questions)),
		TimeLimit:   m.timeLimit,
		TimeLeft:    m.timeLeft,
		TimeUp:      m.timeUp,
	}
	if m.phase == PhaseActive && m.index < len(m.questions) {
		q := m.questions[m.index]
		v.Current = &q
	}
	return v
}

// Questions returns a copy of the drawn question list, for the review
// screen after finalize.
func (m *Machine) Questions() []models.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Question, len(m.questions))
	copy(out, m.questions)
	return out
}

// Close stops the countdown goroutine, for process shutdown.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCountdownLocked()
}

func (m *Machine) startCountdownLocked() {
	stop := make(chan struct{})
	m.stopTicker = stop
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = m.Tick(context.Background())
			}
		}
	}()
}

func (m *Machine) stopCountdownLocked() {
	if m.stopTicker != nil {
		close(m.stopTicker)
		m.stopTicker = nil
	}
}
