package selection

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haruki/examquest/internal/logger"
	"github.com/haruki/examquest/internal/models"
)

const (
	// DefaultMaxAttempts is the redraw budget before a repeated pattern is
	// accepted. Duplicate avoidance is best-effort, not guaranteed.
	DefaultMaxAttempts = 40

	// MaxRecentPatterns is how many draw signatures are remembered per scope.
	MaxRecentPatterns = 8

	// MaxRecentQuestionIDs is how many recently drawn question ids are
	// remembered per scope to bias selection toward unseen questions.
	MaxRecentQuestionIDs = 50

	signatureDelimiter = "|"
)

// Engine draws shuffled, non-repeating question subsets from a pool.
type Engine struct {
	rng         *rand.Rand
	maxAttempts int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandSource sets the random source, for deterministic draws in tests.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		e.rng = rand.New(src)
	}
}

// WithMaxAttempts overrides the redraw budget.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Draw is one accepted question selection.
type Draw struct {
	Questions []models.Question
	Signature string
	PatternID string
}

// Pick selects up to count questions from pool, avoiding recently drawn
// patterns, the previous opener, and recently seen questions. It mutates rec
// with the accepted draw. Returns false when the pool is empty; callers
// treat that as a no-op.
//
// Not safe for concurrent use; the session machine serializes calls.
func (e *Engine) Pick(scopeID string, pool []models.Question, count int, rec *models.Recency) (Draw, bool) {
	log := logger.Default().WithPrefix("selection")

	if len(pool) == 0 {
		log.Debug("empty pool for scope %s, no draw", scopeID)
		return Draw{}, false
	}

	targetCount := count
	if targetCount > len(pool) {
		targetCount = len(pool)
	}

	var picked []models.Question
	var signature string
	attempts := 0
	for {
		picked = e.drawOnce(pool, targetCount, rec.QuestionIDs)
		signature = PatternSignature(picked)
		attempts++
		if !e.rejected(picked, signature, rec) {
			break
		}
		if attempts >= e.maxAttempts {
			log.Debug("redraw budget exhausted for scope %s after %d attempts, accepting a repeated draw", scopeID, attempts)
			break
		}
	}

	rec.PatternSignatures = pushSignature(rec.PatternSignatures, signature)
	rec.FirstQuestionID = picked[0].ID
	rec.QuestionIDs = mergeRecentIDs(rec.QuestionIDs, questionIDs(picked))

	log.Debug("drew %d questions for scope %s in %d attempt(s): %s", len(picked), scopeID, attempts, signature)
	return Draw{
		Questions: picked,
		Signature: signature,
		PatternID: makePatternID(scopeID),
	}, true
}

func (e *Engine) rejected(picked []models.Question, signature string, rec *models.Recency) bool {
	for _, s := range rec.PatternSignatures {
		if s == signature {
			return true
		}
	}
	return rec.FirstQuestionID != 0 && picked[0].ID == rec.FirstQuestionID
}

// drawOnce shuffles a candidate pool and takes the first targetCount
// questions, each with its answers reshuffled. Questions seen in the last
// MaxRecentQuestionIDs draws are excluded unless that would leave too few.
func (e *Engine) drawOnce(pool []models.Question, targetCount int, recentIDs []int) []models.Question {
	seen := make(map[int]bool, len(recentIDs))
	for _, id := range recentIDs {
		seen[id] = true
	}

	preferred := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if !seen[q.ID] {
			preferred = append(preferred, q)
		}
	}

	candidates := preferred
	if len(candidates) < targetCount {
		candidates = pool
	}

	shuffled := e.shuffle(candidates)
	picked := make([]models.Question, 0, targetCount)
	for _, q := range shuffled[:targetCount] {
		picked = append(picked, e.shuffleAnswers(q))
	}
	return picked
}

// shuffle returns a Fisher-Yates shuffled copy.
func (e *Engine) shuffle(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	copy(out, questions)
	for i := len(out) - 1; i > 0; i-- {
		j := e.rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// shuffleAnswers returns a copy of q with the answer order randomized and
// Correct remapped to the new position of the original correct option.
func (e *Engine) shuffleAnswers(q models.Question) models.Question {
	order := e.rng.Perm(len(q.Answers))
	answers := make([]string, len(q.Answers))
	correct := q.Correct
	for to, from := range order {
		answers[to] = q.Answers[from]
		if from == q.Correct {
			correct = to
		}
	}
	q.Answers = answers
	q.Correct = correct
	return q
}

// PatternSignature is the sorted question-id list joined by a delimiter,
// uniquely identifying one drawn question set.
func PatternSignature(questions []models.Question) string {
	ids := questionIDs(questions)
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, signatureDelimiter)
}

func questionIDs(questions []models.Question) []int {
	ids := make([]int, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

// pushSignature prepends signature, dropping duplicates and capping at
// MaxRecentPatterns.
func pushSignature(prev []string, signature string) []string {
	out := make([]string, 0, len(prev)+1)
	out = append(out, signature)
	for _, s := range prev {
		if s != signature {
			out = append(out, s)
		}
	}
	if len(out) > MaxRecentPatterns {
		out = out[:MaxRecentPatterns]
	}
	return out
}

// mergeRecentIDs appends the new ids, deduplicates keeping the first
// occurrence, and keeps the trailing MaxRecentQuestionIDs entries.
func mergeRecentIDs(prev, next []int) []int {
	merged := make([]int, 0, len(prev)+len(next))
	seen := make(map[int]bool, len(prev)+len(next))
	for _, id := range append(append([]int{}, prev...), next...) {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	if len(merged) > MaxRecentQuestionIDs {
		merged = merged[len(merged)-MaxRecentQuestionIDs:]
	}
	return merged
}

// makePatternID builds a short human-readable label for one draw, e.g.
// "NET-7C2F01AB".
func makePatternID(scopeID string) string {
	prefix := scopeID
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return strings.ToUpper(prefix) + "-" + token
}
