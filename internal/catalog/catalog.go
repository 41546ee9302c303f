package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/haruki/examquest/internal/models"
)

//go:embed data/*.json
var dataFS embed.FS

// Catalog holds every static question pool: topic categories and past-exam
// sets. Loaded once at startup, read-only afterwards; sessions receive
// copies, never these originals.
type Catalog struct {
	categories    []models.Category
	examSets      []models.ExamSet
	categoryPools map[string][]models.Question
	pastExamPools map[string][]models.Question
	all           []models.Question
	byID          map[int]models.Question
}

type pastExamFile struct {
	Sets      []models.ExamSet             `json:"sets"`
	Questions map[string][]models.Question `json:"questions"`
}

// Load parses the embedded question data. It fails on malformed data,
// duplicate question ids, or out-of-range correct-answer indexes, so a bad
// data file is caught at startup rather than mid-session.
func Load() (*Catalog, error) {
	var categories []models.Category
	if err := loadJSON("data/categories.json", &categories); err != nil {
		return nil, err
	}

	categoryPools := map[string][]models.Question{}
	if err := loadJSON("data/questions.json", &categoryPools); err != nil {
		return nil, err
	}

	var pastExams pastExamFile
	if err := loadJSON("data/past_exams.json", &pastExams); err != nil {
		return nil, err
	}

	c := &Catalog{
		categories:    categories,
		examSets:      pastExams.Sets,
		categoryPools: categoryPools,
		pastExamPools: pastExams.Questions,
		byID:          map[int]models.Question{},
	}

	for i := range c.categories {
		c.categories[i].QuestionCount = len(categoryPools[c.categories[i].ID])
	}

	for _, cat := range c.categories {
		if err := c.index(categoryPools[cat.ID]); err != nil {
			return nil, fmt.Errorf("category %s: %w", cat.ID, err)
		}
	}
	for _, set := range c.examSets {
		if err := c.index(pastExams.Questions[set.ID]); err != nil {
			return nil, fmt.Errorf("exam set %s: %w", set.ID, err)
		}
	}

	return c, nil
}

func loadJSON(path string, out any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Catalog) index(questions []models.Question) error {
	for _, q := range questions {
		if q.Correct < 0 || q.Correct >= len(q.Answers) {
			return fmt.Errorf("question %d: correct index %d out of range for %d answers", q.ID, q.Correct, len(q.Answers))
		}
		if _, dup := c.byID[q.ID]; dup {
			return fmt.Errorf("question %d: duplicate id", q.ID)
		}
		c.byID[q.ID] = q
		c.all = append(c.all, q)
	}
	return nil
}

// Categories lists the topic categories in display order.
func (c *Catalog) Categories() []models.Category {
	return c.categories
}

// ExamSets lists the past-exam sets in display order.
func (c *Catalog) ExamSets() []models.ExamSet {
	return c.examSets
}

// CategoryPool returns the questions for a category, nil for an unknown id.
func (c *Catalog) CategoryPool(id string) []models.Question {
	return c.categoryPools[id]
}

// PastExamPool returns the questions for a past-exam set, nil for an
// unknown id.
func (c *Catalog) PastExamPool(id string) []models.Question {
	return c.pastExamPools[id]
}

// AllQuestions returns the union of every pool, category questions first.
func (c *Catalog) AllQuestions() []models.Question {
	return c.all
}

// QuestionByID looks a question up across all pools.
func (c *Catalog) QuestionByID(id int) (models.Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}
