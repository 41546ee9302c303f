package models

// SourceRef points at the past-exam set a question was taken from.
type SourceRef struct {
	SetID      string `json:"set_id"`
	Label      string `json:"label"`
	Year       int    `json:"year"`
	QuestionNo string `json:"question_no"`
	URL        string `json:"url"`
}

// Question is a single multiple-choice question. Instances held by a session
// are copies with the answer order reshuffled; the catalog originals are
// never mutated.
type Question struct {
	ID          int        `json:"id"`
	Text        string     `json:"question"`
	Answers     []string   `json:"answers"`
	Correct     int        `json:"correct"`
	Explanation string     `json:"explanation"`
	Hint        string     `json:"hint,omitempty"`
	Source      *SourceRef `json:"source,omitempty"`
}

// Category describes a topic-based question pool.
type Category struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
}

// ExamSet describes a past-exam question pool.
type ExamSet struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Year      int    `json:"year"`
	Season    string `json:"season"` // "Spring" or "Autumn"
	SourceURL string `json:"source_url"`
}
