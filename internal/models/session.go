package models

// SessionMode distinguishes untimed practice from the timed mock exam.
type SessionMode string

const (
	ModePractice SessionMode = "practice"
	ModeMock     SessionMode = "mock"
)

// SessionRecord is one finished session in the cumulative history.
type SessionRecord struct {
	Date     string `json:"date"`
	Category string `json:"category"` // scope id, prefixed "past:" for exam sets
	Score    int    `json:"score"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
	Streak   int    `json:"streak"`
}

// SavedData is the cumulative score state persisted across sessions.
type SavedData struct {
	TotalScore    int             `json:"totalScore"`
	TotalAnswered int             `json:"totalAnswered"`
	TotalCorrect  int             `json:"totalCorrect"`
	History       []SessionRecord `json:"history"`
}

// Recency tracks what was recently drawn for one scope, so consecutive
// sessions do not repeat the same question set or opener.
type Recency struct {
	// PatternSignatures holds the most recent draw signatures, newest first.
	PatternSignatures []string
	// FirstQuestionID is the opening question of the previous session,
	// 0 when there is none.
	FirstQuestionID int
	// QuestionIDs are recently drawn question ids, oldest first.
	QuestionIDs []int
}
