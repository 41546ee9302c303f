package models

import "time"

// LearningTag is the self-assessment a user attaches to a question after
// seeing the answer.
type LearningTag string

const (
	TagUnknown       LearningTag = "unknown"
	TagPartial       LearningTag = "partial"
	TagKnewButMissed LearningTag = "knew-but-missed"
	TagCareless      LearningTag = "careless"
)

// LearningTags lists every valid tag.
var LearningTags = []LearningTag{TagUnknown, TagPartial, TagKnewButMissed, TagCareless}

// Valid reports whether t is one of the known tags.
func (t LearningTag) Valid() bool {
	switch t {
	case TagUnknown, TagPartial, TagKnewButMissed, TagCareless:
		return true
	}
	return false
}

// ReviewPlanEntry schedules the next spaced review of a question.
type ReviewPlanEntry struct {
	NextReviewAt time.Time `json:"nextReviewAt"`
	IntervalDays int       `json:"intervalDays"`
}
