package api

import (
	"net/http"

	"github.com/haruki/examquest/internal/catalog"
	"github.com/haruki/examquest/internal/logger"
	"github.com/haruki/examquest/internal/models"
	"github.com/haruki/examquest/internal/stats"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"categories": s.Catalog.Categories(),
	})
}

type examSetView struct {
	models.ExamSet
	DisplayLabel  string `json:"displayLabel"`
	QuestionCount int    `json:"questionCount"`
}

func (s *Server) handlePastExams(w http.ResponseWriter, r *http.Request) {
	sets := s.Catalog.ExamSets()
	out := make([]examSetView, 0, len(sets))
	for _, set := range sets {
		out = append(out, examSetView{
			ExamSet:       set,
			DisplayLabel:  catalog.PastExamLabel(s.Catalog, set.ID),
			QuestionCount: len(s.Catalog.PastExamPool(set.ID)),
		})
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"examSets": out})
}

// handleHome aggregates everything the start screen shows: cumulative
// totals, level, and the per-drill pool counts.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	log.Debug("building home summary")

	data, err := s.Stats.Snapshot(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	weakPool, err := s.Tracker.WeakPool(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	bookmarkPool, err := s.Tracker.BookmarkPool(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	tagCounts, err := s.Tracker.TagCounts(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	dueCount, err := s.Tracker.DueReviewCount(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"totalScore":     data.TotalScore,
		"totalAnswered":  data.TotalAnswered,
		"totalCorrect":   data.TotalCorrect,
		"level":          stats.Level(data.TotalScore),
		"history":        data.History,
		"weakCount":      len(weakPool),
		"bookmarkCount":  len(bookmarkPool),
		"tagCounts":      tagCounts,
		"dueReviewCount": dueCount,
	})
}
