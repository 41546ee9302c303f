package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/haruki/examquest/internal/errors"
	"github.com/haruki/examquest/internal/models"
)

func (s *Server) questionID(r *http.Request) (int, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.NewBadRequestError("invalid question id: " + idStr)
	}
	if _, ok := s.Catalog.QuestionByID(id); !ok {
		return 0, errors.NewNotFoundError("question", id)
	}
	return id, nil
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := s.questionID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	bookmarked, err := s.Tracker.ToggleBookmark(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"questionId": id,
		"bookmarked": bookmarked,
	})
}

func (s *Server) handleReportQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := s.questionID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Tracker.SetReportReason(r.Context(), id, req.Reason); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"questionId": id, "reported": true})
}

func (s *Server) handleClearReport(w http.ResponseWriter, r *http.Request) {
	id, err := s.questionID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Tracker.ClearReport(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"questionId": id, "reported": false})
}

func (s *Server) handleSetLearningTag(w http.ResponseWriter, r *http.Request) {
	id, err := s.questionID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Tag string `json:"tag"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Tracker.SetLearningTag(r.Context(), id, models.LearningTag(req.Tag)); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"questionId": id, "tag": req.Tag})
}
