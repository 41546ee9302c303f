package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haruki/examquest/internal/logger"
	"github.com/haruki/examquest/internal/models"
)

// respondStarted is the shared reply for every session start endpoint. An
// empty pool is not an error: the client gets started=false and the session
// state is unchanged.
func (s *Server) respondStarted(w http.ResponseWriter, r *http.Request, started bool, err error) {
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"started": started,
		"session": s.Machine.View(),
	})
}

func (s *Server) handleStartCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	started, err := s.Machine.StartCategory(r.Context(), id)
	s.respondStarted(w, r, started, err)
}

func (s *Server) handleStartPastExam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	started, err := s.Machine.StartPastExam(r.Context(), id)
	s.respondStarted(w, r, started, err)
}

func (s *Server) handleStartMock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	started, err := s.Machine.StartMock(r.Context(), req.Count)
	s.respondStarted(w, r, started, err)
}

func (s *Server) handleStartWeakDrill(w http.ResponseWriter, r *http.Request) {
	started, err := s.Machine.StartWeakDrill(r.Context())
	s.respondStarted(w, r, started, err)
}

func (s *Server) handleStartBookmarkDrill(w http.ResponseWriter, r *http.Request) {
	started, err := s.Machine.StartBookmarkDrill(r.Context())
	s.respondStarted(w, r, started, err)
}

func (s *Server) handleStartTagDrill(w http.ResponseWriter, r *http.Request) {
	tag := models.LearningTag(chi.URLParam(r, "tag"))
	started, err := s.Machine.StartTagDrill(r.Context(), tag)
	s.respondStarted(w, r, started, err)
}

func (s *Server) handleStartReviewDrill(w http.ResponseWriter, r *http.Request) {
	started, err := s.Machine.StartDueReviewDrill(r.Context())
	s.respondStarted(w, r, started, err)
}

// handleSessionView returns the session snapshot plus the current
// question's bookmark and tag state, so the quiz screen renders from one
// request.
func (s *Server) handleSessionView(w http.ResponseWriter, r *http.Request) {
	view := s.Machine.View()

	var bookmarked bool
	var tag string
	if view.Current != nil {
		b, err := s.Tracker.IsBookmarked(r.Context(), view.Current.ID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		bookmarked = b

		current, err := s.Tracker.TagFor(r.Context(), view.Current.ID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		tag = string(current)
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"session":           view,
		"currentBookmarked": bookmarked,
		"currentTag":        tag,
	})
}

// handleSessionQuestions returns the full drawn question list, for the
// result review screen.
func (s *Server) handleSessionQuestions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"questions": s.Machine.Questions(),
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option int `json:"option"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Machine.Answer(r.Context(), req.Option); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, s.Machine.View())
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if err := s.Machine.Next(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, s.Machine.View())
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visible bool `json:"visible"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	s.Machine.SetHintVisible(req.Visible)
	respondJSON(w, r, http.StatusOK, s.Machine.View())
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	if err := s.Machine.Finalize(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, s.Machine.View())
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	started, err := s.Machine.Retry(r.Context())
	s.respondStarted(w, r, started, err)
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debug("session reset requested")
	s.Machine.Reset(r.Context())
	respondJSON(w, r, http.StatusOK, s.Machine.View())
}
