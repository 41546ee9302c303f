package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/home", s.handleHome)
	r.Get("/api/categories", s.handleCategories)
	r.Get("/api/past-exams", s.handlePastExams)

	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", s.handleSessionView)
		r.Get("/questions", s.handleSessionQuestions)
		r.Post("/category/{id}", s.handleStartCategory)
		r.Post("/past-exam/{id}", s.handleStartPastExam)
		r.Post("/mock", s.handleStartMock)
		r.Post("/weak-drill", s.handleStartWeakDrill)
		r.Post("/bookmark-drill", s.handleStartBookmarkDrill)
		r.Post("/tag-drill/{tag}", s.handleStartTagDrill)
		r.Post("/review-drill", s.handleStartReviewDrill)
		r.Post("/answer", s.handleAnswer)
		r.Post("/next", s.handleNext)
		r.Post("/hint", s.handleHint)
		r.Post("/finalize", s.handleFinalize)
		r.Post("/retry", s.handleRetry)
		r.Post("/reset", s.handleSessionReset)
	})

	r.Route("/api/questions/{id}", func(r chi.Router) {
		r.Post("/bookmark", s.handleToggleBookmark)
		r.Post("/report", s.handleReportQuestion)
		r.Delete("/report", s.handleClearReport)
		r.Post("/tag", s.handleSetLearningTag)
	})

	r.Get("/api/backup/export", s.handleExport)
	r.Post("/api/backup/import", s.handleImport)
	r.Post("/api/backup/reset", s.handleResetAll)

	return r
}
