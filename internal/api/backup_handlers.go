package api

import (
	"io"
	"net/http"

	"github.com/haruki/examquest/internal/errors"
	"github.com/haruki/examquest/internal/logger"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.Backup.Export(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="examquest-backup.json"`)
	respondJSON(w, r, http.StatusOK, snapshot)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("backup payload too large or unreadable"))
		return
	}

	result, err := s.Backup.Import(r.Context(), raw)
	if err != nil {
		handleError(w, r, err)
		return
	}

	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadRequest
	}
	respondJSON(w, r, status, result)
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Info("full learning data reset requested")

	// A live session would keep writing into the cleared state.
	s.Machine.Reset(r.Context())

	if err := s.Backup.ResetAll(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"reset": true})
}
