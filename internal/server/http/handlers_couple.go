package httpserver

import (
	"fmt"
	"net/http"

	"github.com/and161185/lovary/internal/convert"
	"github.com/and161185/lovary/internal/errs"
)

// --- anniversaries ---

func (s *Server) handleSaveAnniversary(w http.ResponseWriter, r *http.Request) {
	var req convert.AnniversaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	a, err := s.svc.Anniversaries.Save(r.Context(), mustUser(r), req.Date, req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToAnniversary(*a))
}

func (s *Server) handleListAnniversaries(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Anniversaries.List(r.Context(), mustUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToAnniversaries(list))
}

// handleMonthAnniversaries ignores the year: anniversaries recur.
func (s *Server) handleMonthAnniversaries(w http.ResponseWriter, r *http.Request) {
	_, m, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.svc.Anniversaries.Month(r.Context(), mustUser(r), m)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToAnniversaries(list))
}

func (s *Server) handleDeleteAnniversary(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Anniversaries.Delete(r.Context(), mustUser(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- monthly photos ---

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	y, m, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !isMultipart(r) {
		s.fail(w, r, fmt.Errorf("%w: multipart body with a file field expected", errs.ErrValidation))
		return
	}
	if err := s.parseMultipart(w, r, 1); err != nil {
		s.fail(w, r, err)
		return
	}
	files, err := s.formFiles(r, "file", 1)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(files) != 1 {
		s.fail(w, r, fmt.Errorf("%w: exactly one file expected", errs.ErrValidation))
		return
	}
	p, err := s.svc.Photos.Upload(r.Context(), mustUser(r), y, m, files[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToMonthlyPhoto(p))
}

// handleGetPhoto answers null when the month has no photo.
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	y, m, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.svc.Photos.Get(r.Context(), mustUser(r), y, m)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToMonthlyPhoto(p))
}
