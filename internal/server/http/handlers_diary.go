package httpserver

import (
	"net/http"

	"github.com/and161185/lovary/internal/convert"
	"github.com/and161185/lovary/internal/model"
)

// handleCreateEntry takes multipart title, content and photos, or a JSON
// body without photos.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var (
		req    convert.EntryRequest
		photos []model.PhotoUpload
	)
	if isMultipart(r) {
		if err := s.parseMultipart(w, r, maxEntryPhotos); err != nil {
			s.fail(w, r, err)
			return
		}
		req.Title = r.FormValue("title")
		req.Content = r.FormValue("content")
		var err error
		if photos, err = s.formFiles(r, "photos", maxEntryPhotos); err != nil {
			s.fail(w, r, err)
			return
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	e, err := s.svc.Diary.Create(r.Context(), mustUser(r), convert.FromEntryRequest(req), photos)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToEntry(*e))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req convert.EntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.svc.Diary.Update(r.Context(), mustUser(r), id, convert.FromEntryRequest(req))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToEntry(*e))
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Diary.Mine(r.Context(), mustUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToEntries(list))
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	in, err := s.svc.Diary.TodayInbox(r.Context(), mustUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToInbox(in))
}

// handlePartnerToday is the list form of the inbox: the partner's entry once
// unlocked, else an empty array.
func (s *Server) handlePartnerToday(w http.ResponseWriter, r *http.Request) {
	in, err := s.svc.Diary.TodayInbox(r.Context(), mustUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := []convert.Entry{}
	if in.Partner != nil {
		out = append(out, convert.ToEntry(*in.Partner))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := pathDay(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	d, err := s.svc.Diary.DayDetail(r.Context(), mustUser(r), day)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToDayDetail(d))
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	y, m, err := pathYearMonth(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	days, err := s.svc.Diary.Month(r.Context(), mustUser(r), y, m)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToMonth(days))
}
