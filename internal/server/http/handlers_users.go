package httpserver

import (
	"context"
	"net/http"

	"github.com/and161185/lovary/internal/convert"
	"github.com/and161185/lovary/internal/model"
	"github.com/gofrs/uuid/v5"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Users.Me(r.Context(), mustUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUser(p))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req convert.ProfileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.svc.Users.UpdateMe(r.Context(), mustUser(r), convert.FromProfileUpdate(req))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUser(p))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	found, err := s.svc.Users.Search(r.Context(), mustUser(r), r.URL.Query().Get("email"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUserSummaries(found))
}

func (s *Server) handlePushSubscription(w http.ResponseWriter, r *http.Request) {
	var sub model.PushSubscription
	if err := decodeJSON(w, r, &sub); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Users.SavePushSubscription(r.Context(), mustUser(r), sub); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Users.DeleteAccount(r.Context(), mustUser(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- pairing ---

func (s *Server) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	var req convert.PartnerRequestCreate
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	pr, err := s.svc.Pairing.SendRequest(r.Context(), mustUser(r), req.RecipientEmail)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToPartnerRequest(pr))
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Pairing.ListPending(r.Context(), mustUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToPartnerRequests(list))
}

func (s *Server) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	s.answerRequest(w, r, s.svc.Pairing.Accept, model.RequestAccepted)
}

func (s *Server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	s.answerRequest(w, r, s.svc.Pairing.Reject, model.RequestRejected)
}

func (s *Server) answerRequest(w http.ResponseWriter, r *http.Request,
	answer func(ctx context.Context, userID, requestID uuid.UUID) error, status model.RequestStatus) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := answer(r.Context(), mustUser(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": string(status)})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Pairing.Disconnect(r.Context(), mustUser(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
