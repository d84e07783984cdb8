package httpserver

import (
	"net"
	"net/http"

	"github.com/and161185/lovary/internal/convert"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req convert.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.svc.Auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// handleLogin accepts JSON or the username/password form of OAuth2 password clients.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req convert.LoginRequest
	if isMultipart(r) || mediaType(r) == "application/x-www-form-urlencoded" {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	tokens, _, err := s.svc.Auth.Login(r.Context(), req.Login(), req.Password, clientIP(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToToken(tokens))
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
