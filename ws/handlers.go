package ws

import (
	"chat-relay/errors"
	"chat-relay/services"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	SessionKey string `json:"session_key"`
}

// Routes assembles the HTTP surface: the websocket endpoint, the
// minimal account endpoints needed to obtain a session key, and the
// counters debug endpoint.
func (s *Server) Routes(accounts services.IIdentityService) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", s.handleAccount(accounts.Register, http.StatusCreated))
	r.Post("/login", s.handleAccount(accounts.Login, http.StatusOK))
	r.Get("/stats", s.handleStats)
	r.Get("/ws/{session_key}/{username}", s.HandleSocket)
	return r
}

func (s *Server) handleAccount(op func(username, password string) (services.Token, error), okStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		token, err := op(req.Username, req.Password)
		if err != nil {
			s.log.Info("account request rejected", "error", err)
			http.Error(w, err.Error(), accountStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(okStatus)
		_ = json.NewEncoder(w).Encode(tokenResponse{SessionKey: string(token)})
	}
}

func accountStatus(err error) int {
	switch {
	case errors.Is(err, errors.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrInvalidPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.counters.Snapshot())
}
