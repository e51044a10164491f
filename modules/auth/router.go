package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ripplesns/ripple/pkg/logger"
	"github.com/ripplesns/ripple/pkg/session"
)

// Handler exposes the auth flows over HTTP.
type Handler struct {
	svc      *Service
	sessions *session.Manager
	log      *slog.Logger
}

// NewHandler builds the HTTP handler for the auth flows.
func NewHandler(svc *Service, sessions *session.Manager, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{svc: svc, sessions: sessions, log: log}
}

// Router returns the route tree for mounting under /auth.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Get("/verify/{token}", h.verify)
	r.Post("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(session.RequireAuth)
		r.Post("/setup", h.setup)
	})

	return r
}

type emailRequest struct {
	Email string `json:"email"`
}

type usernameRequest struct {
	Username string `json:"username"`
}

// authResponse is the body of every auth endpoint: the outcome to display and,
// where a user is involved, their onboarding state.
type authResponse struct {
	Result
	State AccountState `json:"state,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, authResponse{
		Result: Result{Message: msgRegistered, Severity: SeverityInfo},
		State:  user.State(),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.RequestLoginLink(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, authResponse{
		Result: Result{Message: msgLoginLinkSent, Severity: SeverityInfo},
		State:  user.State(),
	})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")

	user, err := h.svc.VerifyAndLogin(r.Context(), tok)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.sessions.Authenticate(r.Context(), w, r, user.ID); err != nil {
		h.log.ErrorContext(r.Context(), "failed to establish session",
			logger.Component("auth"), logger.UserID(user.ID.String()), logger.Error(err))
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Result: Result{Message: msgVerified, Severity: SeveritySuccess},
		State:  user.State(),
	})
}

func (h *Handler) setup(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	var req usernameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.CompleteOnboarding(r.Context(), *sess.UserID, req.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Result: Result{Message: msgOnboarded, Severity: SeveritySuccess},
		State:  user.State(),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.log.ErrorContext(r.Context(), "failed to destroy session",
			logger.Component("auth"), logger.Error(err))
	}
	writeJSON(w, http.StatusOK, Result{Message: "You are signed out.", Severity: SeverityInfo})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "auth operation failed",
			logger.Component("auth"), logger.Error(err))
	}
	writeJSON(w, status, ResultFor(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest,
			Result{Message: "Invalid request body.", Severity: SeverityDanger})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
