package timeline

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ripplesns/ripple/modules/auth"
	"github.com/ripplesns/ripple/pkg/logger"
	"github.com/ripplesns/ripple/pkg/session"
)

// Handler serves the timeline for fully onboarded users.
type Handler struct {
	users *auth.Service
	log   *slog.Logger
	now   func() time.Time
}

// NewHandler builds the timeline HTTP handler.
func NewHandler(users *auth.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{users: users, log: log, now: time.Now}
}

// Router returns the route tree for mounting under /timeline. Every route
// requires an authenticated session.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(session.RequireAuth)
	r.Get("/", h.feed)
	return r
}

type feedResponse struct {
	Username string `json:"username"`
	Posts    []Post `json:"posts"`
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	user, err := h.users.User(r.Context(), *sess.UserID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to load timeline user",
			logger.Component("timeline"), logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Accounts that have not picked a username yet are sent back to setup.
	if user.State() != auth.StateFullyOnboarded {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"message":  "Choose a username to see your timeline.",
			"severity": "warning",
		})
		return
	}

	writeJSON(w, http.StatusOK, feedResponse{
		Username: user.Username,
		Posts:    samplePosts(h.now()),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
