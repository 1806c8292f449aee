package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/service"
	"github.com/BuzzLyutic/task-dashboard/pkg/respond"
)

// Identity headers set by the authenticating proxy in front of the API.
const (
	HeaderUserID     = "X-User-Id"
	HeaderUserName   = "X-User-Name"
	HeaderUserEmail  = "X-User-Email"
	HeaderUserAvatar = "X-User-Avatar"
)

type engineKey struct{}

func NewRouter(h *TaskHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(h.Session)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/stats", h.Stats)
		r.Post("/reload", h.Reload)

		r.Post("/tasks", h.Create)
		r.Route("/tasks/{ref}", func(r chi.Router) {
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/advance", h.Advance)
			r.Put("/status", h.SetStatus)
			r.Put("/priority", h.SetPriority)
		})
	})
	return r
}

// Session reads the caller's identity and attaches that user's engine to the
// request context.
func (h *TaskHandler) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := model.Identity{
			UID:         r.Header.Get(HeaderUserID),
			DisplayName: r.Header.Get(HeaderUserName),
			Email:       r.Header.Get(HeaderUserEmail),
			AvatarURL:   r.Header.Get(HeaderUserAvatar),
		}
		if id.UID == "" {
			respond.Error(w, r, http.StatusUnauthorized, "no signed-in user")
			return
		}
		e := h.registry.Engine(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), engineKey{}, e)))
	})
}

func engineFrom(r *http.Request) *service.Engine {
	return r.Context().Value(engineKey{}).(*service.Engine)
}
