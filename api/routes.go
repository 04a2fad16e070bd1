package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"prompt-keeper/library"
	"prompt-keeper/logger"
	"prompt-keeper/session"
	"prompt-keeper/watch"
)

// Info describes where the server keeps its data.
type Info struct {
	DataDir string `json:"dataDir"`
	Backend string `json:"backend"`
}

// RegisterRoutes builds the HTTP API. hub may be nil, in which case the
// change feed only sends its greeting. A nil sessions gets a manager saving
// through lib.UpdatePrompt with session.DefaultDelay.
func RegisterRoutes(lib library.Library, sessions *session.Manager, hub *watch.Hub, info Info, log *logger.Logger) http.Handler {
	if sessions == nil {
		sessions = session.NewManager(lib.UpdatePrompt, session.DefaultDelay, log)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	h := &handler{lib: lib, sessions: sessions, hub: hub, info: info, log: log}

	r.Route("/api", func(r chi.Router) {
		r.Get("/folders", h.listFolders)
		r.Post("/folders", h.createFolder)
		r.Put("/folders/{id}", h.updateFolder)
		r.Delete("/folders/{id}", h.deleteFolder)

		r.Get("/prompts", h.listPrompts)
		r.Post("/prompts", h.createPrompt)
		r.Get("/prompts/{id}", h.getPrompt)
		r.Put("/prompts/{id}", h.updatePrompt)
		r.Delete("/prompts/{id}", h.deletePrompt)
		r.Get("/prompts/{id}/variables", h.promptVariables)
		r.Post("/prompts/{id}/resolve", h.resolvePrompt)
		r.Get("/prompts/{id}/ws", h.handleWS)

		r.Get("/presets", h.listPresets)
		r.Post("/presets", h.createPreset)
		r.Get("/presets/{id}", h.getPreset)
		r.Delete("/presets/{id}", h.deletePreset)

		r.Get("/sessions", h.listSessions)
		r.Delete("/sessions/{promptId}", h.closeSession)

		r.Get("/tags", h.listTags)
		r.Get("/info", h.getInfo)
		r.Get("/export", h.exportBundle)
		r.Post("/import", h.importBundle)
		r.Get("/events", h.handleEvents)
	})

	return r
}

type handler struct {
	lib      library.Library
	sessions *session.Manager
	hub      *watch.Hub
	info     Info
	log      *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request once the handler returns.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
