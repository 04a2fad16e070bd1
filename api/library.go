package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prompt-keeper/exchange"
	"prompt-keeper/session"
)

func (h *handler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.lib.Tags(r.Context())
	if err != nil {
		h.fail(w, "failed to list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *handler) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}

func (h *handler) exportBundle(w http.ResponseWriter, r *http.Request) {
	format, err := exchange.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, err := exchange.Export(r.Context(), h.lib)
	if err != nil {
		h.fail(w, "failed to export library", err)
		return
	}
	// Encode into a buffer so an encoding failure can still become a 500.
	var buf bytes.Buffer
	if err := exchange.Encode(&buf, b, format); err != nil {
		h.fail(w, "failed to encode bundle", err)
		return
	}
	if format == exchange.FormatJSON {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "application/yaml")
	}
	w.Header().Set("Content-Disposition", `attachment; filename="prompt-keeper.`+format+`"`)
	_, _ = w.Write(buf.Bytes())
}

// importBundle accepts JSON when the request says so and YAML otherwise.
func (h *handler) importBundle(w http.ResponseWriter, r *http.Request) {
	format := exchange.FormatYAML
	if r.Header.Get("Content-Type") == "application/json" || r.URL.Query().Get("format") == "json" {
		format = exchange.FormatJSON
	}
	b, err := exchange.Decode(r.Body, format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := exchange.Import(r.Context(), h.lib, b)
	if err != nil {
		h.fail(w, "failed to import bundle", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.List())
}

// closeSession ends a live-edit session without saving its pending draft.
func (h *handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "promptId")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		h.fail(w, "failed to close session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
