package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prompt-keeper/library"
)

// listPresets returns every preset when promptId is omitted.
func (h *handler) listPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.lib.ListPresets(r.Context(), r.URL.Query().Get("promptId"))
	if err != nil {
		h.fail(w, "failed to list presets", err)
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

func (h *handler) createPreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PromptID string            `json:"promptId"`
		Name     string            `json:"name"`
		Values   map[string]string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PromptID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.lib.CreatePreset(r.Context(), req.PromptID, req.Name, req.Values)
	if err != nil {
		h.fail(w, "failed to create preset", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) getPreset(w http.ResponseWriter, r *http.Request) {
	p, err := h.lib.GetPreset(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, library.ErrNotFound) {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, "failed to load preset", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deletePreset(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.DeletePreset(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "failed to delete preset", err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}
