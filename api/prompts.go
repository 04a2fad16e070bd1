package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prompt-keeper/library"
)

func (h *handler) listPrompts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := library.Filter{
		FolderID: q.Get("folderId"),
		Tag:      q.Get("tag"),
		Query:    q.Get("q"),
	}
	prompts, err := h.lib.ListPrompts(r.Context(), filter)
	if err != nil {
		h.fail(w, "failed to list prompts", err)
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}

func (h *handler) createPrompt(w http.ResponseWriter, r *http.Request) {
	var in library.PromptInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.lib.CreatePrompt(r.Context(), in)
	if err != nil {
		h.fail(w, "failed to create prompt", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) getPrompt(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPrompt(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// loadPrompt reads the prompt named by the {id} URL param, answering 404 or
// 500 itself when it cannot.
func (h *handler) loadPrompt(w http.ResponseWriter, r *http.Request) (library.Prompt, bool) {
	p, err := h.lib.GetPrompt(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, library.ErrNotFound) {
		http.Error(w, "prompt not found", http.StatusNotFound)
		return library.Prompt{}, false
	}
	if err != nil {
		h.fail(w, "failed to load prompt", err)
		return library.Prompt{}, false
	}
	return p, true
}

// updatePrompt answers null for an unknown id. Any updatedAt in the body is
// ignored.
func (h *handler) updatePrompt(w http.ResponseWriter, r *http.Request) {
	var p library.Prompt
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p.ID = chi.URLParam(r, "id")
	updated, err := h.lib.UpdatePrompt(r.Context(), p)
	if err != nil {
		h.fail(w, "failed to update prompt", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deletePrompt also ends any live-edit session on the prompt, dropping its
// unsaved draft.
func (h *handler) deletePrompt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = h.sessions.Close(id)
	if err := h.lib.DeletePrompt(r.Context(), id); err != nil {
		h.fail(w, "failed to delete prompt", err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}
