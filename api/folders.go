package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prompt-keeper/library"
)

func (h *handler) listFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.lib.ListFolders(r.Context())
	if err != nil {
		h.fail(w, "failed to list folders", err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (h *handler) createFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	f, err := h.lib.CreateFolder(r.Context(), req.Name, req.Color)
	if err != nil {
		h.fail(w, "failed to create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// updateFolder answers null for an unknown id.
func (h *handler) updateFolder(w http.ResponseWriter, r *http.Request) {
	var f library.Folder
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	f.ID = chi.URLParam(r, "id")
	updated, err := h.lib.UpdateFolder(r.Context(), f)
	if err != nil {
		h.fail(w, "failed to update folder", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.DeleteFolder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "failed to delete folder", err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

var okResponse = map[string]bool{"ok": true}

// fail logs err and answers 500 with msg.
func (h *handler) fail(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, "error", err)
	http.Error(w, msg, http.StatusInternalServerError)
}
