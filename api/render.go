package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yuin/goldmark"

	"prompt-keeper/library"
	"prompt-keeper/variables"
)

func (h *handler) promptVariables(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPrompt(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"variables": variables.Extract(p.Body)})
}

type resolveRequest struct {
	Values   map[string]string `json:"values"`
	PresetID string            `json:"presetId"`
}

type resolveResponse struct {
	Text      string              `json:"text"`
	Segments  []variables.Segment `json:"segments"`
	Variables []string            `json:"variables"`
	Missing   []string            `json:"missing"`
	HTML      string              `json:"html,omitempty"`
}

// resolvePrompt fills the prompt body. A preset's values are applied first
// and explicit values override them. With ?format=html the resolved text is
// also rendered as markdown.
func (h *handler) resolvePrompt(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, ok := h.loadPrompt(w, r)
	if !ok {
		return
	}

	values := make(map[string]string)
	if req.PresetID != "" {
		preset, err := h.lib.GetPreset(r.Context(), req.PresetID)
		if errors.Is(err, library.ErrNotFound) {
			http.Error(w, "preset not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.fail(w, "failed to load preset", err)
			return
		}
		for k, v := range preset.Values {
			values[k] = v
		}
	}
	for k, v := range req.Values {
		values[k] = v
	}

	resp := resolveResponse{
		Text:      variables.Resolve(p.Body, values),
		Segments:  variables.Segments(p.Body, values),
		Variables: variables.Extract(p.Body),
		Missing:   variables.Missing(p.Body, values),
	}
	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(resp.Text), &buf); err != nil {
			h.fail(w, "failed to render prompt", err)
			return
		}
		resp.HTML = buf.String()
	}
	writeJSON(w, http.StatusOK, resp)
}
