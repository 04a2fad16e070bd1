package api_test

import (
	"net/http"
	"testing"

	"prompt-keeper/library"
)

func TestPresetCRUD(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPrompt(t, library.PromptInput{Title: "t", Body: "[tone]"})

	var created library.Preset
	body := map[string]any{"promptId": p.ID, "name": "formal", "values": map[string]string{"tone": "polite"}}
	resp := env.doJSON(t, http.MethodPost, "/api/presets", body, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var got library.Preset
	resp = env.doJSON(t, http.MethodGet, "/api/presets/"+created.ID, nil, &got)
	if resp.StatusCode != http.StatusOK || got.Values["tone"] != "polite" {
		t.Fatalf("get preset: status %d, %+v", resp.StatusCode, got)
	}

	var all []library.Preset
	env.doJSON(t, http.MethodGet, "/api/presets", nil, &all)
	if len(all) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(all))
	}

	env.doJSON(t, http.MethodDelete, "/api/presets/"+created.ID, nil, nil)
	resp = env.doJSON(t, http.MethodGet, "/api/presets/"+created.ID, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListPresetsUnknownPromptIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	var presets []library.Preset
	resp := env.doJSON(t, http.MethodGet, "/api/presets?promptId=unknown", nil, &presets)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if presets == nil || len(presets) != 0 {
		t.Fatalf("expected empty array, got %v", presets)
	}
}

func TestCreatePresetRequiresPromptID(t *testing.T) {
	env := newTestEnv(t)
	resp := env.doJSON(t, http.MethodPost, "/api/presets", map[string]string{"name": "x"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
