package api_test

import (
	"net/http"
	"strings"
	"testing"

	"prompt-keeper/library"
)

func TestFolderCRUD(t *testing.T) {
	env := newTestEnv(t)

	var created library.Folder
	resp := env.doJSON(t, http.MethodPost, "/api/folders", map[string]string{"name": "Work", "color": "#f00"}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if created.ID == "" || created.Name != "Work" {
		t.Fatalf("unexpected folder %+v", created)
	}

	var updated *library.Folder
	env.doJSON(t, http.MethodPut, "/api/folders/"+created.ID, library.Folder{Name: "Home", Color: "#0f0"}, &updated)
	if updated == nil || updated.Name != "Home" || updated.ID != created.ID {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("createdAt changed on update")
	}

	var folders []library.Folder
	env.doJSON(t, http.MethodGet, "/api/folders", nil, &folders)
	if len(folders) != 1 || folders[0].Name != "Home" {
		t.Fatalf("unexpected folders %+v", folders)
	}

	resp = env.doJSON(t, http.MethodDelete, "/api/folders/"+created.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	env.doJSON(t, http.MethodGet, "/api/folders", nil, &folders)
	if len(folders) != 0 {
		t.Fatalf("expected no folders, got %d", len(folders))
	}
}

func TestUpdateUnknownFolderAnswersNull(t *testing.T) {
	env := newTestEnv(t)
	updated := &library.Folder{}
	resp := env.doJSON(t, http.MethodPut, "/api/folders/nope", library.Folder{Name: "x"}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if updated != nil {
		t.Fatalf("expected null, got %+v", updated)
	}
}

func TestDeleteUnknownFolderIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	resp := env.doJSON(t, http.MethodDelete, "/api/folders/nope", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCreateFolderBadBody(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Post(env.srv.URL+"/api/folders", "application/json", strings.NewReader("not-json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
