package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"prompt-keeper/api"
	"prompt-keeper/library"
	"prompt-keeper/logger"
	"prompt-keeper/session"
	"prompt-keeper/storage"
	"prompt-keeper/watch"
)

type testEnv struct {
	srv      *httptest.Server
	svc      *library.Service
	sessions *session.Manager
	hub      *watch.Hub
	dir      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDelay(t, 20*time.Millisecond)
}

func newTestEnvWithDelay(t *testing.T, delay time.Duration) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	svc := library.NewService(store)
	hub := watch.NewHub()
	svc.SetNotifier(hub)
	log := logger.NewNop()
	sessions := session.NewManager(svc.UpdatePrompt, delay, log)

	info := api.Info{DataDir: dir, Backend: storage.BackendFile}
	srv := httptest.NewServer(api.RegisterRoutes(svc, sessions, hub, info, log))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, svc: svc, sessions: sessions, hub: hub, dir: dir}
}

// doJSON sends body as JSON and decodes a 2xx response into out.
func (e *testEnv) doJSON(t *testing.T, method, path string, body, out any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp
}

func (e *testEnv) createPrompt(t *testing.T, in library.PromptInput) library.Prompt {
	t.Helper()
	var p library.Prompt
	resp := e.doJSON(t, http.MethodPost, "/api/prompts", in, &p)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create prompt: expected 201, got %d", resp.StatusCode)
	}
	return p
}

func (e *testEnv) dialWS(t *testing.T, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + path
	return websocket.DefaultDialer.Dial(wsURL, nil)
}
