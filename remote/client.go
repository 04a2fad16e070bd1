// Package remote talks to a prompt-keeper server over its JSON API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prompt-keeper/library"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client implements library.Library against a running server. The server
// assigns ids and timestamps.
type Client struct {
	base string
	http *http.Client
}

var _ library.Library = (*Client)(nil)

// New returns a client for the server at baseURL, e.g.
// "http://127.0.0.1:3001". A nil httpClient uses a client with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// do sends body (if non-nil) as JSON and decodes the response into out (if
// non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(msg)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// get maps a 404 to library.ErrNotFound.
func (c *Client) get(ctx context.Context, path string, out any) error {
	err := c.do(ctx, http.MethodGet, path, nil, out)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return library.ErrNotFound
	}
	return err
}

// --- Folders ---

func (c *Client) ListFolders(ctx context.Context) ([]library.Folder, error) {
	folders := []library.Folder{}
	if err := c.get(ctx, "/api/folders", &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (c *Client) CreateFolder(ctx context.Context, name, color string) (library.Folder, error) {
	var f library.Folder
	body := map[string]string{"name": name, "color": color}
	if err := c.do(ctx, http.MethodPost, "/api/folders", body, &f); err != nil {
		return library.Folder{}, err
	}
	return f, nil
}

func (c *Client) UpdateFolder(ctx context.Context, f library.Folder) (*library.Folder, error) {
	var out *library.Folder
	if err := c.do(ctx, http.MethodPut, "/api/folders/"+url.PathEscape(f.ID), f, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/folders/"+url.PathEscape(id), nil, nil)
}

// --- Prompts ---

func (c *Client) ListPrompts(ctx context.Context, filter library.Filter) ([]library.Prompt, error) {
	q := url.Values{}
	if filter.FolderID != "" {
		q.Set("folderId", filter.FolderID)
	}
	if filter.Tag != "" {
		q.Set("tag", filter.Tag)
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	path := "/api/prompts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	prompts := []library.Prompt{}
	if err := c.get(ctx, path, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

func (c *Client) GetPrompt(ctx context.Context, id string) (library.Prompt, error) {
	var p library.Prompt
	if err := c.get(ctx, "/api/prompts/"+url.PathEscape(id), &p); err != nil {
		return library.Prompt{}, err
	}
	return p, nil
}

func (c *Client) CreatePrompt(ctx context.Context, in library.PromptInput) (library.Prompt, error) {
	var p library.Prompt
	if err := c.do(ctx, http.MethodPost, "/api/prompts", in, &p); err != nil {
		return library.Prompt{}, err
	}
	return p, nil
}

func (c *Client) UpdatePrompt(ctx context.Context, p library.Prompt) (*library.Prompt, error) {
	var out *library.Prompt
	if err := c.do(ctx, http.MethodPut, "/api/prompts/"+url.PathEscape(p.ID), p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeletePrompt(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/prompts/"+url.PathEscape(id), nil, nil)
}

// --- Presets ---

func (c *Client) ListPresets(ctx context.Context, promptID string) ([]library.Preset, error) {
	path := "/api/presets"
	if promptID != "" {
		path += "?" + url.Values{"promptId": {promptID}}.Encode()
	}
	presets := []library.Preset{}
	if err := c.get(ctx, path, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

func (c *Client) GetPreset(ctx context.Context, id string) (library.Preset, error) {
	var p library.Preset
	if err := c.get(ctx, "/api/presets/"+url.PathEscape(id), &p); err != nil {
		return library.Preset{}, err
	}
	return p, nil
}

func (c *Client) CreatePreset(ctx context.Context, promptID, name string, values map[string]string) (library.Preset, error) {
	var p library.Preset
	body := struct {
		PromptID string            `json:"promptId"`
		Name     string            `json:"name"`
		Values   map[string]string `json:"values"`
	}{promptID, name, values}
	if err := c.do(ctx, http.MethodPost, "/api/presets", body, &p); err != nil {
		return library.Preset{}, err
	}
	return p, nil
}

func (c *Client) DeletePreset(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/presets/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Tags(ctx context.Context) ([]library.TagCount, error) {
	tags := []library.TagCount{}
	if err := c.get(ctx, "/api/tags", &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Info is the server's /api/info response.
type Info struct {
	DataDir string `json:"dataDir"`
	Backend string `json:"backend"`
}

func (c *Client) Info(ctx context.Context) (Info, error) {
	var info Info
	err := c.get(ctx, "/api/info", &info)
	return info, err
}
