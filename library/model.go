package library

import (
	"context"
	"errors"
	"time"
)

// Folder groups prompts. Deleting a folder leaves its prompts pointing at a
// folder id that no longer exists; consumers treat that as "no folder".
type Folder struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Color     string    `json:"color" yaml:"color"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Prompt is a text template that may contain [variable] placeholders.
type Prompt struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Body      string    `json:"body" yaml:"body"`
	Tags      []string  `json:"tags" yaml:"tags"`
	FolderID  *string   `json:"folderId" yaml:"folderId"`
	SourceURL *string   `json:"sourceUrl" yaml:"sourceUrl"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// PromptInput holds the caller-controlled fields of a new prompt.
type PromptInput struct {
	Title     string   `json:"title" yaml:"title"`
	Body      string   `json:"body" yaml:"body"`
	Tags      []string `json:"tags" yaml:"tags"`
	FolderID  *string  `json:"folderId" yaml:"folderId"`
	SourceURL *string  `json:"sourceUrl" yaml:"sourceUrl"`
}

// Preset is a named set of variable values saved for one prompt.
type Preset struct {
	ID        string            `json:"id" yaml:"id"`
	PromptID  string            `json:"promptId" yaml:"promptId"`
	Name      string            `json:"name" yaml:"name"`
	Values    map[string]string `json:"values" yaml:"values"`
	CreatedAt time.Time         `json:"createdAt" yaml:"createdAt"`
}

// TagCount is a distinct tag and the number of prompts carrying it.
type TagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// Filter narrows ListPrompts. Zero fields match everything.
type Filter struct {
	FolderID string
	Tag      string
	Query    string
}

// Collection names, used for change notifications and storage file names.
const (
	CollectionFolders = "folders"
	CollectionPrompts = "prompts"
	CollectionPresets = "presets"
)

// Change operations.
const (
	OpPut    = "put"
	OpRemove = "remove"
	OpReload = "reload"
)

// Change describes a mutation of one record, or a whole-collection reload
// when ID is empty.
type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id,omitempty"`
	Op         string `json:"op"`
}

// ErrNotFound is returned by single-record reads. Updates and deletes of
// unknown ids never return it.
var ErrNotFound = errors.New("record not found")

// Store is the persistence collaborator. Put inserts or replaces by id and
// keeps insertion order; Remove of an unknown id is a no-op.
type Store interface {
	ListFolders(ctx context.Context) ([]Folder, error)
	PutFolder(ctx context.Context, f Folder) (Folder, error)
	RemoveFolder(ctx context.Context, id string) error

	ListPrompts(ctx context.Context) ([]Prompt, error)
	PutPrompt(ctx context.Context, p Prompt) (Prompt, error)
	RemovePrompt(ctx context.Context, id string) error

	// ListPresets returns every preset when promptID is empty.
	ListPresets(ctx context.Context, promptID string) ([]Preset, error)
	PutPreset(ctx context.Context, p Preset) (Preset, error)
	RemovePreset(ctx context.Context, id string) error

	Close() error
}

// Library is the full set of prompt-management operations. It is satisfied
// by *Service over a local Store and by the HTTP client in package remote.
type Library interface {
	ListFolders(ctx context.Context) ([]Folder, error)
	CreateFolder(ctx context.Context, name, color string) (Folder, error)
	UpdateFolder(ctx context.Context, f Folder) (*Folder, error)
	DeleteFolder(ctx context.Context, id string) error

	ListPrompts(ctx context.Context, filter Filter) ([]Prompt, error)
	GetPrompt(ctx context.Context, id string) (Prompt, error)
	CreatePrompt(ctx context.Context, in PromptInput) (Prompt, error)
	UpdatePrompt(ctx context.Context, p Prompt) (*Prompt, error)
	DeletePrompt(ctx context.Context, id string) error

	ListPresets(ctx context.Context, promptID string) ([]Preset, error)
	GetPreset(ctx context.Context, id string) (Preset, error)
	CreatePreset(ctx context.Context, promptID, name string, values map[string]string) (Preset, error)
	DeletePreset(ctx context.Context, id string) error

	Tags(ctx context.Context) ([]TagCount, error)
}

// Notifier receives a Change after each successful mutation.
type Notifier interface {
	Notify(c Change)
}
