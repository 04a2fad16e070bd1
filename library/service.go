// Package library holds the prompt, folder and preset model and the service
// that enforces its invariants on top of a Store.
package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service implements Library over a Store. It assigns ids and timestamps,
// normalises tags and deletes a prompt's presets with the prompt. It never
// retries a failed store call.
type Service struct {
	store  Store
	now    func() time.Time
	notify Notifier
}

var _ Library = (*Service)(nil)

// NewService returns a Service writing through store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// NewServiceWithClock is NewService with a custom time source.
func NewServiceWithClock(store Store, now func() time.Time) *Service {
	return &Service{store: store, now: now}
}

// SetNotifier registers n to receive a Change after every mutation.
func (s *Service) SetNotifier(n Notifier) {
	s.notify = n
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Service) emit(collection, id, op string) {
	if s.notify != nil {
		s.notify.Notify(Change{Collection: collection, ID: id, Op: op})
	}
}

func newID() string {
	return uuid.New().String()
}

// --- Folders ---

func (s *Service) ListFolders(ctx context.Context) ([]Folder, error) {
	folders, err := s.store.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (s *Service) CreateFolder(ctx context.Context, name, color string) (Folder, error) {
	f := Folder{
		ID:        newID(),
		Name:      name,
		Color:     color,
		CreatedAt: s.timestamp(),
	}
	saved, err := s.store.PutFolder(ctx, f)
	if err != nil {
		return Folder{}, fmt.Errorf("create folder: %w", err)
	}
	s.emit(CollectionFolders, saved.ID, OpPut)
	return saved, nil
}

// UpdateFolder replaces the name and color of the folder with f.ID. It
// returns nil and no error when no such folder exists.
func (s *Service) UpdateFolder(ctx context.Context, f Folder) (*Folder, error) {
	folders, err := s.store.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("update folder: %w", err)
	}
	var current *Folder
	for i := range folders {
		if folders[i].ID == f.ID {
			current = &folders[i]
			break
		}
	}
	if current == nil {
		return nil, nil
	}

	f.CreatedAt = current.CreatedAt
	saved, err := s.store.PutFolder(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("update folder %s: %w", f.ID, err)
	}
	s.emit(CollectionFolders, saved.ID, OpPut)
	return &saved, nil
}

// DeleteFolder removes the folder only. Prompts keep their folder id.
func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	if err := s.store.RemoveFolder(ctx, id); err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}
	s.emit(CollectionFolders, id, OpRemove)
	return nil
}

// --- Prompts ---

func (s *Service) ListPrompts(ctx context.Context, filter Filter) ([]Prompt, error) {
	prompts, err := s.store.ListPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return filter.Apply(prompts), nil
}

func (s *Service) GetPrompt(ctx context.Context, id string) (Prompt, error) {
	prompts, err := s.store.ListPrompts(ctx)
	if err != nil {
		return Prompt{}, fmt.Errorf("get prompt %s: %w", id, err)
	}
	for _, p := range prompts {
		if p.ID == id {
			return p, nil
		}
	}
	return Prompt{}, ErrNotFound
}

func (s *Service) CreatePrompt(ctx context.Context, in PromptInput) (Prompt, error) {
	now := s.timestamp()
	p := Prompt{
		ID:        newID(),
		Title:     in.Title,
		Body:      in.Body,
		Tags:      NormalizeTags(in.Tags),
		FolderID:  in.FolderID,
		SourceURL: in.SourceURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	saved, err := s.store.PutPrompt(ctx, p)
	if err != nil {
		return Prompt{}, fmt.Errorf("create prompt: %w", err)
	}
	s.emit(CollectionPrompts, saved.ID, OpPut)
	return saved, nil
}

// UpdatePrompt replaces the stored prompt with p.ID. CreatedAt is kept from
// the stored record and UpdatedAt is always set by the service, never taken
// from p. It returns nil and no error when no such prompt exists.
func (s *Service) UpdatePrompt(ctx context.Context, p Prompt) (*Prompt, error) {
	current, err := s.GetPrompt(ctx, p.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update prompt: %w", err)
	}

	now := s.timestamp()
	if now.Before(current.UpdatedAt) {
		now = current.UpdatedAt
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = now
	p.Tags = NormalizeTags(p.Tags)

	saved, err := s.store.PutPrompt(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update prompt %s: %w", p.ID, err)
	}
	s.emit(CollectionPrompts, saved.ID, OpPut)
	return &saved, nil
}

// DeletePrompt removes the prompt and then every preset that belongs to it.
// Preset cleanup runs for all presets even if one removal fails; the
// failures are returned joined.
func (s *Service) DeletePrompt(ctx context.Context, id string) error {
	if err := s.store.RemovePrompt(ctx, id); err != nil {
		return fmt.Errorf("delete prompt %s: %w", id, err)
	}
	s.emit(CollectionPrompts, id, OpRemove)

	presets, err := s.store.ListPresets(ctx, id)
	if err != nil {
		return fmt.Errorf("delete presets of prompt %s: %w", id, err)
	}
	var errs []error
	for _, p := range presets {
		if err := s.store.RemovePreset(ctx, p.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete preset %s: %w", p.ID, err))
			continue
		}
		s.emit(CollectionPresets, p.ID, OpRemove)
	}
	return errors.Join(errs...)
}

// --- Presets ---

// ListPresets returns the presets of promptID. An unknown prompt yields an
// empty slice.
func (s *Service) ListPresets(ctx context.Context, promptID string) ([]Preset, error) {
	presets, err := s.store.ListPresets(ctx, promptID)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	if presets == nil {
		presets = []Preset{}
	}
	return presets, nil
}

func (s *Service) GetPreset(ctx context.Context, id string) (Preset, error) {
	presets, err := s.store.ListPresets(ctx, "")
	if err != nil {
		return Preset{}, fmt.Errorf("get preset %s: %w", id, err)
	}
	for _, p := range presets {
		if p.ID == id {
			return p, nil
		}
	}
	return Preset{}, ErrNotFound
}

// CreatePreset saves values under name for promptID. The prompt is not
// checked for existence.
func (s *Service) CreatePreset(ctx context.Context, promptID, name string, values map[string]string) (Preset, error) {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	p := Preset{
		ID:        newID(),
		PromptID:  promptID,
		Name:      name,
		Values:    copied,
		CreatedAt: s.timestamp(),
	}
	saved, err := s.store.PutPreset(ctx, p)
	if err != nil {
		return Preset{}, fmt.Errorf("create preset: %w", err)
	}
	s.emit(CollectionPresets, saved.ID, OpPut)
	return saved, nil
}

func (s *Service) DeletePreset(ctx context.Context, id string) error {
	if err := s.store.RemovePreset(ctx, id); err != nil {
		return fmt.Errorf("delete preset %s: %w", id, err)
	}
	s.emit(CollectionPresets, id, OpRemove)
	return nil
}

// Tags counts the distinct tags across all prompts.
func (s *Service) Tags(ctx context.Context) ([]TagCount, error) {
	prompts, err := s.store.ListPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return CountTags(prompts), nil
}
