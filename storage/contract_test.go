package storage_test

import (
	"context"
	"testing"
	"time"

	"prompt-keeper/library"
)

// runStoreContract exercises the behaviour every library.Store must share.
func runStoreContract(t *testing.T, open func(t *testing.T) library.Store) {
	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("EmptyCollections", func(t *testing.T) {
		s := open(t)
		folders, err := s.ListFolders(ctx)
		if err != nil || len(folders) != 0 {
			t.Fatalf("expected no folders, got %v (err %v)", folders, err)
		}
		prompts, err := s.ListPrompts(ctx)
		if err != nil || len(prompts) != 0 {
			t.Fatalf("expected no prompts, got %v (err %v)", prompts, err)
		}
		presets, err := s.ListPresets(ctx, "")
		if err != nil || len(presets) != 0 {
			t.Fatalf("expected no presets, got %v (err %v)", presets, err)
		}
	})

	t.Run("PutReplacesInPlace", func(t *testing.T) {
		s := open(t)
		for _, id := range []string{"a", "b", "c"} {
			if _, err := s.PutFolder(ctx, library.Folder{ID: id, Name: id, Color: "#fff", CreatedAt: ts}); err != nil {
				t.Fatalf("PutFolder %s: %v", id, err)
			}
		}
		if _, err := s.PutFolder(ctx, library.Folder{ID: "b", Name: "renamed", Color: "#000", CreatedAt: ts}); err != nil {
			t.Fatalf("PutFolder replace: %v", err)
		}
		folders, _ := s.ListFolders(ctx)
		if len(folders) != 3 {
			t.Fatalf("expected 3 folders, got %d", len(folders))
		}
		if folders[1].ID != "b" || folders[1].Name != "renamed" {
			t.Fatalf("expected b replaced in place, got %+v", folders)
		}
		if !folders[0].CreatedAt.Equal(ts) {
			t.Fatalf("createdAt not preserved: %v", folders[0].CreatedAt)
		}
	})

	t.Run("PromptRoundTrip", func(t *testing.T) {
		s := open(t)
		folder := "f1"
		p := library.Prompt{
			ID:        "p1",
			Title:     "Email",
			Body:      "Write a [tone] email",
			Tags:      []string{"work", "email"},
			FolderID:  &folder,
			CreatedAt: ts,
			UpdatedAt: ts.Add(time.Minute),
		}
		if _, err := s.PutPrompt(ctx, p); err != nil {
			t.Fatalf("PutPrompt: %v", err)
		}
		prompts, err := s.ListPrompts(ctx)
		if err != nil {
			t.Fatalf("ListPrompts: %v", err)
		}
		if len(prompts) != 1 {
			t.Fatalf("expected 1 prompt, got %d", len(prompts))
		}
		got := prompts[0]
		if got.Title != "Email" || got.Body != p.Body {
			t.Fatalf("unexpected prompt %+v", got)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "email" {
			t.Fatalf("unexpected tags %v", got.Tags)
		}
		if got.FolderID == nil || *got.FolderID != "f1" {
			t.Fatalf("expected folderId f1, got %v", got.FolderID)
		}
		if got.SourceURL != nil {
			t.Fatalf("expected nil sourceUrl, got %v", *got.SourceURL)
		}
		if !got.UpdatedAt.Equal(ts.Add(time.Minute)) {
			t.Fatalf("unexpected updatedAt %v", got.UpdatedAt)
		}
	})

	t.Run("ListedValuesAreCopies", func(t *testing.T) {
		s := open(t)
		s.PutPrompt(ctx, library.Prompt{ID: "p1", Tags: []string{"a"}, CreatedAt: ts, UpdatedAt: ts})
		prompts, _ := s.ListPrompts(ctx)
		prompts[0].Tags[0] = "mutated"
		again, _ := s.ListPrompts(ctx)
		if again[0].Tags[0] != "a" {
			t.Fatalf("store aliased caller slice: %v", again[0].Tags)
		}
	})

	t.Run("PresetFilter", func(t *testing.T) {
		s := open(t)
		s.PutPreset(ctx, library.Preset{ID: "s1", PromptID: "p1", Name: "one", Values: map[string]string{"tone": "calm"}, CreatedAt: ts})
		s.PutPreset(ctx, library.Preset{ID: "s2", PromptID: "p2", Name: "two", Values: map[string]string{}, CreatedAt: ts})
		s.PutPreset(ctx, library.Preset{ID: "s3", PromptID: "p1", Name: "three", CreatedAt: ts})

		got, err := s.ListPresets(ctx, "p1")
		if err != nil {
			t.Fatalf("ListPresets: %v", err)
		}
		if len(got) != 2 || got[0].ID != "s1" || got[1].ID != "s3" {
			t.Fatalf("expected s1,s3, got %+v", got)
		}
		if got[0].Values["tone"] != "calm" {
			t.Fatalf("values not stored: %v", got[0].Values)
		}
		all, _ := s.ListPresets(ctx, "")
		if len(all) != 3 {
			t.Fatalf("expected 3 presets, got %d", len(all))
		}
		none, err := s.ListPresets(ctx, "unknown")
		if err != nil || len(none) != 0 {
			t.Fatalf("expected empty list for unknown prompt, got %v (err %v)", none, err)
		}
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		s := open(t)
		s.PutPrompt(ctx, library.Prompt{ID: "p1", CreatedAt: ts, UpdatedAt: ts})
		if err := s.RemovePrompt(ctx, "p1"); err != nil {
			t.Fatalf("RemovePrompt: %v", err)
		}
		if err := s.RemovePrompt(ctx, "p1"); err != nil {
			t.Fatalf("second RemovePrompt: %v", err)
		}
		if err := s.RemoveFolder(ctx, "nope"); err != nil {
			t.Fatalf("RemoveFolder unknown: %v", err)
		}
		if err := s.RemovePreset(ctx, "nope"); err != nil {
			t.Fatalf("RemovePreset unknown: %v", err)
		}
		prompts, _ := s.ListPrompts(ctx)
		if len(prompts) != 0 {
			t.Fatalf("expected no prompts, got %d", len(prompts))
		}
	})
}
