// Package exchange moves a whole prompt library in and out as a single
// YAML or JSON bundle.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"prompt-keeper/library"
)

// Version is the bundle format version written by Export.
const Version = 1

// Formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Bundle is a complete snapshot of a library.
type Bundle struct {
	Version    int              `json:"version" yaml:"version"`
	ExportedAt time.Time        `json:"exportedAt" yaml:"exportedAt"`
	Folders    []library.Folder `json:"folders" yaml:"folders"`
	Prompts    []library.Prompt `json:"prompts" yaml:"prompts"`
	Presets    []library.Preset `json:"presets" yaml:"presets"`
}

// Result counts what Import created.
type Result struct {
	Folders        int `json:"folders" yaml:"folders"`
	Prompts        int `json:"prompts" yaml:"prompts"`
	Presets        int `json:"presets" yaml:"presets"`
	SkippedPresets int `json:"skippedPresets" yaml:"skippedPresets"`
}

// FormatFromPath guesses the format from a file extension. Anything that is
// not .json is treated as YAML.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ParseFormat normalises a user-supplied format name. Empty means YAML.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want yaml or json)", s)
	}
}

// Encode writes b to w in the given format.
func Encode(w io.Writer, b Bundle, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Decode reads a bundle in the given format. Bundles from a newer format
// version are rejected.
func Decode(r io.Reader, format string) (Bundle, error) {
	var b Bundle
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&b)
	case FormatYAML, "":
		err = yaml.NewDecoder(r).Decode(&b)
		if err == io.EOF {
			err = nil
		}
	default:
		return Bundle{}, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return Bundle{}, fmt.Errorf("decode bundle: %w", err)
	}
	if b.Version > Version {
		return Bundle{}, fmt.Errorf("bundle version %d is newer than supported version %d", b.Version, Version)
	}
	return b, nil
}

// Export reads every folder, prompt and preset from lib.
func Export(ctx context.Context, lib library.Library) (Bundle, error) {
	folders, err := lib.ListFolders(ctx)
	if err != nil {
		return Bundle{}, fmt.Errorf("export folders: %w", err)
	}
	prompts, err := lib.ListPrompts(ctx, library.Filter{})
	if err != nil {
		return Bundle{}, fmt.Errorf("export prompts: %w", err)
	}
	presets, err := lib.ListPresets(ctx, "")
	if err != nil {
		return Bundle{}, fmt.Errorf("export presets: %w", err)
	}
	return Bundle{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		Folders:    folders,
		Prompts:    prompts,
		Presets:    presets,
	}, nil
}

// Import recreates the bundle's records in lib. Every record gets a fresh id
// and timestamps; folder and prompt references are rewritten to the new ids.
// A folder id not present in the bundle is kept as a dangling reference.
// Presets whose prompt is not in the bundle are skipped.
//
// Import stops at the first failure; records created before it remain.
func Import(ctx context.Context, lib library.Library, b Bundle) (Result, error) {
	var res Result

	folderIDs := make(map[string]string, len(b.Folders))
	for _, f := range b.Folders {
		created, err := lib.CreateFolder(ctx, f.Name, f.Color)
		if err != nil {
			return res, fmt.Errorf("import folder %q: %w", f.Name, err)
		}
		folderIDs[f.ID] = created.ID
		res.Folders++
	}

	promptIDs := make(map[string]string, len(b.Prompts))
	for _, p := range b.Prompts {
		in := library.PromptInput{
			Title:     p.Title,
			Body:      p.Body,
			Tags:      p.Tags,
			FolderID:  p.FolderID,
			SourceURL: p.SourceURL,
		}
		if p.FolderID != nil {
			if id, ok := folderIDs[*p.FolderID]; ok {
				in.FolderID = &id
			}
		}
		created, err := lib.CreatePrompt(ctx, in)
		if err != nil {
			return res, fmt.Errorf("import prompt %q: %w", p.Title, err)
		}
		promptIDs[p.ID] = created.ID
		res.Prompts++
	}

	for _, ps := range b.Presets {
		promptID, ok := promptIDs[ps.PromptID]
		if !ok {
			res.SkippedPresets++
			continue
		}
		if _, err := lib.CreatePreset(ctx, promptID, ps.Name, ps.Values); err != nil {
			return res, fmt.Errorf("import preset %q: %w", ps.Name, err)
		}
		res.Presets++
	}
	return res, nil
}
