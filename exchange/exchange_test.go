package exchange

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"prompt-keeper/library"
	"prompt-keeper/storage"
)

func newTestLibrary(t *testing.T) *library.Service {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return library.NewService(store)
}

func seed(t *testing.T, lib *library.Service) (library.Folder, library.Prompt) {
	t.Helper()
	ctx := context.Background()
	f, err := lib.CreateFolder(ctx, "Work", "#ff0000")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	p, err := lib.CreatePrompt(ctx, library.PromptInput{
		Title:    "Email",
		Body:     "Dear [name], I am [tone].",
		Tags:     []string{"mail"},
		FolderID: &f.ID,
	})
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if _, err := lib.CreatePreset(ctx, p.ID, "formal", map[string]string{"tone": "pleased"}); err != nil {
		t.Fatalf("CreatePreset: %v", err)
	}
	return f, p
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, format := range []string{FormatYAML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			src := newTestLibrary(t)
			seed(t, src)

			b, err := Export(ctx, src)
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			var buf bytes.Buffer
			if err := Encode(&buf, b, format); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			decoded, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}

			dst := newTestLibrary(t)
			res, err := Import(ctx, dst, decoded)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if res.Folders != 1 || res.Prompts != 1 || res.Presets != 1 || res.SkippedPresets != 0 {
				t.Fatalf("unexpected result %+v", res)
			}

			folders, _ := dst.ListFolders(ctx)
			prompts, _ := dst.ListPrompts(ctx, library.Filter{})
			presets, _ := dst.ListPresets(ctx, "")
			if len(folders) != 1 || len(prompts) != 1 || len(presets) != 1 {
				t.Fatalf("expected 1/1/1 records, got %d/%d/%d", len(folders), len(prompts), len(presets))
			}
			if prompts[0].Body != "Dear [name], I am [tone]." {
				t.Fatalf("body not preserved: %q", prompts[0].Body)
			}
			if presets[0].Values["tone"] != "pleased" {
				t.Fatalf("preset values not preserved: %v", presets[0].Values)
			}
		})
	}
}

func TestImportRemapsReferences(t *testing.T) {
	ctx := context.Background()
	src := newTestLibrary(t)
	f, p := seed(t, src)
	b, err := Export(ctx, src)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := newTestLibrary(t)
	if _, err := Import(ctx, dst, b); err != nil {
		t.Fatalf("Import: %v", err)
	}
	folders, _ := dst.ListFolders(ctx)
	prompts, _ := dst.ListPrompts(ctx, library.Filter{})
	presets, _ := dst.ListPresets(ctx, "")

	if folders[0].ID == f.ID || prompts[0].ID == p.ID {
		t.Fatal("expected fresh ids on import")
	}
	if prompts[0].FolderID == nil || *prompts[0].FolderID != folders[0].ID {
		t.Fatalf("expected folder id remapped to %s, got %v", folders[0].ID, prompts[0].FolderID)
	}
	if presets[0].PromptID != prompts[0].ID {
		t.Fatalf("expected preset prompt id remapped to %s, got %s", prompts[0].ID, presets[0].PromptID)
	}
}

func TestImportSkipsOrphanPresets(t *testing.T) {
	dangling := "gone-folder"
	b := Bundle{
		Version: Version,
		Prompts: []library.Prompt{{ID: "p1", Title: "kept", FolderID: &dangling}},
		Presets: []library.Preset{
			{ID: "s1", PromptID: "p1", Name: "ok"},
			{ID: "s2", PromptID: "missing", Name: "orphan"},
		},
	}
	dst := newTestLibrary(t)
	res, err := Import(context.Background(), dst, b)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Presets != 1 || res.SkippedPresets != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	prompts, _ := dst.ListPrompts(context.Background(), library.Filter{})
	if prompts[0].FolderID == nil || *prompts[0].FolderID != dangling {
		t.Fatalf("expected dangling folder id kept, got %v", prompts[0].FolderID)
	}
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	_, err := Decode(strings.NewReader("version: 99\n"), FormatYAML)
	if err == nil {
		t.Fatal("expected error for newer bundle version")
	}
}

func TestDecodeEmptyYAML(t *testing.T) {
	b, err := Decode(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(b.Prompts) != 0 {
		t.Fatalf("expected empty bundle, got %+v", b)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("YML"); err != nil || f != FormatYAML {
		t.Fatalf("ParseFormat(YML) = %q, %v", f, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Fatalf("ParseFormat(json) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
	if FormatFromPath("lib.JSON") != FormatJSON || FormatFromPath("lib.yaml") != FormatYAML {
		t.Fatal("FormatFromPath mismatch")
	}
}
