package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"prompt-keeper/library"
)

// SQLStore keeps the three collections in SQLite tables. Writes are per
// record; list order is insertion order (rowid), which upserts preserve.
type SQLStore struct {
	db *sql.DB
}

var _ library.Store = (*SQLStore)(nil)

// NewSQLStore opens the database at dbPath with the named database/sql
// driver ("sqlite" or "sqlite3"). The schema is created on first use.
func NewSQLStore(driver, dbPath string) (*SQLStore, error) {
	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS folders (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			color      TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS prompts (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			tags       TEXT NOT NULL DEFAULT '[]',
			folder_id  TEXT,
			source_url TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS presets (
			id         TEXT PRIMARY KEY,
			prompt_id  TEXT NOT NULL,
			name       TEXT NOT NULL,
			vals       TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_presets_prompt ON presets(prompt_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// --- Folders ---

func (s *SQLStore) ListFolders(ctx context.Context) ([]library.Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, created_at FROM folders ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []library.Folder{}
	for rows.Next() {
		var f library.Folder
		var created string
		if err := rows.Scan(&f.ID, &f.Name, &f.Color, &created); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		if f.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("folder %s: %w", f.ID, err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (s *SQLStore) PutFolder(ctx context.Context, f library.Folder) (library.Folder, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO folders (id, name, color, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET name = excluded.name, color = excluded.color, created_at = excluded.created_at`,
		f.ID, f.Name, f.Color, formatTime(f.CreatedAt),
	)
	if err != nil {
		return library.Folder{}, fmt.Errorf("put folder %s: %w", f.ID, err)
	}
	return f, nil
}

func (s *SQLStore) RemoveFolder(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove folder %s: %w", id, err)
	}
	return nil
}

// --- Prompts ---

func (s *SQLStore) ListPrompts(ctx context.Context) ([]library.Prompt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, body, tags, folder_id, source_url, created_at, updated_at
		 FROM prompts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	prompts := []library.Prompt{}
	for rows.Next() {
		var (
			p                library.Prompt
			tags             string
			folderID, source sql.NullString
			created, updated string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &tags, &folderID, &source, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, fmt.Errorf("prompt %s tags: %w", p.ID, err)
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		p.FolderID = nullable(folderID)
		p.SourceURL = nullable(source)
		if p.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("prompt %s: %w", p.ID, err)
		}
		if p.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, fmt.Errorf("prompt %s: %w", p.ID, err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

func (s *SQLStore) PutPrompt(ctx context.Context, p library.Prompt) (library.Prompt, error) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return library.Prompt{}, fmt.Errorf("encode tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO prompts (id, title, body, tags, folder_id, source_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET title = excluded.title, body = excluded.body, tags = excluded.tags,
		     folder_id = excluded.folder_id, source_url = excluded.source_url,
		     created_at = excluded.created_at, updated_at = excluded.updated_at`,
		p.ID, p.Title, p.Body, string(tags), p.FolderID, p.SourceURL,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return library.Prompt{}, fmt.Errorf("put prompt %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *SQLStore) RemovePrompt(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove prompt %s: %w", id, err)
	}
	return nil
}

// --- Presets ---

func (s *SQLStore) ListPresets(ctx context.Context, promptID string) ([]library.Preset, error) {
	query := `SELECT id, prompt_id, name, vals, created_at FROM presets`
	var args []any
	if promptID != "" {
		query += ` WHERE prompt_id = ?`
		args = append(args, promptID)
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	presets := []library.Preset{}
	for rows.Next() {
		var p library.Preset
		var vals, created string
		if err := rows.Scan(&p.ID, &p.PromptID, &p.Name, &vals, &created); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		if err := json.Unmarshal([]byte(vals), &p.Values); err != nil {
			return nil, fmt.Errorf("preset %s values: %w", p.ID, err)
		}
		if p.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("preset %s: %w", p.ID, err)
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

func (s *SQLStore) PutPreset(ctx context.Context, p library.Preset) (library.Preset, error) {
	if p.Values == nil {
		p.Values = map[string]string{}
	}
	vals, err := json.Marshal(p.Values)
	if err != nil {
		return library.Preset{}, fmt.Errorf("encode values: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO presets (id, prompt_id, name, vals, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET prompt_id = excluded.prompt_id, name = excluded.name,
		     vals = excluded.vals, created_at = excluded.created_at`,
		p.ID, p.PromptID, p.Name, string(vals), formatTime(p.CreatedAt),
	)
	if err != nil {
		return library.Preset{}, fmt.Errorf("put preset %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *SQLStore) RemovePreset(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove preset %s: %w", id, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
