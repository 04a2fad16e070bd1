package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"prompt-keeper/library"
	"prompt-keeper/remote"
)

const (
	remoteAttempts = 3
	remoteDelay    = 500 * time.Millisecond
)

// retryingLibrary retries the read operations of a remote library. Writes
// are sent once since they are not idempotent.
type retryingLibrary struct {
	library.Library
	attempts uint
	delay    time.Duration
}

func withRetry(lib library.Library, attempts uint, delay time.Duration) library.Library {
	return &retryingLibrary{Library: lib, attempts: attempts, delay: delay}
}

// retryable reports whether err may go away on its own: transport failures
// and 5xx responses.
func retryable(err error) bool {
	if errors.Is(err, library.ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *remote.StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError
	}
	return true
}

func (r *retryingLibrary) read(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
	)
}

func (r *retryingLibrary) ListFolders(ctx context.Context) ([]library.Folder, error) {
	var out []library.Folder
	err := r.read(ctx, func() (err error) {
		out, err = r.Library.ListFolders(ctx)
		return err
	})
	return out, err
}

func (r *retryingLibrary) ListPrompts(ctx context.Context, filter library.Filter) ([]library.Prompt, error) {
	var out []library.Prompt
	err := r.read(ctx, func() (err error) {
		out, err = r.Library.ListPrompts(ctx, filter)
		return err
	})
	return out, err
}

func (r *retryingLibrary) GetPrompt(ctx context.Context, id string) (library.Prompt, error) {
	var out library.Prompt
	err := r.read(ctx, func() (err error) {
		out, err = r.Library.GetPrompt(ctx, id)
		return err
	})
	return out, err
}

func (r *retryingLibrary) ListPresets(ctx context.Context, promptID string) ([]library.Preset, error) {
	var out []library.Preset
	err := r.read(ctx, func() (err error) {
		out, err = r.Library.ListPresets(ctx, promptID)
		return err
	})
	return out, err
}

func (r *retryingLibrary) GetPreset(ctx context.Context, id string) (library.Preset, error) {
	var out library.Preset
	err := r.read(ctx, func() (err error) {
		out, err = r.Library.GetPreset(ctx, id)
		return err
	})
	return out, err
}

func (r *retryingLibrary) Tags(ctx context.Context) ([]library.TagCount, error) {
	var out []library.TagCount
	err := r.read(ctx, func() (err error) {
		out, err = r.Library.Tags(ctx)
		return err
	})
	return out, err
}
