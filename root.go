package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"prompt-keeper/config"
	"prompt-keeper/library"
	"prompt-keeper/logger"
	"prompt-keeper/remote"
	"prompt-keeper/storage"
)

var (
	cfgFile      string
	outputFormat string

	cfg config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prompt-keeper",
	Short: "Personal prompt library with [variable] templates",
	Long: `prompt-keeper stores prompt templates in folders and tags, fills their
[variable] placeholders, and keeps named presets of values per prompt.

Run "prompt-keeper serve" for the HTTP API, or use the commands below
against the configured backend (local files, SQLite or a remote server).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}
		if log, err = logger.New(cfg.LogMode); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		switch outputFormat {
		case "yaml", "json":
		default:
			return fmt.Errorf("unknown output format %q (want yaml or json)", outputFormat)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.prompt-keeper/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
}

// openLibrary returns the configured backend. The close func must be called
// when done.
func openLibrary(c config.Config) (library.Library, func() error, error) {
	if c.Backend == "remote" {
		client := remote.New(c.RemoteURL, nil)
		return withRetry(client, remoteAttempts, remoteDelay), func() error { return nil }, nil
	}
	store, err := storage.Open(storage.Options{
		Backend: c.Backend,
		DataDir: c.DataDir,
		Driver:  c.SQLiteDriver,
	})
	if err != nil {
		return nil, nil, err
	}
	return library.NewService(store), store.Close, nil
}

// output writes v in the --output format.
func output(w io.Writer, v any) error {
	if outputFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
