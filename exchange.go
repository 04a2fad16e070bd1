package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prompt-keeper/exchange"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the whole library as a YAML or JSON bundle",
	Example: `  prompt-keeper export > library.yaml
  prompt-keeper export --format json --out library.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := exchange.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		lib, closeFn, err := openLibrary(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		b, err := exchange.Export(cmd.Context(), lib)
		if err != nil {
			return err
		}
		if exportOut == "" {
			return exchange.Encode(cmd.OutOrStdout(), b, format)
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		if err := exchange.Encode(f, b, format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("library exported", "file", exportOut,
			"prompts", len(b.Prompts), "folders", len(b.Folders), "presets", len(b.Presets))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add the records of a bundle to the library",
	Long: `Add every folder, prompt and preset of a bundle to the library. Records
get new ids; folder and prompt references are rewritten to match. The
format is taken from the file extension (.json, otherwise YAML).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		b, err := exchange.Decode(f, exchange.FormatFromPath(args[0]))
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		lib, closeFn, err := openLibrary(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := exchange.Import(cmd.Context(), lib, b)
		if err != nil {
			return err
		}
		if res.SkippedPresets > 0 {
			log.Warn("skipped presets of prompts missing from the bundle", "count", res.SkippedPresets)
		}
		return output(cmd.OutOrStdout(), res)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "bundle format: yaml or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to this file instead of stdout")

	rootCmd.AddCommand(exportCmd, importCmd)
}
