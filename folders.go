package main

import (
	"github.com/spf13/cobra"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Folder commands",
}

var foldersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, closeFn, err := openLibrary(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		folders, err := lib.ListFolders(cmd.Context())
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), folders)
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Preset commands",
}

var presetsListCmd = &cobra.Command{
	Use:   "list <promptId>",
	Short: "List the presets of a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, closeFn, err := openLibrary(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		presets, err := lib.ListPresets(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), presets)
	},
}

func init() {
	foldersCmd.AddCommand(foldersListCmd)
	presetsCmd.AddCommand(presetsListCmd)
	rootCmd.AddCommand(foldersCmd, presetsCmd)
}
