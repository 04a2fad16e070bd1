package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prompt-keeper/library"
	"prompt-keeper/variables"
)

var (
	listFolder string
	listTag    string
	listQuery  string

	resolvePreset string
	resolveSet    []string
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Prompt commands",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts",
	Example: `  prompt-keeper prompts list
  prompt-keeper prompts list --tag email --query follow-up`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, closeFn, err := openLibrary(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		prompts, err := lib.ListPrompts(cmd.Context(), library.Filter{
			FolderID: listFolder,
			Tag:      listTag,
			Query:    listQuery,
		})
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), prompts)
	},
}

var promptsVarsCmd = &cobra.Command{
	Use:   "vars <id>",
	Short: "List the [variables] of a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, closeFn, err := openLibrary(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		p, err := lib.GetPrompt(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("prompt %s: %w", args[0], err)
		}
		for _, name := range variables.Extract(p.Body) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var promptsResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Print a prompt with its [variables] filled",
	Long: `Print the prompt body with its [variables] filled. Values from --preset
are applied first and --set values override them. Variables left without a
value stay in brackets and are reported on stderr.`,
	Example: `  prompt-keeper prompts resolve 3f2a... --preset formal
  prompt-keeper prompts resolve 3f2a... --set name=Ana --set "tone=very calm"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := parseAssignments(resolveSet)
		if err != nil {
			return err
		}

		lib, closeFn, err := openLibrary(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx := cmd.Context()
		p, err := lib.GetPrompt(ctx, args[0])
		if err != nil {
			return fmt.Errorf("prompt %s: %w", args[0], err)
		}

		values := map[string]string{}
		if resolvePreset != "" {
			presets, err := lib.ListPresets(ctx, p.ID)
			if err != nil {
				return err
			}
			preset, ok := findPreset(presets, resolvePreset)
			if !ok {
				return fmt.Errorf("prompt %s has no preset named %q", p.ID, resolvePreset)
			}
			for k, v := range preset.Values {
				values[k] = v
			}
		}
		for k, v := range set {
			values[k] = v
		}

		if missing := variables.Missing(p.Body, values); len(missing) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "unfilled variables: %s\n", strings.Join(missing, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), variables.Resolve(p.Body, values))
		return nil
	},
}

func init() {
	promptsListCmd.Flags().StringVar(&listFolder, "folder", "", "only prompts in this folder id")
	promptsListCmd.Flags().StringVar(&listTag, "tag", "", "only prompts with this tag")
	promptsListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "search title, body and tags")

	promptsResolveCmd.Flags().StringVar(&resolvePreset, "preset", "", "apply the preset with this name")
	promptsResolveCmd.Flags().StringArrayVar(&resolveSet, "set", nil, "variable value as name=value (repeatable)")

	promptsCmd.AddCommand(promptsListCmd, promptsVarsCmd, promptsResolveCmd)
	rootCmd.AddCommand(promptsCmd)
}

// parseAssignments turns name=value pairs into a map. Names are trimmed the
// same way variable tokens are.
func parseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, want name=value", pair)
		}
		out[name] = value
	}
	return out, nil
}

func findPreset(presets []library.Preset, name string) (library.Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return library.Preset{}, false
}

