package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-markdown/internal/tags"
)

func newHTMLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "html [file]",
		Short: "Render Markdown as HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := getModule(cmd)
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, err := module.Service.ToHTML(cmd.Context(), input)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newMarkdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "md [file]",
		Short: "Convert HTML back into Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := getModule(cmd)
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, err := module.Service.ToMarkdown(cmd.Context(), input)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newRenderCmd() *cobra.Command {
	var (
		vars     []string
		showVars bool
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Expand {{< markdown >}} components in a text document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := getModule(cmd)
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			initial := make(map[string]any, len(vars))
			for _, pair := range vars {
				name, value, ok := strings.Cut(pair, "=")
				if !ok || strings.TrimSpace(name) == "" {
					return fmt.Errorf("invalid --var %q, expected name=value", pair)
				}
				initial[strings.TrimSpace(name)] = value
			}
			scope := tags.NewScope(initial)

			out, err := module.Container.TagHost().Render(cmd.Context(), input, scope)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !showVars {
				return nil
			}
			return writeJSON(cmd, scope.Variables())
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, "seed a variable as name=value (repeatable)")
	cmd.Flags().BoolVar(&showVars, "show-vars", false, "print the variables bound while rendering as JSON")
	return cmd
}

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective conversion settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := getModule(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]any{
				"settings":   module.Service.Settings(),
				"extensions": module.Service.Extensions(),
			})
		},
	}
}

func writeJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}
