// Package cli implements the markdown command line harness.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-markdown/cmd/markdown/internal/bootstrap"
)

type ctxKey string

const moduleKey ctxKey = "module"

var moduleBuilder = bootstrap.BuildModule

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command. Settings are loaded before any
// subcommand runs and the wired module is stashed in the command context.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "markdown",
		Short:         "Convert between Markdown and HTML",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			module, err := moduleBuilder(ctx, bootstrap.Options{ConfigPath: cfgPath})
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(ctx, moduleKey, module))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a settings file (yaml|toml|json)")

	cmd.AddCommand(newHTMLCmd())
	cmd.AddCommand(newMarkdownCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newSettingsCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

var errModuleMissing = errors.New("internal error: markdown module not initialized")

func getModule(cmd *cobra.Command) (*bootstrap.Module, error) {
	module, ok := cmd.Context().Value(moduleKey).(*bootstrap.Module)
	if !ok || module == nil {
		return nil, errModuleMissing
	}
	return module, nil
}

// readInput returns the named file, or the command's input stream when no
// file or "-" is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}
