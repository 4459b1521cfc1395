package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/casualjim/etrade/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update configuration",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration and where each value came from",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			cfg := a.Config
			source := func(key string) string {
				if s, ok := cfg.Sources[key]; ok {
					return s
				}
				return string(config.SourceDefault)
			}

			return a.Out.Result(map[string]any{
				"mode":     cfg.Mode,
				"data_dir": cfg.DataDir,
				"format":   cfg.Format,
				"sources":  cfg.Sources,
				"path":     config.Path(),
			}, func(w io.Writer) error {
				fmt.Fprintf(w, "config file: %s\n", config.Path())
				fmt.Fprintf(w, "mode:     %s (%s)\n", cfg.Mode, source("mode"))
				fmt.Fprintf(w, "data_dir: %s (%s)\n", cfg.DataDir, source("data_dir"))
				fmt.Fprintf(w, "format:   %s (%s)\n", cfg.Format, source("format"))
				return nil
			})
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a configuration value",
		Long:  "Write a value to the config file. Keys: mode, data_dir, format.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := config.Set(key, value); err != nil {
				return err
			}

			return a.Out.Result(map[string]string{key: value}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s = %s\n", key, value)
				return err
			})
		},
	}
}
