// Package cli wires the command tree and owns process exit codes.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/casualjim/etrade/internal/commands"
	"github.com/casualjim/etrade/internal/output"
	"github.com/casualjim/etrade/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags commands.GlobalFlags

	cmd := &cobra.Command{
		Use:           "etradectl",
		Short:         "Command-line interface for the E*TRADE API",
		Long:          "etradectl manages E*TRADE authentication and queries accounts, orders, transactions, and alerts.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			app, err := commands.NewApp(flags)
			if err != nil {
				return err
			}
			cmd.SetContext(commands.WithApp(cmd.Context(), app))
			return nil
		},
	}

	cmd.SetVersionTemplate(version.Full() + "\n")

	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	// Accept underscores as dashes, so --data_dir works like --data-dir.
	cmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	cmd.PersistentFlags().StringVarP(&flags.Mode, "mode", "m", "", "API environment: sandbox or live")
	cmd.PersistentFlags().StringVar(&flags.DataDir, "data-dir", "", "Directory for the fallback secret store")
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for info, -vv for debug)")

	cmd.AddCommand(
		commands.NewAuthCmd(),
		commands.NewAccountsCmd(),
		commands.NewOrdersCmd(),
		commands.NewMarketCmd(),
		commands.NewTransactionsCmd(),
		commands.NewAlertsCmd(),
		commands.NewConfigCmd(),
	)

	return cmd
}

// Execute runs the root command and exits with a code derived from the error
// class.
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		output.Err(os.Stderr, err)
		os.Exit(output.ExitCodeFor(err))
	}
}
