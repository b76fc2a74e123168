// Package cmd provides the sqlask command-line interface.
//
// Commands share one configuration loader and one way of wiring the
// database, schema cache, model client and pipeline together.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "sqlask",
	Short:         "Ask questions about your database in plain language",
	Long:          `sqlask turns a natural-language question into one read-only SELECT, runs it and explains the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Startup failures exit non-zero; answered questions
// exit zero whatever their outcome.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
