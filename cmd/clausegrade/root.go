package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "clausegrade",
		Short: "clausegrade - evaluate LLM-generated clause suggestions",
		Long: `clausegrade evaluates LLM-generated legal clause suggestions.

It grades each suggestion against its originating request with a local
Ollama model, scoring rule compliance, edit minimality, and example
usage, and persists the results to a SQLite database. Results are
available through a CLI batch runner and an HTTP API.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to clausegrade.yaml (default: ./clausegrade.yaml)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newPullCommand(opts))
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
