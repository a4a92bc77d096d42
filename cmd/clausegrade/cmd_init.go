package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clausegrade/clausegrade/internal/projectconfig"
	"github.com/clausegrade/clausegrade/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new clausegrade project",
		Long: `Initialize a new clausegrade project.

Creates a clausegrade.yaml config file and the data directories that
batch runs read suggestion pairs from.

Use --interactive to run a guided wizard that collects the model,
backend, and server settings.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run guided configuration wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	cfg := projectconfig.New()
	if interactive {
		wizardCfg, err := wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		cfg = wizardCfg
	}

	cfgData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	cfgPath := filepath.Join(dir, projectconfig.DefaultConfigFile)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	if err := os.WriteFile(cfgPath, cfgData, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfgPath, err)
	}

	requestDir := filepath.Join(dir, cfg.Data.Requests)
	responseDir := filepath.Join(dir, cfg.Data.Responses)
	if err := os.MkdirAll(requestDir, 0o755); err != nil {
		return fmt.Errorf("failed to create request directory: %w", err)
	}
	if err := os.MkdirAll(responseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create response directory: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Initialized clausegrade project:") //nolint:errcheck
	fmt.Fprintf(out, "  %s\n", cfgPath)                   //nolint:errcheck
	fmt.Fprintf(out, "  %s\n", requestDir)                //nolint:errcheck
	fmt.Fprintf(out, "  %s\n", responseDir)               //nolint:errcheck
	fmt.Fprintln(out, "Drop matching request/response JSON files into the data directories, then run 'clausegrade run'.") //nolint:errcheck

	return nil
}
