// Package wizard collects project configuration interactively for the
// init command.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/clausegrade/clausegrade/internal/projectconfig"
)

// RunConfigWizard runs an interactive huh form to collect project
// settings, starting from the defaults.
func RunConfigWizard(in io.Reader, out io.Writer) (*projectconfig.Config, error) {
	cfg := projectconfig.New()

	var (
		model        = cfg.Model.Name
		baseURL      string
		databasePath = cfg.Database.Path
		portRaw      = strconv.Itoa(cfg.Server.Port)
		workersRaw   = strconv.Itoa(cfg.Batch.Workers)
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Model").
				Description("Ollama model used to grade suggestions").
				Placeholder(projectconfig.DefaultModel).
				Value(&model).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("model is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Backend URL").
				Description("Ollama address, empty for OLLAMA_HOST / local default").
				Placeholder("http://127.0.0.1:11434").
				Value(&baseURL),
			huh.NewInput().
				Title("Database path").
				Description("SQLite file holding stored evaluations").
				Placeholder(projectconfig.DefaultDatabasePath).
				Value(&databasePath),
			huh.NewInput().
				Title("API port").
				Value(&portRaw).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Batch workers").
				Description("Concurrent evaluations during batch runs").
				Value(&workersRaw).
				Validate(validatePositiveInt),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	cfg.Model.Name = strings.TrimSpace(model)
	cfg.Model.BaseURL = strings.TrimSpace(baseURL)
	if p := strings.TrimSpace(databasePath); p != "" {
		cfg.Database.Path = p
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portRaw))
	cfg.Batch.Workers, _ = strconv.Atoi(strings.TrimSpace(workersRaw))
	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}
