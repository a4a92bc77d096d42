package projectconfig

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultConfigFile))
	require.Error(t, err, "explicitly named missing file should fail")

	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, DefaultModel, cfg.Model.Name)
	require.Equal(t, DefaultTimeoutSec, cfg.Model.TimeoutSec)
	require.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	require.Equal(t, DefaultHost, cfg.Server.Host)
	require.Equal(t, DefaultPort, cfg.Server.Port)
	require.Equal(t, DefaultRequestDir, cfg.Data.Requests)
	require.Equal(t, DefaultResponseDir, cfg.Data.Responses)
	require.Equal(t, DefaultWorkers, cfg.Batch.Workers)
	require.InDelta(t, 1.0, cfg.Evaluation.Weights.Sum(), 1e-9)
}

func TestLoadMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clausegrade.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  name: mistral:7b
server:
  port: 9001
evaluation:
  weights:
    compliance: 0.5
    minimal_edits: 0.25
    example_usage: 0.25
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	// explicitly set fields win
	require.Equal(t, "mistral:7b", cfg.Model.Name)
	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, 0.5, cfg.Evaluation.Weights.Compliance)
	require.Equal(t, 0.25, cfg.Evaluation.Weights.MinimalEdits)

	// untouched fields keep defaults
	require.Equal(t, DefaultTimeoutSec, cfg.Model.TimeoutSec)
	require.Equal(t, DefaultHost, cfg.Server.Host)
	require.Equal(t, DefaultDatabasePath, cfg.Database.Path)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clausegrade.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadWarnsOnWeightSum(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "clausegrade.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
evaluation:
  weights:
    compliance: 1.0
    minimal_edits: 1.0
    example_usage: 1.0
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	// weights kept as configured, only warned about
	require.Equal(t, 3.0, cfg.Evaluation.Weights.Sum())
	require.Contains(t, buf.String(), "do not sum to 1")
}
