package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/clausegrade/clausegrade/internal/projectconfig"
)

func TestInitCommand_CreatesProjectStructure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "my-project")

	var buf bytes.Buffer
	cmd := newInitCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{target})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(target, "clausegrade.yaml"))
	assert.DirExists(t, filepath.Join(target, "data", "suggestion_requests"))
	assert.DirExists(t, filepath.Join(target, "data", "suggestion_responses"))

	output := buf.String()
	assert.Contains(t, output, "Initialized clausegrade project")
	assert.Contains(t, output, "clausegrade.yaml")

	// the written config round-trips to the defaults
	data, err := os.ReadFile(filepath.Join(target, "clausegrade.yaml"))
	require.NoError(t, err)
	var cfg projectconfig.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, projectconfig.DefaultModel, cfg.Model.Name)
	assert.Equal(t, projectconfig.DefaultPort, cfg.Server.Port)
}

func TestInitCommand_RefusesExistingConfig(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "my-project")

	cmd1 := newInitCommand()
	cmd1.SetOut(&bytes.Buffer{})
	cmd1.SetArgs([]string{target})
	require.NoError(t, cmd1.Execute())

	cmd2 := newInitCommand()
	cmd2.SetOut(&bytes.Buffer{})
	cmd2.SetErr(&bytes.Buffer{})
	cmd2.SetArgs([]string{target})
	err := cmd2.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
