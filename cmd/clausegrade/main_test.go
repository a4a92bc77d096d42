package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Help(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "clausegrade")
	assert.Contains(t, output, "serve")
	assert.Contains(t, output, "run")
	assert.Contains(t, output, "pull")
	assert.Contains(t, output, "init")
}

func TestRootCommand_UnknownSubcommand(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"frobnicate"})
	require.Error(t, cmd.Execute())
}

func TestRunCommand_NoPairs(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no suggestion pairs")
}
