package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	services := writeFile(t, dir, "services.json", `{"services":{"echo":{"tasks":["echo","shout"]}}}`)
	valid := writeFile(t, dir, "echo.yaml", echoDefinition)
	unknown := writeFile(t, dir, "ftp.yaml", "name: ftp\nsteps:\n  - get:\n      service: ftp\n      task: get\n")

	var out bytes.Buffer

	command := newCommand()
	command.Writer = &out

	err := command.Run(t.Context(), []string{"taskcomposer", "validate", "--service-definition-path", services, valid})
	require.NoError(t, err)
	assert.Contains(t, out.String(), valid+": ok")

	out.Reset()

	command = newCommand()
	command.Writer = &out

	err = command.Run(t.Context(), []string{"taskcomposer", "validate", "--service-definition-path", services, valid, unknown})
	require.Error(t, err)
	assert.Contains(t, out.String(), valid+": ok")
	assert.Contains(t, out.String(), unknown+": ")
	assert.Contains(t, err.Error(), "ftp")
}

func TestValidateCommand_NoFiles(t *testing.T) {
	command := newCommand()
	command.Writer = &bytes.Buffer{}

	err := command.Run(t.Context(), []string{"taskcomposer", "validate"})
	assert.ErrorIs(t, err, ErrNoDefinitions)
}

func TestCatalogImport_RequiresRedisURL(t *testing.T) {
	command := newCommand()
	command.Writer = &bytes.Buffer{}

	err := command.Run(t.Context(), []string{"taskcomposer", "catalog", "import"})
	assert.ErrorIs(t, err, ErrRedisURLRequired)
}
