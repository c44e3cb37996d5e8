package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/cssval"
	"github.com/yacobolo/cssval/internal/engine"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetKoanf()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailed, exitCode(fmt.Errorf("%w: 1 of 2 files", errValidationFailed)))
	assert.Equal(t, exitRunError, exitCode(fmt.Errorf("resolve: %w", cssval.ErrHostUnavailable)))
}

func TestInitCommand_CreatesConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created .cssval.yaml")

	data, err := os.ReadFile(".cssval.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "profile: css3")
	assert.Contains(t, string(data), "validate:")
	assert.Contains(t, string(data), "engine:")

	// the generated file loads and yields the defaults
	resetKoanf()
	require.NoError(t, loadConfigFromPath(".cssval.yaml"))
	assert.Equal(t, cssval.DefaultConfig(), buildValidationConfig())
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".cssval.yaml", []byte("existing"), 0644))

	_, err := execute(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCommand_ForceOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".cssval.yaml", []byte("existing"), 0644))

	_, err := execute(t, "init", "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(".cssval.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "profile: css3")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cssval dev\n", out)
}

func TestBuildVersionPrefersLdflags(t *testing.T) {
	orig := version
	t.Cleanup(func() { version = orig })

	version = "1.4.0"
	assert.Equal(t, "1.4.0", buildVersion())
}

func TestWriteVersion(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    []string
	}{
		{name: "plain", want: []string{"cssval 1.2.3"}},
		{name: "verbose", verbose: true, want: []string{"cssval 1.2.3", "engine: " + engine.JarName, "source: " + engine.DefaultSources[0]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeVersion(&buf, "1.2.3", tt.verbose)
			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			assert.Subset(t, lines, tt.want)
			if !tt.verbose {
				assert.Len(t, lines, 1)
			}
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{shell: "bash", want: "__start_cssval"},
		{shell: "zsh", want: "#compdef cssval"},
		{shell: "fish", want: "complete -c cssval"},
		{shell: "powershell", want: "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, err := execute(t, "completion", tt.shell)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	_, err := execute(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestProfileFlagCompletion(t *testing.T) {
	out, err := execute(t, cobra.ShellCompRequestCmd, "validate", "--profile", "")
	require.NoError(t, err)
	for _, name := range profileNames {
		assert.Contains(t, out, name+"\n")
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "css-validator.jar")

	out, err := execute(t, "cache", "path", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, jar+"\n", out)

	out, err = execute(t, "cache", "status", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "missing")

	require.NoError(t, os.WriteFile(jar, []byte("<html>not a jar</html>"), 0644))
	out, err = execute(t, "cache", "status", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "corrupt")

	require.NoError(t, os.WriteFile(jar, []byte("PK\x03\x04jar"), 0644))
	out, err = execute(t, "cache", "status", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (7 bytes)")

	_, err = execute(t, "cache", "clean", "--cache-dir", dir)
	require.NoError(t, err)
	assert.NoFileExists(t, jar)
}

func TestValidateCommand_EmptyDirectory(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()

	out, err := execute(t, "validate", dir, "--cache-dir", filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Contains(t, out, "0 passed, 0 failed")
	assert.NoDirExists(t, filepath.Join(dir, "cache"))
}

func TestValidateCommand_JSONEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "--json", "--cache-dir", filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"passed": 0, "failed": 0, "results": []}`, out)
}

func TestValidateCommand_MissingTarget(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "validate", filepath.Join(dir, "missing.css"), "--cache-dir", filepath.Join(dir, "cache"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cssval.ErrInputNotFound))
	assert.Equal(t, exitRunError, exitCode(err))
}

func TestValidateCommand_InvalidProfile(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "validate", dir, "--profile", "css4", "--cache-dir", filepath.Join(dir, "cache"))
	require.ErrorIs(t, err, cssval.ErrInvalidConfig)
}
