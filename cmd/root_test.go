package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudctl/internal/cli"
)

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	rootCmd := NewRootCmd(DefaultApp(), nil)

	assert.Equal(t, "cloudctl", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)

	for _, name := range []string{"db", "streaming", "user", "role", "token", "config", "version"} {
		sub, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"output", "color", "no-color", "verbose", "no-input", "profile", "token", "env", "config"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"db", "list", "--bogus"}},
		{name: "unexpected argument", args: []string{"db", "list", "extra"}},
		{name: "missing argument", args: []string{"db", "get"}},
		{name: "unknown output mode", args: []string{"db", "list", "-o", "yaml"}},
		{name: "unknown environment", args: []string{"db", "list", "--token", "t", "--env", "staging"}},
		{name: "env without token", args: []string{"db", "list", "--env", "dev"}},
		{name: "token with profile", args: []string{"db", "list", "--token", "t", "--profile", "work"}},
		{name: "color with no-color", args: []string{"version", "--color", "--no-color"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			assert.Equal(t, cli.ExitCodeValidation, h.run(tt.args...), h.stderr.String())
			assert.Empty(t, h.stdout.String())
			assert.Zero(t, h.cloud.Calls())
		})
	}
}

func TestMissingArgumentHint(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, cli.ExitCodeValidation, h.run("db", "get"))
	assert.Contains(t, h.stderr.String(), "Missing argument DB.")
	assert.Contains(t, h.stderr.String(), "cloudctl db get --help")
}

func TestProfileSelection(t *testing.T) {
	t.Run("default profile", func(t *testing.T) {
		h := newHarness(t)
		require.Equal(t, cli.ExitCodeSuccess, h.run("db", "list"))
		assert.Equal(t, "work", h.used.Name)
		assert.Equal(t, "AstraCS:work-token", h.used.Token)
	})

	t.Run("explicit token wins", func(t *testing.T) {
		h := newHarness(t)
		require.Equal(t, cli.ExitCodeSuccess, h.run("db", "list", "--token", "AstraCS:other", "--env", "dev"))
		assert.Equal(t, cli.TokenProfileName, h.used.Name)
		assert.Equal(t, "AstraCS:other", h.used.Token)
		assert.Equal(t, "dev", h.used.Environment)
	})

	t.Run("environment variable", func(t *testing.T) {
		h := newHarness(t)
		require.Equal(t, cli.ExitCodeSuccess, h.run("config", "create", "staging", "--token", "AstraCS:s"))
		t.Setenv(cli.ProfileEnvVar, "staging")

		require.Equal(t, cli.ExitCodeSuccess, h.run("db", "list"))
		assert.Equal(t, "staging", h.used.Name)
	})

	t.Run("missing profile", func(t *testing.T) {
		h := newHarness(t)
		require.Equal(t, cli.ExitCodeProfileNotFound, h.run("db", "list", "--profile", "nope"))
		assert.Contains(t, h.stderr.String(), "Profile 'nope' does not exist.")
		assert.Zero(t, h.cloud.Calls())
	})

	t.Run("no default profile", func(t *testing.T) {
		h := newBareHarness(t)
		require.Equal(t, cli.ExitCodeProfileNotFound, h.run("db", "list", "-o", "json"))
		env := h.stderrJSON()
		assert.Equal(t, float64(cli.ExitCodeProfileNotFound), env["code"])
		assert.Equal(t, "No default profile is configured.", env["message"])
	})
}

func TestSettingsFile(t *testing.T) {
	t.Run("default output mode", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, os.WriteFile(filepath.Join(h.dir, "config.yaml"), []byte("output: csv\n"), 0600))

		require.Equal(t, cli.ExitCodeSuccess, h.run("version"))
		assert.Equal(t, "code,message,version", splitLines(h.stdout.String())[0])
	})

	t.Run("invalid file", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, os.WriteFile(filepath.Join(h.dir, "config.yaml"), []byte("output: xml\n"), 0600))

		assert.Equal(t, cli.ExitCodeValidation, h.run("version"))
		assert.Contains(t, h.stderr.String(), "output")
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		h := newHarness(t)
		assert.Equal(t, cli.ExitCodeValidation, h.run("version", "--config", filepath.Join(h.dir, "missing.yaml")))
	})
}

func TestInterrupted(t *testing.T) {
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, cli.ExitCodeInterrupted, h.runContext(ctx, "db", "list"))
	assert.Empty(t, h.stdout.String())
}
