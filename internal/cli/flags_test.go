package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCommonFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	flags := &CommandFlags{}
	RegisterCommonFlags(cmd, flags)

	for _, name := range []string{"output", "color", "no-color", "verbose", "no-input", "profile", "token", "env", "config"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "o", cmd.PersistentFlags().Lookup("output").Shorthand)
	assert.Equal(t, "p", cmd.PersistentFlags().Lookup("profile").Shorthand)

	require.NoError(t, cmd.ParseFlags([]string{"-o", "json", "--token", "abc", "--env", "dev"}))
	assert.Equal(t, "json", flags.Output)
	assert.Equal(t, ProfileSelection{Token: "abc", Environment: "dev"}, flags.ProfileSelection())
}

func TestToInvocation(t *testing.T) {
	var out, errOut bytes.Buffer
	streams := Streams{Out: &out, Err: &errOut}
	allTerminal := func(io.Writer) bool { return true }
	noTerminal := func(io.Writer) bool { return false }

	t.Run("defaults to human", func(t *testing.T) {
		inv, err := (&CommandFlags{}).ToInvocation([]string{"db", "list"}, streams, noTerminal, "", ColorAuto)
		require.NoError(t, err)
		assert.Equal(t, OutputHuman, inv.Mode)
		assert.Equal(t, []string{"cloudctl", "db", "list"}, inv.Args)
		assert.False(t, inv.Interactive)
		assert.False(t, inv.Theme.Color)
	})

	t.Run("settings default output applies when flag unset", func(t *testing.T) {
		inv, err := (&CommandFlags{}).ToInvocation(nil, streams, noTerminal, "csv", ColorAuto)
		require.NoError(t, err)
		assert.Equal(t, OutputCSV, inv.Mode)
	})

	t.Run("invalid output is a validation error", func(t *testing.T) {
		_, err := (&CommandFlags{Output: "yaml"}).ToInvocation(nil, streams, noTerminal, "", ColorAuto)
		assert.Equal(t, ExitCodeValidation, ExitCodeOf(err))
	})

	t.Run("env without token is a validation error", func(t *testing.T) {
		_, err := (&CommandFlags{Env: "dev"}).ToInvocation(nil, streams, noTerminal, "", ColorAuto)
		assert.Equal(t, ExitCodeValidation, ExitCodeOf(err))
	})

	t.Run("terminal enables color and interactivity in human mode", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		inv, err := (&CommandFlags{}).ToInvocation(nil, streams, allTerminal, "", ColorAuto)
		require.NoError(t, err)
		assert.True(t, inv.Theme.Color)
		assert.True(t, inv.Interactive)
	})

	t.Run("NO_COLOR disables auto color", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		inv, err := (&CommandFlags{}).ToInvocation(nil, streams, allTerminal, "", ColorAuto)
		require.NoError(t, err)
		assert.False(t, inv.Theme.Color)
	})

	t.Run("machine modes are never colored or interactive", func(t *testing.T) {
		inv, err := (&CommandFlags{Output: "json", Color: true}).ToInvocation(nil, streams, allTerminal, "", ColorAlways)
		require.NoError(t, err)
		assert.False(t, inv.Theme.Color)
		assert.False(t, inv.Interactive)
	})

	t.Run("explicit flags override settings", func(t *testing.T) {
		inv, err := (&CommandFlags{Color: true}).ToInvocation(nil, streams, noTerminal, "", ColorNever)
		require.NoError(t, err)
		assert.True(t, inv.Theme.Color)

		inv, err = (&CommandFlags{NoColor: true}).ToInvocation(nil, streams, allTerminal, "", ColorAlways)
		require.NoError(t, err)
		assert.False(t, inv.Theme.Color)
	})
}
