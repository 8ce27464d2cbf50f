package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, GetDefaultSettings(), *settings)
	assert.Equal(t, DefaultProdURL, settings.APIURL("prod"))
	assert.Empty(t, settings.APIURL("staging"))
}

func TestLoad_FileInConfigDir(t *testing.T) {
	dir := t.TempDir()
	content := `output: json
wait:
  timeout: 20m
environments:
  dev: https://dev.example.com/v2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	settings, err := Load("", dir)
	require.NoError(t, err)

	assert.Equal(t, "json", settings.Output)
	assert.Equal(t, 20*time.Minute, settings.Wait.Timeout)
	assert.Equal(t, DefaultWaitInterval, settings.Wait.Interval)
	assert.Equal(t, "https://dev.example.com/v2", settings.APIURL("dev"))
	assert.Equal(t, DefaultProdURL, settings.APIURL("prod"))
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(file, []byte("color: always\n"), 0644))

	t.Setenv("CLOUDCTL_COLOR", "never")
	t.Setenv("CLOUDCTL_WAIT_INTERVAL", "1s")

	settings, err := Load(file, "")
	require.NoError(t, err)

	assert.Equal(t, "never", settings.Color)
	assert.Equal(t, time.Second, settings.Wait.Interval)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		missing  bool
		wantType string
		wantMsg  string
	}{
		{name: "explicit file missing", missing: true, wantType: "read"},
		{name: "bad yaml", content: "output: [json", wantType: "read"},
		{name: "unknown output", content: "output: xml\n", wantType: "validation", wantMsg: "field 'output': must be one of human, json, csv"},
		{name: "negative interval", content: "wait:\n  interval: -1s\n", wantType: "validation", wantMsg: "field 'wait.interval': must be positive"},
		{name: "bad url", content: "environments:\n  test: not a url\n", wantType: "validation", wantMsg: "field 'environments.test': must be a URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "settings.yaml")
			if !tt.missing {
				require.NoError(t, os.WriteFile(file, []byte(tt.content), 0644))
			}

			_, err := Load(file, "")
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantType, cfgErr.ErrorType)
			if tt.wantMsg != "" {
				assert.Contains(t, cfgErr.Message, tt.wantMsg)
			}
		})
	}
}
