package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultWaitTimeout bounds how long db create and delete wait.
	DefaultWaitTimeout = 15 * time.Minute
	// DefaultWaitInterval is the status polling interval.
	DefaultWaitInterval = 5 * time.Second
	// DefaultHTTPTimeout is the per-request timeout of the API client.
	DefaultHTTPTimeout = 30 * time.Second

	DefaultProdURL = "https://api.astra.datastax.com/v2"
	DefaultDevURL  = "https://api.dev.cloud.datastax.com/v2"
	DefaultTestURL = "https://api.test.cloud.datastax.com/v2"
)

// GetDefaultSettings returns the settings used when nothing is configured.
func GetDefaultSettings() Settings {
	return Settings{
		Output:   "human",
		Color:    "auto",
		LogLevel: "warn",
		Wait: WaitSettings{
			Timeout:  DefaultWaitTimeout,
			Interval: DefaultWaitInterval,
		},
		Environments: EnvironmentURLs{
			Prod: DefaultProdURL,
			Dev:  DefaultDevURL,
			Test: DefaultTestURL,
		},
		HTTP: HTTPSettings{Timeout: DefaultHTTPTimeout},
	}
}

// setDefaults registers every key with viper so that AutomaticEnv can
// override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := GetDefaultSettings()
	v.SetDefault("output", d.Output)
	v.SetDefault("color", d.Color)
	v.SetDefault("profiles_file", d.ProfilesFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("wait.timeout", d.Wait.Timeout)
	v.SetDefault("wait.interval", d.Wait.Interval)
	v.SetDefault("environments.prod", d.Environments.Prod)
	v.SetDefault("environments.dev", d.Environments.Dev)
	v.SetDefault("environments.test", d.Environments.Test)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
}
