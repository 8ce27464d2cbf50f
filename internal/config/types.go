package config

import "time"

// Settings is the complete cloudctl settings structure.
type Settings struct {
	// Output is the default output mode when -o is not given.
	Output string `mapstructure:"output" yaml:"output" validate:"oneof=human json csv"`
	// Color is the color mode: auto follows the terminal.
	Color string `mapstructure:"color" yaml:"color" validate:"oneof=auto always never"`
	// ProfilesFile overrides the location of profiles.yaml.
	ProfilesFile string `mapstructure:"profiles_file" yaml:"profiles_file"`
	// LogLevel is the diagnostic log level; --verbose forces debug.
	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`

	Wait         WaitSettings    `mapstructure:"wait" yaml:"wait"`
	Environments EnvironmentURLs `mapstructure:"environments" yaml:"environments"`
	HTTP         HTTPSettings    `mapstructure:"http" yaml:"http"`
}

// WaitSettings controls how long mutating commands wait for a resource to
// reach its target status.
type WaitSettings struct {
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval" validate:"gt=0"`
}

// EnvironmentURLs are the API base URLs per environment.
type EnvironmentURLs struct {
	Prod string `mapstructure:"prod" yaml:"prod" validate:"required,url"`
	Dev  string `mapstructure:"dev" yaml:"dev" validate:"required,url"`
	Test string `mapstructure:"test" yaml:"test" validate:"required,url"`
}

// HTTPSettings configures the API client.
type HTTPSettings struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// APIURL returns the base URL for env, or an empty string for an unknown
// environment.
func (s *Settings) APIURL(env string) string {
	switch env {
	case "prod":
		return s.Environments.Prod
	case "dev":
		return s.Environments.Dev
	case "test":
		return s.Environments.Test
	default:
		return ""
	}
}
