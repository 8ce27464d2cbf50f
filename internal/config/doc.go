// Package config loads cloudctl settings.
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults (GetDefaultSettings)
//  2. A YAML settings file, ~/.config/cloudctl/config.yaml or --config
//  3. Environment variables prefixed with CLOUDCTL_, with dots replaced by
//     underscores (CLOUDCTL_WAIT_TIMEOUT=30m overrides wait.timeout)
//
// Example settings file:
//
//	output: json
//	color: never
//	wait:
//	  timeout: 20m
//	  interval: 10s
//	environments:
//	  dev: https://api.dev.example.com/v2
//	http:
//	  timeout: 1m
//
// Loaded settings are validated; a bad value is reported as a
// ConfigurationError naming the key.
package config
