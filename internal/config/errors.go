package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ConfigurationError represents a structured error that occurs while loading
// settings.
type ConfigurationError struct {
	FilePath    string   `json:"filePath"`    // Full path to the settings file, if any
	ErrorType   string   `json:"errorType"`   // Type of error (read, parse, validation)
	Message     string   `json:"message"`     // Human-readable error message
	Suggestions []string `json:"suggestions"` // Actionable suggestions to fix the error
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(filePath, errorType, message string, suggestions ...string) *ConfigurationError {
	return &ConfigurationError{
		FilePath:    filePath,
		ErrorType:   errorType,
		Message:     message,
		Suggestions: suggestions,
	}
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	if ce.FilePath == "" {
		return fmt.Sprintf("invalid settings (%s): %s", ce.ErrorType, ce.Message)
	}
	return fmt.Sprintf("invalid settings in %s (%s): %s", filepath.Base(ce.FilePath), ce.ErrorType, ce.Message)
}

// DetailedError returns a detailed error message with all context
func (ce *ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, "Settings error")
	if ce.FilePath != "" {
		parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	}
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}
