// Package logging provides subsystem-tagged structured logging for cloudctl.
//
// It wraps log/slog with a text handler that writes to the diagnostic stream,
// so log records never interleave with command output on stdout. Every record
// carries a subsystem attribute (for example "kernel", "poller" or "api").
//
// # Usage
//
//	logging.InitForCLI(logging.LevelDebug, os.Stderr)
//	logging.Debug("kernel", "resolved profile %s", name)
//	logging.Error("api", err, "request to %s failed", url)
//
// Until InitForCLI is called every log call is a no-op. The command front-end
// initializes the logger at WARN, or at DEBUG when --verbose is set.
package logging
