// Package fake provides in-memory gateways and a controllable clock for
// command tests.
package fake
