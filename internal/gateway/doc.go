// Package gateway defines the remote resource gateways commands talk to,
// and the resource models they exchange.
//
// Create and delete calls report whether the resource already existed or
// was missing as an outcome.CreationStatus or outcome.DeletionStatus, so
// commands can turn them into outcomes without a second round trip.
//
// The HTTP implementation lives in internal/api, an in-memory one for tests
// in internal/testing/fake.
package gateway
