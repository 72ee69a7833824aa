// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components that own workers.
type GracefulShutdown interface {
	// Shutdown lets pending work finish, stops every internal service and
	// releases resources.
	Shutdown() error
}
