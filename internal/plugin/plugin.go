// Package plugin defines the module interface and lifecycle registry that
// compose the SubnetScope server. Modules are wired at compile time in main
// and mount their HTTP routes under /api/v1/{module}/.
package plugin

import (
	"context"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Route represents an HTTP route exposed by a module.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Plugin defines the interface that all SubnetScope modules implement.
type Plugin interface {
	// Name returns the module's unique identifier (e.g., "subnet", "analyze").
	Name() string

	// Version returns the module's semantic version.
	Version() string

	// Init initializes the module with its configuration slice and logger.
	Init(config *viper.Viper, logger *zap.Logger) error

	// Start begins the module's background operations.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the module.
	Stop() error

	// Routes returns the HTTP routes this module exposes.
	Routes() []Route
}
