package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/raysh454/gesturepanel/internal/logging"
	"github.com/raysh454/gesturepanel/internal/routes"
)

// Config configures the development server.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string

	// BackendURL is the gesture backend that /api and /assets are proxied to.
	BackendURL string

	// BasePath roots the panel's history URLs.
	BasePath string

	// IndexFile is the built panel's index document. When empty a minimal
	// shell is served.
	IndexFile string

	// Routes defaults to routes.Standard(nil).
	Routes *routes.Table

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	Logger logging.Logger
}

// DefaultConfig returns the settings used by cmd/panel in development mode.
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8080",
		BackendURL: "http://localhost:5000",
		BasePath:   "/",
	}
}
