// Package logging builds the root zap logger. Components derive their own
// named loggers from it via logger.Named.
package logging

import "go.uber.org/zap"

// New returns a logger appropriate for the environment: human-readable
// development output locally, JSON production output otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
