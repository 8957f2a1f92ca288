// Package logger builds the zap loggers used at the CLI boundary. The
// library packages stay silent; only command entrypoints log.
package logger

import "go.uber.org/zap"

// New returns a production logger, or a development logger with debug level
// when verbose is set.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
