package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

// New builds the process-wide logger. APP_ENV=production selects the JSON
// production config; anything else gets the human-readable development one.
func New() (*zap.Logger, error) {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if env == "production" || env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// NewNop returns a no-op logger for tests and optional dependencies.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
