package config

import (
	"go.uber.org/zap"
)

var logger *zap.Logger = zap.NewNop()

// InitLogger builds the application logger. Development mode gets the
// human-readable console encoder, everything else structured JSON.
func InitLogger(isDev bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if isDev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// Logger returns the application logger. Defaults to a no-op logger so
// packages can log safely before InitLogger runs (and in tests).
func Logger() *zap.Logger {
	return logger
}

// SyncLogger flushes buffered log entries. Call it on shutdown.
func SyncLogger() {
	_ = logger.Sync()
}
