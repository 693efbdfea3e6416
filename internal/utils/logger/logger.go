package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	global *zap.SugaredLogger
)

// Init builds the global logger. Verbose switches the level to debug.
func Init(verbose bool) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	zap.ReplaceGlobals(l)
	global = l.Sugar()
	return nil
}

// Logger returns the global sugared logger, initializing a default one
// if Init has not been called yet.
func Logger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		l, err := zap.NewDevelopment(zap.AddStacktrace(zapcore.FatalLevel))
		if err != nil {
			l = zap.NewNop()
		}
		global = l.Sugar()
	}
	return global
}
