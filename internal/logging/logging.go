// Package logging provides the categorized logging facade used across the
// fairway engine. Each subsystem logs under its own category so a single
// misbehaving layer can be turned up to debug without drowning the rest.
// The backend is zap; the facade keeps call sites printf-style.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryNormalize  Category = "normalize"  // Input normalization pipeline
	CategorySession    Category = "session"    // Session context store, persistence
	CategoryPerception Category = "perception" // LLM calls, response parsing, decisions
	CategoryClarify    Category = "clarify"    // Clarification generation
	CategoryRouting    Category = "routing"    // Routing decisions, prerequisite gates
	CategoryNav        Category = "nav"        // Destination building, stack mutation
	CategoryRecovery   Category = "recovery"   // Error classification, retry, patterns
	CategoryAnalytics  Category = "analytics"  // Event dispatch
	CategoryEngine     Category = "engine"     // Request pipeline
)

// Logger is a category-scoped printf-style logger.
type Logger struct {
	s *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	loggers = map[Category]*Logger{}
)

// Configure installs the backing zap logger. Call once at startup; before
// that (and in tests that never call it) every log call is a no-op.
func Configure(level zapcore.Level, development bool) error {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	built, err := cfg.Build()
	if err != nil {
		return err
	}
	SetBackend(built)
	return nil
}

// SetBackend swaps the backing logger directly. Tests use this with
// zaptest loggers.
func SetBackend(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
	loggers = map[Category]*Logger{}
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}

// Get returns the logger for a category.
func Get(c Category) *Logger {
	mu.RLock()
	if l, ok := loggers[c]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}
	l := &Logger{s: root.Sugar().Named(string(c))}
	loggers[c] = l
	return l
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...interface{}) { l.s.Debugf(format, args...) }

// Info logs at info level.
func (l *Logger) Info(format string, args ...interface{}) { l.s.Infof(format, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...interface{}) { l.s.Warnf(format, args...) }

// Error logs at error level.
func (l *Logger) Error(format string, args ...interface{}) { l.s.Errorf(format, args...) }
