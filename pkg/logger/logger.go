// Package logger provides the leveled logging interface shared by the
// todostudio daemon, scheduler and terminal UI.
package logger

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// Level orders log severities. Messages below a logger's level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel maps a config value ("debug", "info", "warning"/"warn", "error")
// to a Level. Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Logger defines the logging interface used across todostudio components.
type Logger interface {
	// Debug logs scheduler internals (timers armed, callbacks canceled).
	Debug(format string, args ...interface{})

	// Info logs an informational message (e.g., "Daemon listening on ...").
	Info(format string, args ...interface{})

	// Warning logs a recoverable problem (e.g., "notification failed, alerting").
	Warning(format string, args ...interface{})

	// Error logs an error message.
	Error(format string, args ...interface{})

	// Close releases resources held by the logger. Safe to call multiple times.
	Close() error
}

// StandardLogger wraps the stdlib *log.Logger for console/file output.
type StandardLogger struct {
	logger *log.Logger
	level  Level
}

// NewStandardLogger creates a logger that wraps the given *log.Logger at
// LevelInfo.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l, level: LevelInfo}
}

// NewLeveledLogger creates a logger that drops messages below level.
func NewLeveledLogger(l *log.Logger, level Level) *StandardLogger {
	return &StandardLogger{logger: l, level: level}
}

func (s *StandardLogger) logf(level Level, format string, args ...interface{}) {
	if level < s.level {
		return
	}
	s.logger.Printf("["+level.String()+"] "+format, args...)
}

// Debug logs a message with [DEBUG] prefix.
func (s *StandardLogger) Debug(format string, args ...interface{}) {
	s.logf(LevelDebug, format, args...)
}

// Info logs a message with [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logf(LevelInfo, format, args...)
}

// Warning logs a message with [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logf(LevelWarning, format, args...)
}

// Error logs a message with [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logf(LevelError, format, args...)
}

// Close is a no-op for StandardLogger.
func (s *StandardLogger) Close() error {
	return nil
}

// NopLogger discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(format string, args ...interface{})   {}
func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warning(format string, args ...interface{}) {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Close() error                               { return nil }

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger records all log calls for verification in tests.
// It is safe for use from timer goroutines.
type MockLogger struct {
	mu           sync.Mutex
	DebugCalls   []string
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) Debug(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DebugCalls = append(m.DebugCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

// Warnings returns a copy of the recorded warning messages.
func (m *MockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.WarningCalls...)
}

var _ Logger = (*MockLogger)(nil)

// stdWriter routes stdlib log output into a Logger at info level.
type stdWriter struct {
	l Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	w.l.Info("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// ToStdLogger adapts a Logger for libraries that want a *log.Logger.
func ToStdLogger(l Logger) *log.Logger {
	return log.New(stdWriter{l: l}, "", 0)
}
