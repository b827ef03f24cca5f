package mocklogger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/bsv-blockchain/indexprefix/ulogger"
)

// MockLogger is a ulogger.Logger that records every formatted line per level,
// so tests can check what was logged and how often.
type MockLogger struct {
	mu    sync.Mutex
	lines map[string][]string
}

func NewTestLogger() *MockLogger {
	return &MockLogger{
		lines: make(map[string][]string),
	}
}

func (l *MockLogger) LogLevel() int {
	return 0
}

func (l *MockLogger) SetLogLevel(_ string) {
	// ignore
}

// New returns the same logger so lines of child loggers are recorded too.
func (l *MockLogger) New(_ string, _ ...ulogger.Option) ulogger.Logger {
	return l
}

func (l *MockLogger) Duplicate(_ ...ulogger.Option) ulogger.Logger {
	return l
}

func (l *MockLogger) Debugf(format string, args ...interface{}) {
	l.record("Debugf", format, args...)
}

func (l *MockLogger) Infof(format string, args ...interface{}) {
	l.record("Infof", format, args...)
}

func (l *MockLogger) Warnf(format string, args ...interface{}) {
	l.record("Warnf", format, args...)
}

func (l *MockLogger) Errorf(format string, args ...interface{}) {
	l.record("Errorf", format, args...)
}

func (l *MockLogger) Fatalf(format string, args ...interface{}) {
	l.record("Fatalf", format, args...)
}

func (l *MockLogger) record(method, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines[method] = append(l.lines[method], fmt.Sprintf(format, args...))
}

// Lines returns a copy of the lines logged through method, e.g. "Infof".
func (l *MockLogger) Lines(method string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.lines[method]...)
}

// AssertNumberOfCalls verifies the expected number of calls to a method.
func (l *MockLogger) AssertNumberOfCalls(t *testing.T, methodName string, expectedCalls int) {
	t.Helper()

	if actualCalls := len(l.Lines(methodName)); actualCalls != expectedCalls {
		t.Errorf("Expected %v calls to %s, got %v", expectedCalls, methodName, actualCalls)
	}
}

// Reset clears all recorded lines.
func (l *MockLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = make(map[string][]string)
}
