// Package logger provides verbose logging for the OCR pipeline.
// When verbose mode is enabled via the --verbose flag, messages are
// printed to stderr so users can follow engine invocations and chunk
// scheduling.
//
// Every message is also kept in a bounded in-memory tail, regardless
// of verbosity, so job progress polls can report recent activity.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// tailLimit bounds the in-memory tail.
const tailLimit = 64

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
	tail    []string
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Tail returns up to n of the most recent log lines, oldest first.
func Tail(n int) []string {
	mu.Lock()
	defer mu.Unlock()
	if n <= 0 || len(tail) == 0 {
		return nil
	}
	start := len(tail) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, len(tail)-start)
	copy(out, tail[start:])
	return out
}

// ResetTail clears the in-memory tail. Called when a new job starts so
// its progress polls do not show a previous job's lines.
func ResetTail() {
	mu.Lock()
	defer mu.Unlock()
	tail = nil
}

// emit records a line in the tail and prints it when verbose.
// Callers must not hold mu.
func emit(line string) {
	mu.Lock()
	defer mu.Unlock()
	tail = append(tail, line)
	if len(tail) > tailLimit {
		tail = tail[len(tail)-tailLimit:]
	}
	if verbose {
		fmt.Fprintln(output, line)
	}
}

// Debug prints a debug message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(fmt.Sprintf("[DEBUG] "+format, args...))
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	emit(fmt.Sprintf("=== %s ===", name))
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(fmt.Sprintf("[INFO] "+format, args...))
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	emit(fmt.Sprintf("[WARN] "+format, args...))
}
