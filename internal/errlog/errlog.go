// Package errlog appends recoverable errors to a log file and echoes
// them to the operator console. Fatal decisions stay with the caller.
package errlog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const separator = "---------------------------------------------------------------"

// Logger writes timestamped error records to an append-only file.
// A nil Logger only echoes to the console, which keeps tests quiet
// about filesystem state.
type Logger struct {
	mu   sync.Mutex
	path string
}

// New creates a logger appending to the given path. The file is
// created lazily on first report.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Report logs a recoverable error: console echo plus file append.
// Failure to write the log file itself is reported to the console
// only; it never escalates.
func (l *Logger) Report(msg string, err error) {
	fmt.Printf("%s: %v\n", msg, err)
	if l == nil || l.path == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, openErr := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if openErr != nil {
		fmt.Printf("[ErrLog] Cannot open %s: %v\n", l.path, openErr)
		return
	}
	defer f.Close()

	stamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "\n%s - %s: %v\n%s\n", stamp, msg, err, separator)
}
