// Package logbook records the session journey (logins, submissions,
// failures) to an append-only text file. The most recent lines are kept in
// memory so the UI's log panel can render them without re-reading the file.
package logbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// keep bounds the in-memory tail.
const keep = 64

// Logbook appends leveled entries to a single log file.
type Logbook struct {
	path string

	mu     sync.Mutex
	file   *os.File
	recent []string
}

// New opens (creating if needed) the logbook at path.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Logbook{path: path, file: file}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	line := fmt.Sprintf("%s %-5s %s",
		time.Now().UTC().Format(time.RFC3339),
		string(level),
		message,
	)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.recent = append(l.recent, line)
	if len(l.recent) > keep {
		l.recent = l.recent[len(l.recent)-keep:]
	}
	if l.file != nil {
		_, _ = l.file.WriteString(line + "\n")
	}
}

// Tail returns up to maxLines of the most recent entries.
func (l *Logbook) Tail(maxLines int) []string {
	if l == nil || maxLines <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.recent) == 0 {
		return nil
	}
	start := 0
	if len(l.recent) > maxLines {
		start = len(l.recent) - maxLines
	}
	out := make([]string, len(l.recent)-start)
	copy(out, l.recent[start:])
	return out
}

// Close releases the underlying file.
func (l *Logbook) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}
