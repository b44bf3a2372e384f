// Package logging provides the structured, line-oriented logger shared
// by the ingestor, query service, and CLI glue. It wraps the standard
// library's log.Logger and adds structured fields and levels on top.
package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
)

// Level is a log severity, trimmed to the ones llq actually emits.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Fields is a set of extra key/value pairs merged into a log line.
type Fields map[string]interface{}

// Logger emits one JSON object per line to an underlying *log.Logger.
// Every line carries a run ID so interleaved Ingestor/Query Service
// output from one process invocation can be grouped back together.
type Logger struct {
	out   *log.Logger
	runID string
}

// New builds a Logger writing to os.Stderr with a fresh run ID.
func New() *Logger {
	return NewTo(os.Stderr)
}

// NewTo builds a Logger writing to w (a log file in production, a
// *bytes.Buffer in tests) with a fresh run ID.
func NewTo(w io.Writer) *Logger {
	return &Logger{
		out:   log.New(w, "", 0),
		runID: uuid.NewString(),
	}
}

func (l *Logger) line(level Level, msg string, fields Fields) {
	entry := make(map[string]interface{}, len(fields)+3)
	entry["level"] = string(level)
	entry["msg"] = msg
	entry["run_id"] = l.runID
	for k, v := range fields {
		entry[k] = v
	}
	b, err := json.Marshal(entry)
	if err != nil {
		l.out.Printf(`{"level":"error","msg":"logging: marshal failed: %v"}`, err)
		return
	}
	l.out.Println(string(b))
}

// Info logs an informational line, e.g. Ingestor startup or a partial
// index publish.
func (l *Logger) Info(msg string, fields Fields) { l.line(LevelInfo, msg, fields) }

// Warn logs a recovered parse error.
func (l *Logger) Warn(msg string, fields Fields) { l.line(LevelWarn, msg, fields) }

// Error logs a non-fatal error.
func (l *Logger) Error(msg string, fields Fields) { l.line(LevelError, msg, fields) }

// Fatal logs and terminates the process, for unrecoverable I/O and
// index errors.
func (l *Logger) Fatal(msg string, fields Fields) {
	l.line(LevelFatal, msg, fields)
	os.Exit(1)
}
