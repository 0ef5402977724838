// Package notify is the user facing message surface of the client.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Notifier shows short messages to the user.
//
//go:generate mockgen -source notify.go -destination notify_mock.go -package notify
type Notifier interface {
	Error(msg string)
	Success(msg string)
}

// Writer prints notifications as single lines.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a Writer printing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Error prints msg as an error line.
func (w *Writer) Error(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprintf(w.out, "✗ %s\n", msg)
}

// Success prints msg as a success line.
func (w *Writer) Success(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprintf(w.out, "✓ %s\n", msg)
}

// Log forwards notifications to a logger. Used where nobody watches a terminal.
type Log struct {
	logger zerolog.Logger
}

// NewLog returns a Log writing to logger.
func NewLog(logger zerolog.Logger) Log {
	return Log{logger: logger}
}

// Error logs msg at WARN.
func (l Log) Error(msg string) {
	l.logger.Warn().Str("notification", msg).Send()
}

// Success logs msg at INFO.
func (l Log) Success(msg string) {
	l.logger.Info().Str("notification", msg).Send()
}

// Recorder keeps every notification. Used in tests.
type Recorder struct {
	mu        sync.Mutex
	errors    []string
	successes []string
}

// Error records msg.
func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, msg)
}

// Success records msg.
func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.successes = append(r.successes, msg)
}

// Errors returns the recorded error messages.
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.errors...)
}

// Successes returns the recorded success messages.
func (r *Recorder) Successes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.successes...)
}
