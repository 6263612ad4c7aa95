// Package dctxlog is dircontxt's run logger, built on pterm the way
// morler-codai's cmd package drives spinners and styled output instead
// of raw fmt.Printf. Every run gets a short correlation id (a uuid) so
// that IO-kind warnings emitted mid-walk can be tied back to one run
// when a user pastes log output for a bug report.
package dctxlog

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

// Logger is a pterm-backed logger carrying a run id. The zero value is
// not usable; construct one with New.
type Logger struct {
	runID   string
	mu      sync.Mutex
	quiet   bool
	verbose bool
}

var std = New()

// New creates a Logger tagged with a fresh run-correlation id.
func New() *Logger {
	return &Logger{runID: uuid.NewString()[:8]}
}

// SetQuiet suppresses Info/Debug output on the default logger, leaving
// Warn/Error visible. Used by the CLI's --quiet flag.
func SetQuiet(quiet bool) { std.SetQuiet(quiet) }

// SetQuiet suppresses Info/Debug output on l.
func (l *Logger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quiet = quiet
}

// SetVerbose enables Debug output on the default logger.
func SetVerbose(verbose bool) { std.SetVerbose(verbose) }

// SetVerbose enables Debug output on l.
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
}

func (l *Logger) prefix() string { return fmt.Sprintf("[%s]", l.runID) }

// Info prints an informational line. Suppressed when the logger is quiet.
func (l *Logger) Info(format string, args ...any) {
	l.mu.Lock()
	quiet := l.quiet
	l.mu.Unlock()
	if quiet {
		return
	}
	pterm.Info.Println(l.prefix() + " " + fmt.Sprintf(format, args...))
}

// Debug prints a line only when the logger is in verbose mode, for the
// per-stage detail (rule counts, walk stats) that would otherwise
// clutter a normal run.
func (l *Logger) Debug(format string, args ...any) {
	l.mu.Lock()
	verbose, quiet := l.verbose, l.quiet
	l.mu.Unlock()
	if !verbose || quiet {
		return
	}
	pterm.Debug.Println(l.prefix() + " " + fmt.Sprintf(format, args...))
}

// Warn prints a warning line. Used for dctxerr.KindIO and KindConfig
// failures that the pipeline recovers from and continues past.
func (l *Logger) Warn(format string, args ...any) {
	pterm.Warning.Println(l.prefix() + " " + fmt.Sprintf(format, args...))
}

// Error prints an error line. Used just before a KindFatal error is
// returned up to the CLI's nonzero exit path.
func (l *Logger) Error(format string, args ...any) {
	pterm.Error.Println(l.prefix() + " " + fmt.Sprintf(format, args...))
}

// Success prints a success line, used by the orchestrator once a
// snapshot run completes.
func (l *Logger) Success(format string, args ...any) {
	pterm.Success.Println(l.prefix() + " " + fmt.Sprintf(format, args...))
}

// RunID returns the logger's correlation id.
func (l *Logger) RunID() string { return l.runID }

// Package-level helpers delegate to a shared default logger, so
// low-level packages (ignore, walker) can log without threading a
// Logger through every call.

func Info(format string, args ...any)    { std.Info(format, args...) }
func Debug(format string, args ...any)   { std.Debug(format, args...) }
func Warn(format string, args ...any)    { std.Warn(format, args...) }
func Error(format string, args ...any)   { std.Error(format, args...) }
func Success(format string, args ...any) { std.Success(format, args...) }
