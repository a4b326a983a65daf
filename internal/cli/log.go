// Package cli implements the sensala command-line interface.
//
// The CLI sends discourses to a Sensala interpretation service and draws the
// returned parse tree and term tree. It is built using cobra and logs via
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - interpret: Interpret one discourse and write both surfaces to files
//   - serve: Serve the interactive page and JSON API
//   - repl: Interactive terminal session
//   - cache: Manage the response and layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; SENSALA_LOG_LEVEL
// sets any other level. Loggers are passed through context.Context so every
// layer logs through the same sink.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	err := c.RootCommand().ExecuteContext(ctx)
//	cli.ReportError(os.Stderr, err)
//	os.Exit(cli.ExitCode(err))
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sensala/viewer/pkg/errors"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, rounded to the millisecond, plus any
// extra key/value pairs.
// Example output: "Interpreted discourse duration=412ms nodes=7"
func (p *progress) done(msg string, keyvals ...any) {
	kv := append([]any{"duration", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Info(msg, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// LogLevelEnv names the environment variable that sets the log level.
const LogLevelEnv = "SENSALA_LOG_LEVEL"

// ResolveLogLevel picks the log level from --verbose and the value of
// [LogLevelEnv]. Verbose wins; an empty value means info.
func ResolveLogLevel(env string, verbose bool) (log.Level, error) {
	if verbose {
		return LogDebug, nil
	}
	if env == "" {
		return LogInfo, nil
	}
	level, err := log.ParseLevel(env)
	if err != nil {
		return LogInfo, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown level %q", LogLevelEnv, env)
	}
	return level, nil
}
