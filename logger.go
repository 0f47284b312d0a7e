package triplecheck

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/triplecheck/lexicon"
	"github.com/hupe1980/triplecheck/model"
)

// Logger wraps slog.Logger with triplecheck-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithRunID tags every record with the run identifier.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithMode tags every record with the run mode.
func (l *Logger) WithMode(mode string) *Logger {
	return &Logger{
		Logger: l.Logger.With("mode", mode),
	}
}

// LogStatementCount logs the dataset size reported by the scanner.
func (l *Logger) LogStatementCount(ctx context.Context, n int64) {
	l.InfoContext(ctx, "statements", "count", n)
}

// LogProgress logs a periodic throughput record.
func (l *Logger) LogProgress(ctx context.Context, count int64, rate1, rate5, rate15 float64) {
	l.InfoContext(ctx, "processed statements",
		"count", count,
		"rate_1m", int64(rate1),
		"rate_5m", int64(rate5),
		"rate_15m", int64(rate15),
	)
}

// LogMissing logs a statement whose presence bit is unset.
func (l *Logger) LogMissing(ctx context.Context, ordinal int64, st model.Statement) {
	l.ErrorContext(ctx, "did not find statement",
		"ordinal", ordinal,
		"subject", st.Subject.StringValue(),
		"predicate", st.Predicate.StringValue(),
		"object", st.Object.StringValue(),
	)
}

// LogSummary logs the final record of a build or verify run.
func (l *Logger) LogSummary(ctx context.Context, r *Report) {
	attrs := []any{
		"count", r.Processed,
		"rate_1m", int64(r.Rate1),
		"rate_5m", int64(r.Rate5),
		"rate_15m", int64(r.Rate15),
		"rate_mean", int64(r.RateMean),
		"elapsed", r.Elapsed,
	}
	if r.Mode == ModeVerify {
		attrs = append(attrs, "missing", r.Missing)
	} else {
		attrs = append(attrs, "bits_set", r.BitsSet)
	}
	l.InfoContext(ctx, "done", attrs...)
}

// LogTermCheck logs the outcome of one consistency check. Lookup details go
// to debug level; inconsistencies are warnings.
func (l *Logger) LogTermCheck(ctx context.Context, res lexicon.Result) {
	term := res.Term.StringValue()
	l.DebugContext(ctx, "incoming term",
		"term", term,
		"length", len(term),
		"bytes", []byte(term),
	)

	switch res.Status {
	case lexicon.StatusNotFound:
		l.WarnContext(ctx, "term not found", "term", term)
		return
	case lexicon.StatusConsistent:
		l.InfoContext(ctx, "term consistent", "term", term, "id", res.ID.String())
		return
	}

	l.DebugContext(ctx, "reverse lookup",
		"id", res.ID.String(),
		"reverse_bytes", res.Reverse,
	)

	attrs := []any{
		"term", term,
		"id", res.ID.String(),
		"status", res.Status.String(),
	}
	switch res.Status {
	case lexicon.StatusMismatch:
		attrs = append(attrs,
			"reverse_value", res.Decoded.StringValue(),
			"reverse_length", len(res.Decoded.StringValue()),
		)
	case lexicon.StatusUndecodable:
		attrs = append(attrs, "error", res.DecodeErr)
	}
	l.WarnContext(ctx, "bad term", attrs...)
}

// LogRepair logs a repair attempt.
func (l *Logger) LogRepair(ctx context.Context, term string, id lexicon.ID, inserted bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "repair failed",
			"term", term,
			"id", id.String(),
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "fixed, please re-check",
		"term", term,
		"id", id.String(),
		"inserted", inserted,
	)
}
