package triplecheck

import (
	"github.com/google/uuid"

	"github.com/hupe1980/triplecheck/internal/resource"
)

// DefaultProgressInterval is the number of statements between progress records.
const DefaultProgressInterval = 10_000

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	progressInterval int64
	throttle         *resource.Controller
	missingLogLimit  int64
	runID            string
}

func defaultOptions() options {
	return options{
		logger:           NewLogger(nil),
		metricsCollector: NoopMetricsCollector{},
		progressInterval: DefaultProgressInterval,
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Option configures Build, Verify and CheckTerms.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, NoopLogger is used.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithProgressInterval sets how many statements pass between progress
// records. Values <= 0 disable progress records.
func WithProgressInterval(n int64) Option {
	return func(o *options) {
		o.progressInterval = n
	}
}

// WithRateLimit caps the scan at statementsPerSec statements per second.
// Zero removes the cap.
func WithRateLimit(statementsPerSec int) Option {
	return func(o *options) {
		if statementsPerSec <= 0 {
			o.throttle = nil
			return
		}
		o.throttle = resource.NewController(resource.Config{StatementsPerSec: statementsPerSec})
	}
}

// WithMissingLimit caps the number of per-statement "missing" log records in
// a verify run. Missing statements beyond the cap are still counted and
// recorded in the report. Zero means unlimited.
func WithMissingLimit(n int64) Option {
	return func(o *options) {
		o.missingLogLimit = n
	}
}

// WithRunID sets the run identifier reported in logs and reports instead of
// a random UUID.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

func (o options) newRunID() string {
	if o.runID != "" {
		return o.runID
	}
	return uuid.NewString()
}
