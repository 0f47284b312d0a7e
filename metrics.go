package triplecheck

import (
	"sync/atomic"

	"github.com/hupe1980/triplecheck/lexicon"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordStatement is called once per scanned statement.
	RecordStatement(mode Mode)

	// RecordMissing is called for every statement whose presence bit is unset.
	RecordMissing()

	// RecordTermCheck is called after each consistency check.
	RecordTermCheck(status lexicon.Status)

	// RecordRepair is called after each repair attempt. err is nil on success.
	RecordRepair(err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStatement(Mode)           {}
func (NoopMetricsCollector) RecordMissing()                 {}
func (NoopMetricsCollector) RecordTermCheck(lexicon.Status) {}
func (NoopMetricsCollector) RecordRepair(error)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	Built          atomic.Int64
	Verified       atomic.Int64
	Missing        atomic.Int64
	TermsChecked   atomic.Int64
	TermsNotFound  atomic.Int64
	TermsBad       atomic.Int64
	Repairs        atomic.Int64
	RepairFailures atomic.Int64
}

// RecordStatement implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStatement(mode Mode) {
	if mode == ModeVerify {
		b.Verified.Add(1)
	} else {
		b.Built.Add(1)
	}
}

// RecordMissing implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMissing() {
	b.Missing.Add(1)
}

// RecordTermCheck implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTermCheck(status lexicon.Status) {
	b.TermsChecked.Add(1)
	switch status {
	case lexicon.StatusNotFound:
		b.TermsNotFound.Add(1)
	case lexicon.StatusConsistent:
	default:
		b.TermsBad.Add(1)
	}
}

// RecordRepair implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRepair(err error) {
	b.Repairs.Add(1)
	if err != nil {
		b.RepairFailures.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Built:          b.Built.Load(),
		Verified:       b.Verified.Load(),
		Missing:        b.Missing.Load(),
		TermsChecked:   b.TermsChecked.Load(),
		TermsNotFound:  b.TermsNotFound.Load(),
		TermsBad:       b.TermsBad.Load(),
		Repairs:        b.Repairs.Load(),
		RepairFailures: b.RepairFailures.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Built          int64
	Verified       int64
	Missing        int64
	TermsChecked   int64
	TermsNotFound  int64
	TermsBad       int64
	Repairs        int64
	RepairFailures int64
}
