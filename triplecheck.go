package triplecheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	gometrics "github.com/rcrowley/go-metrics"

	"github.com/hupe1980/triplecheck/fingerprint"
	"github.com/hupe1980/triplecheck/model"
	"github.com/hupe1980/triplecheck/scan"
)

// Mode is the kind of run a Report describes.
type Mode int

const (
	// ModeBuild marks one bit per statement.
	ModeBuild Mode = iota
	// ModeVerify tests one bit per statement.
	ModeVerify
)

func (m Mode) String() string {
	switch m {
	case ModeBuild:
		return "build"
	case ModeVerify:
		return "verify"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Bitmap is the presence bitmap a run reads or writes.
// *presence.Bitmap implements it.
type Bitmap interface {
	Address(st model.Statement) (fingerprint.Address, error)
	Mark(addr fingerprint.Address) error
	Test(addr fingerprint.Address) (bool, error)
	Flush() error
	Count() uint64
}

// Build marks the bit of every statement the scanner yields.
//
// The bitmap is flushed on every exit path. If the scan fails or ctx is
// cancelled, the partial Report is returned together with a KindScan error.
func Build(ctx context.Context, sc scan.Scanner, bm Bitmap, optFns ...Option) (*Report, error) {
	return run(ctx, ModeBuild, sc, bm, applyOptions(optFns))
}

// Verify tests the bit of every statement the scanner yields. Statements
// whose bit is unset are logged and recorded in Report.MissingOrdinals;
// they are diagnostics, not errors.
func Verify(ctx context.Context, sc scan.Scanner, bm Bitmap, optFns ...Option) (*Report, error) {
	return run(ctx, ModeVerify, sc, bm, applyOptions(optFns))
}

func run(ctx context.Context, mode Mode, sc scan.Scanner, bm Bitmap, o options) (*Report, error) {
	r := &Report{
		RunID:           o.newRunID(),
		Mode:            mode,
		Expected:        -1,
		MissingOrdinals: roaring64.New(),
	}
	log := o.logger.WithRunID(r.RunID).WithMode(mode.String())

	if c, ok := sc.(scan.Counter); ok {
		n, err := c.StatementCount(ctx)
		if err != nil {
			log.WarnContext(ctx, "statement count unavailable", "error", err)
		} else {
			r.Expected = n
			log.LogStatementCount(ctx, n)
		}
	}

	meter := gometrics.NewMeter()
	defer meter.Stop()

	start := time.Now()
	runErr := scanInto(ctx, mode, sc, bm, o, log, r, meter)

	var flushErr error
	if err := bm.Flush(); err != nil {
		flushErr = NewError(KindBitmap, "flush", err)
	}

	snap := meter.Snapshot()
	r.Rate1 = snap.Rate1()
	r.Rate5 = snap.Rate5()
	r.Rate15 = snap.Rate15()
	r.RateMean = snap.RateMean()
	r.Elapsed = time.Since(start)
	if mode == ModeBuild {
		r.BitsSet = bm.Count()
	}

	if err := errors.Join(runErr, flushErr); err != nil {
		log.ErrorContext(ctx, "run aborted", "count", r.Processed, "error", err)
		return r, err
	}

	log.LogSummary(ctx, r)
	return r, nil
}

func scanInto(ctx context.Context, mode Mode, sc scan.Scanner, bm Bitmap, o options, log *Logger, r *Report, meter gometrics.Meter) error {
	for st, err := range sc.Statements(ctx) {
		if err != nil {
			return NewError(KindScan, "scan", err)
		}
		if err := ctx.Err(); err != nil {
			return NewError(KindScan, "scan", err)
		}
		if err := o.throttle.AcquireStatement(ctx); err != nil {
			return NewError(KindScan, "throttle", err)
		}

		addr, err := bm.Address(st)
		if err != nil {
			return NewError(KindBitmap, "address", err)
		}

		switch mode {
		case ModeBuild:
			if err := bm.Mark(addr); err != nil {
				return NewError(KindBitmap, "mark", err)
			}
		case ModeVerify:
			present, err := bm.Test(addr)
			if err != nil {
				return NewError(KindBitmap, "test", err)
			}
			if !present {
				r.Missing++
				r.MissingOrdinals.Add(uint64(r.Processed))
				o.metricsCollector.RecordMissing()
				if o.missingLogLimit <= 0 || r.Missing <= o.missingLogLimit {
					log.LogMissing(ctx, r.Processed, st)
				}
			}
		}

		r.Processed++
		meter.Mark(1)
		o.metricsCollector.RecordStatement(mode)

		if o.progressInterval > 0 && r.Processed%o.progressInterval == 0 {
			log.LogProgress(ctx, r.Processed, meter.Rate1(), meter.Rate5(), meter.Rate15())
		}
	}
	return nil
}
