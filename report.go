package triplecheck

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Report summarizes a build or verify run.
type Report struct {
	RunID string
	Mode  Mode

	// Expected is the dataset size reported by a scan.Counter, or -1.
	Expected  int64
	Processed int64

	// Missing and MissingOrdinals are only populated by Verify. Ordinals are
	// 0-based positions in scan order.
	Missing         int64
	MissingOrdinals *roaring64.Bitmap

	// BitsSet is the bitmap's population count after a build.
	BitsSet uint64

	// Moving-average rates in statements per second.
	Rate1    float64
	Rate5    float64
	Rate15   float64
	RateMean float64

	Elapsed time.Duration
}

// Complete reports whether a verify run found every statement.
func (r *Report) Complete() bool {
	return r.Missing == 0
}

// WriteText renders the human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run:\t%s\n", r.RunID)
	fmt.Fprintf(tw, "mode:\t%s\n", r.Mode)
	if r.Expected >= 0 {
		fmt.Fprintf(tw, "expected:\t%d\n", r.Expected)
	}
	fmt.Fprintf(tw, "processed:\t%d\n", r.Processed)
	switch r.Mode {
	case ModeBuild:
		fmt.Fprintf(tw, "bits set:\t%d\n", r.BitsSet)
	case ModeVerify:
		fmt.Fprintf(tw, "missing:\t%d\n", r.Missing)
	}
	fmt.Fprintf(tw, "rate:\t%.0f/s (1m %.0f, 5m %.0f, 15m %.0f)\n", r.RateMean, r.Rate1, r.Rate5, r.Rate15)
	fmt.Fprintf(tw, "elapsed:\t%s\n", r.Elapsed.Round(time.Millisecond))
	return tw.Flush()
}

// WriteMissing writes MissingOrdinals in the portable roaring format.
func (r *Report) WriteMissing(w io.Writer) (int64, error) {
	if r.MissingOrdinals == nil {
		return roaring64.New().WriteTo(w)
	}
	return r.MissingOrdinals.WriteTo(w)
}

// ReadMissing reads ordinals written by WriteMissing.
func ReadMissing(rd io.Reader) (*roaring64.Bitmap, error) {
	b := roaring64.New()
	if _, err := b.ReadFrom(rd); err != nil {
		return nil, fmt.Errorf("triplecheck: read missing ordinals: %w", err)
	}
	return b, nil
}
