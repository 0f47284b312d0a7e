package resource

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Config holds throttling limits.
type Config struct {
	// StatementsPerSec caps the scan rate. If 0, unlimited.
	StatementsPerSec int

	// IOLimitBytesPerSec caps snapshot stream throughput. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller enforces the limits of a Config.
type Controller struct {
	cfg Config

	stmtLimiter *rate.Limiter
	ioLimiter   *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.StatementsPerSec > 0 {
		c.stmtLimiter = rate.NewLimiter(rate.Limit(cfg.StatementsPerSec), cfg.StatementsPerSec)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the limits the controller was built with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireStatement waits until one more statement may be processed.
func (c *Controller) AcquireStatement(ctx context.Context) error {
	if c == nil || c.stmtLimiter == nil {
		return nil
	}
	return c.stmtLimiter.Wait(ctx)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the bucket are split into bucket-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
// Returns true if tokens were acquired, false otherwise.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}
