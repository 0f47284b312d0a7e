package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/triplecheck"
	"github.com/hupe1980/triplecheck/internal/config"
	"github.com/hupe1980/triplecheck/ntriples"
	"github.com/hupe1980/triplecheck/presence"
	"github.com/hupe1980/triplecheck/scan"
	"github.com/hupe1980/triplecheck/sqlstore"
)

// openSource opens the configured statement source. The returned close
// function is never nil.
func openSource(ctx context.Context, cfg *config.Config) (scan.Scanner, func() error, error) {
	noop := func() error { return nil }

	if err := cfg.RequireSource(); err != nil {
		return nil, noop, err
	}

	switch cfg.Source.Driver {
	case config.DriverNTriples:
		f, err := ntriples.Open(cfg.Source.Path)
		if err != nil {
			return nil, noop, triplecheck.NewError(triplecheck.KindStoreInit, "open", err)
		}
		return f, noop, nil
	default:
		st, err := openStore(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return st, st.Close, nil
	}
}

// openStore opens the configured SQL store.
func openStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	if err := cfg.RequireSource(); err != nil {
		return nil, err
	}
	if cfg.Source.Driver != config.DriverSQLite && cfg.Source.Driver != config.DriverPostgres {
		return nil, triplecheck.NewError(triplecheck.KindConfig, "source",
			fmt.Errorf("driver %q has no term dictionary; use %s or %s",
				cfg.Source.Driver, config.DriverSQLite, config.DriverPostgres))
	}

	st, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:    cfg.Source.Driver,
		DSN:       cfg.Source.DSN,
		Namespace: cfg.Source.Namespace,
	})
	if err != nil {
		return nil, triplecheck.NewError(triplecheck.KindStoreInit, "open", err)
	}
	return st, nil
}

// bitmapPath returns the --map flag, falling back to bitmap.path.
func bitmapPath(flag string, cfg *config.Config) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.Bitmap.Path != "" {
		return cfg.Bitmap.Path, nil
	}
	return "", triplecheck.NewError(triplecheck.KindConfig, "bitmap",
		errors.New("no bitmap file: pass --map or set bitmap.path"))
}

func openBitmap(path string, mode presence.Mode, cfg *config.Config) (*presence.Bitmap, error) {
	bm, err := presence.Open(path, mode, presence.WithMapSize(cfg.Bitmap.MapSize))
	if err != nil {
		return nil, triplecheck.NewError(triplecheck.KindBitmap, "open", err)
	}
	return bm, nil
}
