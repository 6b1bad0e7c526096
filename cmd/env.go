package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/arc-research/housing-dashboard/internal/cache"
	"github.com/arc-research/housing-dashboard/internal/config"
	"github.com/arc-research/housing-dashboard/internal/dashboard"
	"github.com/arc-research/housing-dashboard/internal/dataset"
	"github.com/arc-research/housing-dashboard/internal/db"
)

// dashboardEnv holds everything a command needs to render views.
type dashboardEnv struct {
	Registry *dataset.Registry
	Renderer *dashboard.Renderer
	Cache    cache.Cache   // may be nil
	Pool     *pgxpool.Pool // may be nil
}

// Close releases resources held by the environment.
func (e *dashboardEnv) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
}

// initDashboard validates the configuration for mode, loads every dataset
// and builds the renderer. withCache is false for one-shot commands. Callers
// should defer env.Close().
func initDashboard(ctx context.Context, c *config.Config, mode string, withCache bool) (*dashboardEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	env := &dashboardEnv{}
	var pool db.Pool
	if c.Data.NeedsDatabase() {
		p, err := db.Connect(ctx, c.Data.DatabaseURL)
		if err != nil {
			return nil, err
		}
		env.Pool = p
		pool = p
	}

	reg, err := dataset.Load(ctx, c.Data.Sources(), pool)
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "load datasets")
	}
	env.Registry = reg

	theme, err := dashboard.LoadTheme(c.Theme.Path)
	if err != nil {
		env.Close()
		return nil, err
	}

	opts := []dashboard.Option{dashboard.WithTheme(theme)}
	if withCache {
		ch, err := cache.New(ctx, cache.Options{
			Driver:     c.Cache.Driver,
			MaxEntries: c.Cache.MaxEntries,
			TTL:        c.Cache.TTL(),
			RedisAddr:  c.Cache.RedisAddr,
			RedisDB:    c.Cache.RedisDB,
		})
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Cache = ch
		if ch != nil {
			// Entries rendered from a previous snapshot are stale.
			if err := ch.Invalidate(ctx, ""); err != nil {
				zap.L().Warn("render cache: invalidate failed", zap.Error(err))
			}
			opts = append(opts, dashboard.WithCache(ch))
		}
		zap.L().Info("render cache ready", zap.String("driver", c.Cache.Driver))
	}
	env.Renderer = dashboard.NewRenderer(reg, opts...)
	return env, nil
}
