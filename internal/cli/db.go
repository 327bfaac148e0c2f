package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/csvdata/internal/config"
	"github.com/JonMunkholm/csvdata/internal/store"
)

// connect opens and pings a connection pool configured by cfg.
func connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Debug("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}

// openDatabase is the default storeOpener: Postgres when configured,
// errNoDatabase otherwise.
func (a *app) openDatabase(ctx context.Context) (store.Store, func(), error) {
	if !a.cfg.Database.Enabled() {
		return nil, nil, errNoDatabase
	}
	pool, err := connect(ctx, a.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}
