package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxOpts 原生 pgx 连接池参数
type PgxOpts struct {
	DSN                string
	MaxConns           int32
	MinConns           int32
	ConnMaxLifetimeMin int
	ConnMaxIdleMin     int
}

// NewPgxPool 建池并 Ping，失败时关闭连接池
func NewPgxPool(ctx context.Context, o PgxOpts) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(o.DSN)
	if err != nil {
		return nil, err
	}
	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 {
		cfg.MinConns = o.MinConns
	}
	if o.ConnMaxLifetimeMin > 0 {
		cfg.MaxConnLifetime = time.Duration(o.ConnMaxLifetimeMin) * time.Minute
	}
	if o.ConnMaxIdleMin > 0 {
		cfg.MaxConnIdleTime = time.Duration(o.ConnMaxIdleMin) * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
