package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"user-service/internal/core/cache"
	"user-service/internal/core/config"
	"user-service/internal/core/database"
	"user-service/internal/domain"
)

// Store 打开后的存储：端口实现 + 生命周期钩子
type Store struct {
	Users domain.UserRepository

	driver  string
	migrate func(context.Context) error
	ping    func(context.Context) error
	closers []func() error
}

// Open 按 storage.driver 创建适配器
func Open(ctx context.Context, c config.Storage, l *zap.Logger) (*Store, error) {
	if l == nil {
		l = zap.NewNop()
	}
	switch c.Driver {
	case "", "memory":
		r := NewMemoryUserRepo()
		return &Store{Users: r, driver: "memory", ping: r.Ping}, nil

	case "sqlite", "mysql", "postgres":
		db, err := database.NewGorm(database.Opts{
			Driver:             c.Driver,
			DSN:                c.DSN,
			Username:           c.Username,
			Password:           c.Password,
			MaxOpenConns:       c.MaxOpenConns,
			MaxIdleConns:       c.MaxIdleConns,
			ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
			LogLevel:           c.LogLevel,
			Logger:             l,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", c.Driver, err)
		}
		r := NewUserRepo(db)
		return &Store{
			Users:   r,
			driver:  c.Driver,
			migrate: r.Migrate,
			ping:    r.Ping,
			closers: []func() error{func() error { return database.Close(db) }},
		}, nil

	case "pgx":
		pool, err := database.NewPgxPool(ctx, database.PgxOpts{
			DSN:                c.DSN,
			MaxConns:           int32(c.MaxOpenConns),
			MinConns:           int32(c.MaxIdleConns),
			ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
		})
		if err != nil {
			return nil, fmt.Errorf("open pgx: %w", err)
		}
		r := NewPgxUserRepo(pool)
		return &Store{
			Users:   r,
			driver:  "pgx",
			migrate: r.Migrate,
			ping:    r.Ping,
			closers: []func() error{func() error { pool.Close(); return nil }},
		}, nil
	}
	return nil, fmt.Errorf("storage.driver %q: %w", c.Driver, config.ErrUnsupportedDriver)
}

func (s *Store) Driver() string { return s.driver }

// Migrate 建表；内存存储无需迁移
func (s *Store) Migrate(ctx context.Context) error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(ctx)
}

// Ping 就绪检查用
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// WithCache 在 Users 外面套一层 redis 读穿缓存
func (s *Store) WithCache(c *cache.Cache, ttl time.Duration, l *zap.Logger) {
	s.Users = NewCachedUserRepo(s.Users, c, ttl, l)
	s.closers = append(s.closers, c.Close)
}

// Close 逆序关闭
func (s *Store) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
