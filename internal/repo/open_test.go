package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"user-service/internal/core/config"
)

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), config.Storage{Driver: "memory"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.Users.(*MemoryUserRepo); !ok {
		t.Fatalf("got %T", s.Users)
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_SQLiteWithCache(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, config.Storage{
		Driver:   "sqlite",
		DSN:      "file:" + filepath.Join(t.TempDir(), "u.db"),
		LogLevel: "silent",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Driver() != "sqlite" {
		t.Fatalf("driver = %s", s.Driver())
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestCache(t)
	s.WithCache(c, time.Minute, nil)
	if _, ok := s.Users.(*CachedUserRepo); !ok {
		t.Fatalf("got %T", s.Users)
	}
	if err := s.Users.Save(ctx, mustUser(t, "a@example.com", "A")); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_Unsupported(t *testing.T) {
	_, err := Open(context.Background(), config.Storage{Driver: "oracle"}, nil)
	if !errors.Is(err, config.ErrUnsupportedDriver) {
		t.Fatalf("want ErrUnsupportedDriver, got %v", err)
	}
}
