package repo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"user-service/internal/core/cache"
	"user-service/internal/domain"
)

// countingRepo 记录 FindAll 回源次数
type countingRepo struct {
	domain.UserRepository
	findAll int
	failAll error
}

func (c *countingRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	c.findAll++
	if c.failAll != nil {
		return nil, c.failAll
	}
	return c.UserRepository.FindAll(ctx)
}

// currentListKey 读方此刻会用的列表 key
func currentListKey(mr *miniredis.Miniredis) string {
	var gen int64
	if v, err := mr.Get(usersListGenKey); err == nil {
		gen, _ = strconv.ParseInt(v, 10, 64)
	}
	return listKey(gen)
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCachedUserRepo_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) domain.UserRepository {
		c, _ := newTestCache(t)
		return NewCachedUserRepo(NewMemoryUserRepo(), c, time.Minute, nil)
	})
}

func TestCachedUserRepo_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	base := &countingRepo{UserRepository: NewMemoryUserRepo()}
	r := NewCachedUserRepo(base, c, time.Minute, nil)

	u := mustUser(t, "luis.s@gmail.com", "Luís Soares")
	if err := r.Save(ctx, u); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		us, err := r.FindAll(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(us) != 1 || us[0] != u {
			t.Fatalf("unexpected list %v", us)
		}
	}
	if base.findAll != 1 {
		t.Fatalf("backend hit %d times, want 1", base.findAll)
	}
	if !mr.Exists(currentListKey(mr)) {
		t.Fatal("list not cached")
	}

	// 写操作让缓存失效
	if err := r.DeleteByEmail(ctx, u.Email()); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(currentListKey(mr)) {
		t.Fatal("delete did not invalidate")
	}
	us, _ := r.FindAll(ctx)
	if len(us) != 0 || base.findAll != 2 {
		t.Fatalf("after delete: %v, hits=%d", us, base.findAll)
	}
}

func TestCachedUserRepo_FailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	r := NewCachedUserRepo(NewMemoryUserRepo(), c, time.Minute, nil)

	_ = r.Save(ctx, mustUser(t, "a@example.com", "A"))
	_, _ = r.FindAll(ctx)

	if err := r.Save(ctx, mustUser(t, "a@example.com", "B")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if !mr.Exists(currentListKey(mr)) {
		t.Fatal("conflicting save must not invalidate")
	}
}

func TestCachedUserRepo_BackendErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	boom := errors.New("db down")
	base := &countingRepo{UserRepository: NewMemoryUserRepo(), failAll: boom}
	r := NewCachedUserRepo(base, c, time.Minute, nil)

	if _, err := r.FindAll(ctx); !errors.Is(err, boom) {
		t.Fatalf("want backend error, got %v", err)
	}
	if mr.Exists(currentListKey(mr)) {
		t.Fatal("error result cached")
	}
}

func TestCachedUserRepo_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	r := NewCachedUserRepo(NewMemoryUserRepo(), c, time.Minute, nil)
	_ = r.Save(ctx, mustUser(t, "a@example.com", "A"))

	mr.SetError("LOADING redis is loading the dataset")
	us, err := r.FindAll(ctx)
	if err != nil || len(us) != 1 {
		t.Fatalf("want fallback to backend, got %v %v", us, err)
	}
}

func TestCachedUserRepo_CorruptEntryReloads(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	base := &countingRepo{UserRepository: NewMemoryUserRepo()}
	r := NewCachedUserRepo(base, c, time.Minute, nil)

	u := mustUser(t, "miguel.s@gmail.com", "Miguel Soares")
	if err := r.Save(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := mr.Set(currentListKey(mr), "{not json"); err != nil {
		t.Fatal(err)
	}

	us, err := r.FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(us) != 1 || us[0] != u {
		t.Fatalf("unexpected list %v", us)
	}
	if base.findAll != 1 {
		t.Fatalf("backend hit %d times, want 1", base.findAll)
	}
	if got, _ := mr.Get(currentListKey(mr)); got == "{not json" {
		t.Fatal("corrupt entry was not replaced")
	}
}

// gatedRepo 第一次 FindAll 拿到快照后停住，等测试放行再返回
type gatedRepo struct {
	domain.UserRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	us, err := g.UserRepository.FindAll(ctx)
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return us, err
}

func TestCachedUserRepo_WriteDuringLoadNotStale(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	for _, op := range []string{"save", "delete"} {
		t.Run(op, func(t *testing.T) {
			mem := NewMemoryUserRepo()
			u := mustUser(t, "luis.s@gmail.com", "Luís Soares")
			if op == "delete" {
				if err := mem.Save(ctx, u); err != nil {
					t.Fatal(err)
				}
			}
			// 每个子测试独立的代数空间
			if err := c.RDB.FlushAll(ctx).Err(); err != nil {
				t.Fatal(err)
			}
			base := &gatedRepo{UserRepository: mem, entered: make(chan struct{}), release: make(chan struct{})}
			r := NewCachedUserRepo(base, c, time.Minute, nil)

			done := make(chan error, 1)
			go func() {
				_, err := r.FindAll(ctx)
				done <- err
			}()
			<-base.entered

			var writeErr error
			if op == "save" {
				writeErr = r.Save(ctx, u)
			} else {
				writeErr = r.DeleteByEmail(ctx, u.Email())
			}
			close(base.release)
			if err := <-done; err != nil {
				t.Fatal(err)
			}
			if writeErr != nil {
				t.Fatal(writeErr)
			}

			us, err := r.FindAll(ctx)
			if err != nil {
				t.Fatal(err)
			}
			want := 1
			if op == "delete" {
				want = 0
			}
			if len(us) != want {
				t.Fatalf("list after completed %s: %d users, want %d", op, len(us), want)
			}
		})
	}
}
