package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"user-service/internal/domain"
)

func mustUser(t *testing.T, email, name string) domain.User {
	t.Helper()
	e, err := domain.NewEmail(email)
	if err != nil {
		t.Fatal(err)
	}
	u, err := domain.NewUser(domain.NewUserID(), e, name, "hash:"+name)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func mustEmail(t *testing.T, raw string) domain.Email {
	t.Helper()
	e, err := domain.NewEmail(raw)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// runContract 每个适配器都要满足的端口语义
func runContract(t *testing.T, newRepo func(t *testing.T) domain.UserRepository) {
	ctx := context.Background()

	t.Run("empty store lists nothing", func(t *testing.T) {
		r := newRepo(t)
		us, err := r.FindAll(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if us == nil || len(us) != 0 {
			t.Fatalf("want empty non-nil slice, got %#v", us)
		}
	})

	t.Run("save then find", func(t *testing.T) {
		r := newRepo(t)
		u := mustUser(t, "luis.s@gmail.com", "Luís Soares")
		if err := r.Save(ctx, u); err != nil {
			t.Fatal(err)
		}
		got, err := r.FindByEmail(ctx, u.Email())
		if err != nil || got == nil {
			t.Fatalf("FindByEmail: %v %v", got, err)
		}
		if *got != u {
			t.Fatalf("got %+v, want %+v", *got, u)
		}
		missing, err := r.FindByEmail(ctx, mustEmail(t, "nobody@example.com"))
		if err != nil || missing != nil {
			t.Fatalf("absent email: %v %v", missing, err)
		}
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		r := newRepo(t)
		want := []domain.User{
			mustUser(t, "luis.s@gmail.com", "Luís Soares"),
			mustUser(t, "miguel.s@gmail.com", "Miguel Soares"),
			mustUser(t, "ana@example.com", "Ana"),
		}
		for _, u := range want {
			if err := r.Save(ctx, u); err != nil {
				t.Fatal(err)
			}
		}
		got, err := r.FindAll(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(want) {
			t.Fatalf("len = %d", len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("[%d] = %v, want %v", i, got[i].Email(), want[i].Email())
			}
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		r := newRepo(t)
		if err := r.Save(ctx, mustUser(t, "dup@example.com", "First")); err != nil {
			t.Fatal(err)
		}
		err := r.Save(ctx, mustUser(t, "dup@example.com", "Second"))
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("want ErrConflict, got %v", err)
		}
		us, _ := r.FindAll(ctx)
		if len(us) != 1 || us[0].Name() != "First" {
			t.Fatalf("first user must survive, got %v", us)
		}
	})

	t.Run("delete", func(t *testing.T) {
		r := newRepo(t)
		u := mustUser(t, "gone@example.com", "Gone")
		keep := mustUser(t, "keep@example.com", "Keep")
		_ = r.Save(ctx, u)
		_ = r.Save(ctx, keep)

		if err := r.DeleteByEmail(ctx, u.Email()); err != nil {
			t.Fatal(err)
		}
		if got, _ := r.FindByEmail(ctx, u.Email()); got != nil {
			t.Fatal("user still present after delete")
		}
		if err := r.DeleteByEmail(ctx, u.Email()); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("second delete: want ErrNotFound, got %v", err)
		}
		us, _ := r.FindAll(ctx)
		if len(us) != 1 || us[0] != keep {
			t.Fatalf("unexpected remaining users %v", us)
		}
		// 删除后可以重新注册
		if err := r.Save(ctx, mustUser(t, "gone@example.com", "Again")); err != nil {
			t.Fatalf("re-create after delete: %v", err)
		}
	})

	t.Run("concurrent saves of one email", func(t *testing.T) {
		r := newRepo(t)
		const n = 16
		users := make([]domain.User, n)
		for i := range users {
			users[i] = mustUser(t, "race@example.com", fmt.Sprintf("r%d", i))
		}
		var ok, conflict atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := r.Save(ctx, users[i])
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, domain.ErrConflict):
					conflict.Add(1)
				default:
					t.Errorf("unexpected error %v", err)
				}
			}(i)
		}
		wg.Wait()
		if ok.Load() != 1 || conflict.Load() != n-1 {
			t.Fatalf("ok=%d conflict=%d", ok.Load(), conflict.Load())
		}
	})
}
