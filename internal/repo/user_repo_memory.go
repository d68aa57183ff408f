package repo

import (
	"context"
	"fmt"
	"sync"

	"user-service/internal/domain"
)

// MemoryUserRepo 内存适配器：开发环境和单元测试使用
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byEmail map[domain.Email]domain.User
	order   []domain.Email // 插入顺序
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byEmail: make(map[domain.Email]domain.User)}
}

func (r *MemoryUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.order))
	for _, e := range r.order {
		out = append(out, r.byEmail[e])
	}
	return out, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email domain.Email) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Save 检查与写入在同一把锁内完成
func (r *MemoryUserRepo) Save(_ context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email()]; ok {
		return fmt.Errorf("save %s: %w", u.Email(), domain.ErrConflict)
	}
	r.byEmail[u.Email()] = u
	r.order = append(r.order, u.Email())
	return nil
}

func (r *MemoryUserRepo) DeleteByEmail(_ context.Context, email domain.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; !ok {
		return fmt.Errorf("delete %s: %w", email, domain.ErrNotFound)
	}
	delete(r.byEmail, email)
	for i, e := range r.order {
		if e == email {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryUserRepo) Ping(context.Context) error { return nil }

var _ domain.UserRepository = (*MemoryUserRepo)(nil)
