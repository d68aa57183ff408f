package usecase

import (
	"context"
	"errors"
	"sync/atomic"

	"user-service/internal/domain"
)

// fakeHasher 可预测的哈希，测试里不跑 bcrypt
type fakeHasher struct{ calls atomic.Int32 }

func (h *fakeHasher) Hash(p domain.Password) (string, error) {
	h.calls.Add(1)
	return "hashed:" + p.Reveal(), nil
}

type failingHasher struct{ err error }

func (h failingHasher) Hash(domain.Password) (string, error) { return "", h.err }

var errDown = errors.New("connection refused")

// brokenRepo 每个方法都返回基础设施错误
type brokenRepo struct{ calls atomic.Int32 }

func (r *brokenRepo) FindAll(context.Context) ([]domain.User, error) {
	r.calls.Add(1)
	return nil, errDown
}

func (r *brokenRepo) FindByEmail(context.Context, domain.Email) (*domain.User, error) {
	r.calls.Add(1)
	return nil, errDown
}

func (r *brokenRepo) Save(context.Context, domain.User) error {
	r.calls.Add(1)
	return errDown
}

func (r *brokenRepo) DeleteByEmail(context.Context, domain.Email) error {
	r.calls.Add(1)
	return errDown
}

// saveFailsRepo 查询正常，写入失败
type saveFailsRepo struct {
	domain.UserRepository
	err error
}

func (r saveFailsRepo) Save(context.Context, domain.User) error { return r.err }

// nilListRepo 模拟返回 nil 切片的适配器
type nilListRepo struct{ domain.UserRepository }

func (nilListRepo) FindAll(context.Context) ([]domain.User, error) { return nil, nil }
