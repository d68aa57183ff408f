package repo

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"user-service/internal/core/cache"
	"user-service/internal/domain"
	"user-service/internal/feature/user"
)

const (
	usersListKey    = "users:list:v1"
	usersListGenKey = "users:list:gen"
)

// listKey 当前代数下的列表 key；写操作推进代数，旧 key 自然过期
func listKey(gen int64) string { return usersListKey + ":" + strconv.FormatInt(gen, 10) }

// 缓存里的形状，密码哈希也要带上才能还原 domain.User
type cachedUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
}

// CachedUserRepo redis 读穿缓存装饰器，只缓存 FindAll
type CachedUserRepo struct {
	next  domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedUserRepo(next domain.UserRepository, c *cache.Cache, ttl time.Duration, log *zap.Logger) *CachedUserRepo {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedUserRepo{next: next, cache: c, ttl: ttl, log: log}
}

// FindAll 代数必须在回源之前读，这样并发写完成后的读一定落到新 key
func (r *CachedUserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	gen, err := r.cache.Generation(ctx, usersListGenKey)
	if err != nil {
		r.log.Warn("cache generation read failed, reading backend", zap.Error(err))
		return r.next.FindAll(ctx)
	}
	list, err := cache.GetOrLoadJSON(ctx, r.cache, listKey(gen), r.ttl, func(ctx context.Context) ([]cachedUser, error) {
		us, err := r.next.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]cachedUser, 0, len(us))
		for _, u := range us {
			out = append(out, cachedUser{
				ID:           u.ID().String(),
				Email:        u.Email().String(),
				Name:         u.Name(),
				PasswordHash: u.PasswordHash(),
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	ms := make([]user.UserModel, 0, len(list))
	for _, c := range list {
		ms = append(ms, user.UserModel{ID: c.ID, Email: c.Email, Name: c.Name, PasswordHash: c.PasswordHash})
	}
	return user.ToDomainList(ms)
}

// FindByEmail 直接走底层，唯一性检查不能读到旧数据
func (r *CachedUserRepo) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	return r.next.FindByEmail(ctx, email)
}

func (r *CachedUserRepo) Save(ctx context.Context, u domain.User) error {
	if err := r.next.Save(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedUserRepo) DeleteByEmail(ctx context.Context, email domain.Email) error {
	if err := r.next.DeleteByEmail(ctx, email); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Ping 只检查底层存储；redis 挂了仍可回源
func (r *CachedUserRepo) Ping(ctx context.Context) error {
	if p, ok := r.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (r *CachedUserRepo) invalidate(ctx context.Context) {
	if err := r.cache.Bump(ctx, usersListGenKey); err != nil {
		r.log.Warn("cache invalidate failed", zap.String("key", usersListGenKey), zap.Error(err))
	}
}

var _ domain.UserRepository = (*CachedUserRepo)(nil)
