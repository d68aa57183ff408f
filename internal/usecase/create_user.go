package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"user-service/internal/domain"
)

// CreateUser validates input, hashes the password and stores a new user.
type CreateUser struct {
	repo   domain.UserRepository
	hasher domain.PasswordHasher
	log    *zap.Logger
	newID  func() domain.UserID
}

type CreateOption func(*CreateUser)

// WithIDGenerator replaces domain.NewUserID.
func WithIDGenerator(gen func() domain.UserID) CreateOption {
	return func(uc *CreateUser) { uc.newID = gen }
}

func NewCreateUser(repo domain.UserRepository, hasher domain.PasswordHasher, log *zap.Logger, opts ...CreateOption) *CreateUser {
	if log == nil {
		log = zap.NewNop()
	}
	uc := &CreateUser{repo: repo, hasher: hasher, log: log, newID: domain.NewUserID}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

func (uc *CreateUser) Execute(ctx context.Context, rawEmail, name, rawPassword string) (u domain.User, err error) {
	defer func() { observe("create", err) }()

	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return domain.User{}, err
	}
	// 名字先校验，避免无意义的哈希
	if err := domain.ValidateName(name); err != nil {
		return domain.User{}, err
	}

	// 提前查一次：大多数重复请求在这里就返回，省掉 bcrypt
	existing, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, domain.Unavailable("find user by email", err)
	}
	if existing != nil {
		return domain.User{}, fmt.Errorf("create %s: %w", email, domain.ErrDuplicateUser)
	}

	hash, err := uc.hasher.Hash(domain.NewPassword(rawPassword))
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err = domain.NewUser(uc.newID(), email, name, hash)
	if err != nil {
		return domain.User{}, err
	}

	// 唯一性以 Save 为准（并发下 FindByEmail 可能都看不到）
	if err := uc.repo.Save(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.User{}, fmt.Errorf("create %s: %w", email, domain.ErrDuplicateUser)
		}
		return domain.User{}, domain.Unavailable("save user", err)
	}

	uc.log.Debug("user created", zap.String("id", u.ID().String()), zap.String("email", email.String()))
	return u, nil
}
