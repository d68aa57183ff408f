package usecase

import (
	"context"

	"go.uber.org/zap"

	"user-service/internal/domain"
)

// ListUsers returns every stored user as the repository hands them back.
type ListUsers struct {
	repo domain.UserRepository
	log  *zap.Logger
}

func NewListUsers(repo domain.UserRepository, log *zap.Logger) *ListUsers {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListUsers{repo: repo, log: log}
}

func (uc *ListUsers) Execute(ctx context.Context) (users []domain.User, err error) {
	defer func() { observe("list", err) }()

	users, err = uc.repo.FindAll(ctx)
	if err != nil {
		return nil, domain.Unavailable("list users", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	uc.log.Debug("users listed", zap.Int("count", len(users)))
	return users, nil
}
