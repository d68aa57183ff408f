package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"user-service/internal/domain"
)

// DeleteUser removes the user owning the given email.
type DeleteUser struct {
	repo domain.UserRepository
	log  *zap.Logger
}

func NewDeleteUser(repo domain.UserRepository, log *zap.Logger) *DeleteUser {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeleteUser{repo: repo, log: log}
}

func (uc *DeleteUser) Execute(ctx context.Context, rawEmail string) (err error) {
	defer func() { observe("delete", err) }()

	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return err
	}
	if err := uc.repo.DeleteByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete %s: %w", email, domain.ErrUserNotFound)
		}
		return domain.Unavailable("delete user", err)
	}
	uc.log.Debug("user deleted", zap.String("email", email.String()))
	return nil
}
