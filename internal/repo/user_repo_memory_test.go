package repo

import (
	"testing"

	"user-service/internal/domain"
)

func TestMemoryUserRepo(t *testing.T) {
	runContract(t, func(t *testing.T) domain.UserRepository { return NewMemoryUserRepo() })
}
