package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"user-service/internal/domain"
	"user-service/internal/repo"
)

func TestUseCaseCounter(t *testing.T) {
	uc := NewDeleteUser(repo.NewMemoryUserRepo(), nil)
	before := testutil.ToFloat64(usecaseTotal.WithLabelValues("delete", "not_found"))
	_ = uc.Execute(context.Background(), "ghost@example.com")
	after := testutil.ToFloat64(usecaseTotal.WithLabelValues("delete", "not_found"))
	if after-before != 1 {
		t.Fatalf("counter delta = %v", after-before)
	}
}

// badRowRepo 存储里读出的记录还原失败
type badRowRepo struct{ domain.UserRepository }

func (badRowRepo) FindAll(context.Context) ([]domain.User, error) {
	return nil, &domain.ValidationError{Field: "email", Reason: domain.InvalidEmail, Value: "not-an-email"}
}

func TestUseCaseCounter_StorageSideValidationIsError(t *testing.T) {
	uc := NewListUsers(badRowRepo{repo.NewMemoryUserRepo()}, nil)
	errBefore := testutil.ToFloat64(usecaseTotal.WithLabelValues("list", "error"))
	invalidBefore := testutil.ToFloat64(usecaseTotal.WithLabelValues("list", "invalid"))

	_, err := uc.Execute(context.Background())
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if d := testutil.ToFloat64(usecaseTotal.WithLabelValues("list", "error")) - errBefore; d != 1 {
		t.Errorf("error delta = %v", d)
	}
	if d := testutil.ToFloat64(usecaseTotal.WithLabelValues("list", "invalid")) - invalidBefore; d != 0 {
		t.Errorf("invalid delta = %v", d)
	}
}
