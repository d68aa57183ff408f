package utils

import (
	"golang.org/x/crypto/bcrypt"

	"user-service/internal/domain"
)

// bcrypt 只看前 72 字节，更长的密码直接拒绝，避免静默截断
const maxBcryptBytes = 72

// BcryptHasher 实现 domain.PasswordHasher
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(p domain.Password) (string, error) {
	raw := p.Reveal()
	if len(raw) > maxBcryptBytes {
		return "", &domain.ValidationError{Field: "password", Reason: domain.PasswordTooLong}
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var _ domain.PasswordHasher = BcryptHasher{}
