package domain

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// UserID 用户唯一标识（不透明字符串，创建时生成）
type UserID struct{ value string }

// NewUserID generates a random (v4) identifier.
func NewUserID() UserID { return UserID{value: uuid.NewString()} }

// ParseUserID rehydrates an id read back from storage.
func ParseUserID(raw string) (UserID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UserID{}, &ValidationError{Field: "id", Reason: InvalidID}
	}
	return UserID{value: raw}, nil
}

func (id UserID) String() string { return id.value }

// IsZero reports whether the id was never set.
func (id UserID) IsZero() bool { return id.value == "" }

// local-part "@" domain, domain must contain a dot
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)+$`)

// Email 邮箱值对象，同时是用户的唯一键
type Email struct{ value string }

// NewEmail trims and lower-cases raw, then validates it.
func NewEmail(raw string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" || !emailRe.MatchString(v) {
		return Email{}, &ValidationError{Field: "email", Reason: InvalidEmail, Value: raw}
	}
	return Email{value: v}, nil
}

func (e Email) String() string { return e.value }

// Password 明文密码；只在哈希前短暂存在，不会进入 User
type Password struct{ raw string }

func NewPassword(raw string) Password { return Password{raw: raw} }

// Reveal returns the plain text. Only hashers should call it.
func (p Password) Reveal() string { return p.raw }

// String keeps the secret out of logs and fmt output.
func (p Password) String() string { return "********" }

func (p Password) GoString() string { return "domain.Password{********}" }

// PasswordHasher turns a raw password into its stored form.
type PasswordHasher interface {
	Hash(p Password) (string, error)
}

// User is the aggregate root. Fields are read-only once constructed.
type User struct {
	id           UserID
	email        Email
	name         string
	passwordHash string
}

// ValidateName rejects blank names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: EmptyName, Value: name}
	}
	return nil
}

// NewUser validates the name and assembles a user. The email is already valid by construction.
func NewUser(id UserID, email Email, name, passwordHash string) (User, error) {
	if id.IsZero() {
		return User{}, &ValidationError{Field: "id", Reason: InvalidID}
	}
	if email.value == "" {
		return User{}, &ValidationError{Field: "email", Reason: InvalidEmail}
	}
	if err := ValidateName(name); err != nil {
		return User{}, err
	}
	return User{id: id, email: email, name: name, passwordHash: passwordHash}, nil
}

func (u User) ID() UserID           { return u.id }
func (u User) Email() Email         { return u.email }
func (u User) Name() string         { return u.name }
func (u User) PasswordHash() string { return u.passwordHash }

// UserRepository 持久化端口，由 internal/repo 下的适配器实现
//
// FindAll returns every user (insertion order for the adapters in this repo),
// an empty slice when there are none.
// FindByEmail returns nil, nil when the email is unknown.
// Save returns ErrConflict when the email is taken; check and write are atomic.
// DeleteByEmail returns ErrNotFound when the email is unknown.
type UserRepository interface {
	FindAll(ctx context.Context) ([]User, error)
	FindByEmail(ctx context.Context, email Email) (*User, error)
	Save(ctx context.Context, u User) error
	DeleteByEmail(ctx context.Context, email Email) error
}
