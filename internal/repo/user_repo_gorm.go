package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"user-service/internal/domain"
	"user-service/internal/feature/user"
)

// UserRepo gorm 适配器（mysql / postgres / sqlite）
type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// Migrate 建表 + email 唯一索引
func (r *UserRepo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&user.UserModel{})
}

func (r *UserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	var ms []user.UserModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return user.ToDomainList(ms)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).First(&m, "email = ?", email.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u, err := m.ToDomain()
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Save 唯一性交给数据库的 uniqueIndex 保证
func (r *UserRepo) Save(ctx context.Context, u domain.User) error {
	m := user.FromDomain(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return fmt.Errorf("save %s: %w", m.Email, domain.ErrConflict)
		}
		return err
	}
	return nil
}

// DeleteByEmail 物理删除（软删会占住唯一索引，导致无法重新注册）
func (r *UserRepo) DeleteByEmail(ctx context.Context, email domain.Email) error {
	res := r.db.WithContext(ctx).Where("email = ?", email.String()).Delete(&user.UserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s: %w", email, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 驱动没开 TranslateError 时按错误文本兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

var _ domain.UserRepository = (*UserRepo)(nil)
