package user

import (
	"user-service/internal/domain"
)

// UserModel users 表结构（gorm 与 pgx 适配器共用同一张表）
type UserModel struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Email        string `gorm:"uniqueIndex;size:191;not null"` // utf8mb4 索引长度上限
	Name         string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:100;not null"`

	// 纳秒时间戳，用来保证列表按插入顺序返回
	CreatedAt int64 `gorm:"autoCreateTime:nano;index"`
}

func (UserModel) TableName() string { return "users" }

// FromDomain 领域对象 -> 表记录
func FromDomain(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID().String(),
		Email:        u.Email().String(),
		Name:         u.Name(),
		PasswordHash: u.PasswordHash(),
	}
}

// ToDomain 表记录 -> 领域对象；库里的脏数据会在这里报错
func (m UserModel) ToDomain() (domain.User, error) {
	id, err := domain.ParseUserID(m.ID)
	if err != nil {
		return domain.User{}, err
	}
	email, err := domain.NewEmail(m.Email)
	if err != nil {
		return domain.User{}, err
	}
	return domain.NewUser(id, email, m.Name, m.PasswordHash)
}

// ToDomainList 批量转换
func ToDomainList(ms []UserModel) ([]domain.User, error) {
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		u, err := m.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
