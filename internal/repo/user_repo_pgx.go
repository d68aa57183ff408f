package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-service/internal/domain"
	"user-service/internal/feature/user"
)

// 与 gorm 的 AutoMigrate 结果保持兼容，两种适配器可以指向同一个库
const pgxSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            VARCHAR(36)  PRIMARY KEY,
    email         VARCHAR(191) NOT NULL,
    name          VARCHAR(255) NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    created_at    BIGINT       NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email);
CREATE INDEX IF NOT EXISTS idx_users_created_at ON users (created_at);`

const pgUniqueViolation = "23505"

// PgxUserRepo 原生 pgx 适配器（postgres）
type PgxUserRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPgxUserRepo(pool *pgxpool.Pool) *PgxUserRepo {
	return &PgxUserRepo{pool: pool, now: time.Now}
}

func (r *PgxUserRepo) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, pgxSchema)
	return err
}

func (r *PgxUserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	const q = `
        SELECT id, email, name, password_hash, created_at
        FROM users ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	ms, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, err
	}
	return user.ToDomainList(ms)
}

func (r *PgxUserRepo) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	const q = `
        SELECT id, email, name, password_hash, created_at
        FROM users WHERE email=$1`

	rows, err := r.pool.Query(ctx, q, email.String())
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
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

// Save ON CONFLICT 让检查和写入在一条语句里完成
func (r *PgxUserRepo) Save(ctx context.Context, u domain.User) error {
	const q = `
        INSERT INTO users (id, email, name, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email) DO NOTHING`

	m := user.FromDomain(u)
	tag, err := r.pool.Exec(ctx, q, m.ID, m.Email, m.Name, m.PasswordHash, r.now().UnixNano())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("save %s: %w", m.Email, domain.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save %s: %w", m.Email, domain.ErrConflict)
	}
	return nil
}

func (r *PgxUserRepo) DeleteByEmail(ctx context.Context, email domain.Email) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email=$1`, email.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %s: %w", email, domain.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepo) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func scanUser(row pgx.CollectableRow) (user.UserModel, error) {
	var m user.UserModel
	err := row.Scan(&m.ID, &m.Email, &m.Name, &m.PasswordHash, &m.CreatedAt)
	return m, err
}

var _ domain.UserRepository = (*PgxUserRepo)(nil)
