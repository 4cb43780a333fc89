package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/printflow/internal/model"
)

var usersSpec = listSpec{
	table:   "users",
	columns: `id, name, email, password_hash, role, login_attempts, lock_until, last_login, active, created_at, updated_at`,
	search:  []string{"name ILIKE %[1]s", "email ILIKE %[1]s"},
	filters: map[string]filter{
		"role": {column: "role", kind: filterUpper},
	},
	sorts: map[string]string{
		"name":      "name",
		"email":     "email",
		"role":      "role",
		"lastLogin": "last_login",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.LoginAttempts,
		&u.LockUntil, &u.LastLogin, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser создаёт нового пользователя.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *model.User) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Active, u.CreatedAt, u.UpdatedAt,
	)
	return mapPgError(err, model.EntityUser)
}

// GetUser возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return getOne(ctx, r.conn(ctx), model.EntityUser, scanUser,
		`SELECT `+usersSpec.columns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return getOne(ctx, r.conn(ctx), model.EntityUser, scanUser,
		`SELECT `+usersSpec.columns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// ListUsers возвращает страницу пользователей.
func (r *PostgresRepository) ListUsers(ctx context.Context, q model.ListQuery) (model.Page[model.User], error) {
	return list(ctx, r.conn(ctx), model.EntityUser, usersSpec, q, scanUser)
}

// UpdateUser сохраняет имя, email и роль пользователя.
func (r *PostgresRepository) UpdateUser(ctx context.Context, u *model.User) error {
	return execOne(ctx, r.conn(ctx), model.EntityUser,
		`UPDATE users SET name = $2, email = $3, role = $4, updated_at = $5 WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Role, u.UpdatedAt,
	)
}

// UpdatePassword сохраняет новый хеш пароля.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash []byte, at time.Time) error {
	return execOne(ctx, r.conn(ctx), model.EntityUser,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, hash, at,
	)
}

// RecordFailedLogin атомарно увеличивает счётчик неудачных входов. При достижении
// maxAttempts учётная запись блокируется до lockUntil. Истёкшая блокировка
// сбрасывает счётчик, и текущая попытка считается первой.
func (r *PostgresRepository) RecordFailedLogin(ctx context.Context, id uuid.UUID, at time.Time, maxAttempts int, lockUntil time.Time) (*model.User, error) {
	return getOne(ctx, r.conn(ctx), model.EntityUser, scanUser,
		`UPDATE users SET
		     login_attempts = CASE WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN 1 ELSE login_attempts + 1 END,
		     lock_until = CASE
		         WHEN (CASE WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN 1 ELSE login_attempts + 1 END) >= $3 THEN $4
		         WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN NULL
		         ELSE lock_until
		     END,
		     updated_at = $2
		 WHERE id = $1
		 RETURNING `+usersSpec.columns,
		id, at, maxAttempts, lockUntil,
	)
}

// RecordLogin сбрасывает счётчик неудачных входов и фиксирует время входа.
func (r *PostgresRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return execOne(ctx, r.conn(ctx), model.EntityUser,
		`UPDATE users SET login_attempts = 0, lock_until = NULL, last_login = $2 WHERE id = $1`,
		id, at,
	)
}

// TouchLastLogin фиксирует время входа, не трогая счётчик неудачных попыток.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return execOne(ctx, r.conn(ctx), model.EntityUser,
		`UPDATE users SET last_login = $2 WHERE id = $1`,
		id, at,
	)
}

// UnlockUser снимает блокировку и сбрасывает счётчик неудачных входов.
func (r *PostgresRepository) UnlockUser(ctx context.Context, id uuid.UUID, at time.Time) error {
	return execOne(ctx, r.conn(ctx), model.EntityUser,
		`UPDATE users SET login_attempts = 0, lock_until = NULL, updated_at = $2 WHERE id = $1`,
		id, at,
	)
}

// AdminExists сообщает, есть ли активный администратор.
func (r *PostgresRepository) AdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE role = $1 AND active)`,
		model.RoleAdmin,
	).Scan(&exists)
	if err != nil {
		return false, mapPgError(err, model.EntityUser)
	}
	return exists, nil
}
