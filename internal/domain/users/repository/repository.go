package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository хранилище пользователей в PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, telegram_id, full_name, phone, is_admin, is_superadmin, created_at"

// CreateUser создает пользователя. Если telegram_id уже есть, возвращает model.ErrAlreadyRegistered.
func (r *UserRepository) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (telegram_id, full_name, phone, is_admin, is_superadmin)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO NOTHING
		RETURNING id, created_at`,
		user.TelegramID, user.FullName, user.Phone, user.IsAdmin, user.IsSuperAdmin,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrAlreadyRegistered
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByTelegramID получает пользователя по ID telegram, nil если его нет
func (r *UserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE telegram_id = $1", telegramID).
		Scan(&user.ID, &user.TelegramID, &user.FullName, &user.Phone, &user.IsAdmin, &user.IsSuperAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}
	return &user, nil
}

// UpdateUserRoles выставляет флаги ролей. false, если пользователя нет.
func (r *UserRepository) UpdateUserRoles(ctx context.Context, telegramID int64, isAdmin, isSuperAdmin bool) (bool, error) {
	result, err := r.db.Exec(ctx,
		"UPDATE users SET is_admin = $2, is_superadmin = $3 WHERE telegram_id = $1",
		telegramID, isAdmin, isSuperAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to update user roles: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
