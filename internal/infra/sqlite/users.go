package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

// CreateUser создает пользователя. Если telegram_id уже есть, возвращает model.ErrAlreadyRegistered.
func (s *Store) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, full_name, phone, is_admin, is_superadmin, created_at_unix)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO NOTHING`,
		user.TelegramID, user.FullName, user.Phone, user.IsAdmin, user.IsSuperAdmin, toUnix(now))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return model.User{}, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return model.User{}, model.ErrAlreadyRegistered
	}
	if user.ID, err = result.LastInsertId(); err != nil {
		return model.User{}, fmt.Errorf("failed to read user id: %w", err)
	}
	user.CreatedAt = now
	return user, nil
}

// GetUserByTelegramID получает пользователя по ID telegram, nil если его нет
func (s *Store) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var (
		user    model.User
		created int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, telegram_id, full_name, phone, is_admin, is_superadmin, created_at_unix
		FROM users WHERE telegram_id = ?`, telegramID).
		Scan(&user.ID, &user.TelegramID, &user.FullName, &user.Phone, &user.IsAdmin, &user.IsSuperAdmin, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}
	user.CreatedAt = fromUnix(created)
	return &user, nil
}

// UpdateUserRoles выставляет флаги ролей. false, если пользователя нет.
func (s *Store) UpdateUserRoles(ctx context.Context, telegramID int64, isAdmin, isSuperAdmin bool) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_admin = ?, is_superadmin = ? WHERE telegram_id = ?",
		isAdmin, isSuperAdmin, telegramID)
	if err != nil {
		return false, fmt.Errorf("failed to update user roles: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}
