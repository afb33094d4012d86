package service

import (
	"context"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/rs/zerolog/log"
)

// UserRepository пользователи с флагами ролей
type UserRepository interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateUserRoles(ctx context.Context, telegramID int64, isAdmin, isSuperAdmin bool) (bool, error)
}

// AccessService проверка прав. Привилегия складывается из двух источников:
// список админов из конфигурации и флаги, сохраненные у пользователя.
type AccessService struct {
	userRepo UserRepository
	adminIDs map[int64]struct{}
}

// NewAccessService создает новый экземпляр AccessService
func NewAccessService(userRepo UserRepository, adminIDs []int64) *AccessService {
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	return &AccessService{userRepo: userRepo, adminIDs: ids}
}

// Privileged capability-проверка: id из конфигурации или сохраненный флаг admin/superadmin
func Privileged(configured bool, user *model.User) bool {
	return configured || (user != nil && (user.IsAdmin || user.IsSuperAdmin))
}

// Super то же для суперадмина
func Super(configured bool, user *model.User) bool {
	return configured || (user != nil && user.IsSuperAdmin)
}

// IsConfiguredAdmin id указан в конфигурации
func (s *AccessService) IsConfiguredAdmin(callerID int64) bool {
	_, ok := s.adminIDs[callerID]
	return ok
}

// IsPrivileged может ли пользователь создавать и удалять тесты и смотреть чужие результаты
func (s *AccessService) IsPrivileged(ctx context.Context, callerID int64) (bool, error) {
	if s.IsConfiguredAdmin(callerID) {
		return true, nil
	}
	user, err := s.userRepo.GetUserByTelegramID(ctx, callerID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return Privileged(false, user), nil
}

// IsSuperAdmin может ли пользователь управлять админами
func (s *AccessService) IsSuperAdmin(ctx context.Context, callerID int64) (bool, error) {
	if s.IsConfiguredAdmin(callerID) {
		return true, nil
	}
	user, err := s.userRepo.GetUserByTelegramID(ctx, callerID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return Super(false, user), nil
}

// GrantAdmin выдает пользователю права админа и суперадмина
func (s *AccessService) GrantAdmin(ctx context.Context, actorID, targetID int64) (model.User, error) {
	return s.SetRole(ctx, actorID, targetID, model.RoleSuperAdmin)
}

// RevokeAdmin снимает с пользователя оба флага
func (s *AccessService) RevokeAdmin(ctx context.Context, actorID, targetID int64) (model.User, error) {
	return s.SetRole(ctx, actorID, targetID, model.RoleUser)
}

// SetRole выставляет роль зарегистрированному пользователю. Вызывать может только суперадмин.
// Админов из конфигурации понизить нельзя: их права не зависят от флагов.
func (s *AccessService) SetRole(ctx context.Context, actorID, targetID int64, role model.Role) (model.User, error) {
	super, err := s.IsSuperAdmin(ctx, actorID)
	if err != nil {
		return model.User{}, err
	}
	if !super {
		return model.User{}, fmt.Errorf("only superadmins can change roles: %w", model.ErrForbidden)
	}
	if role == model.RoleUser && s.IsConfiguredAdmin(targetID) {
		return model.User{}, fmt.Errorf("admin %d is configured and cannot be revoked: %w", targetID, model.ErrForbidden)
	}

	target, err := s.userRepo.GetUserByTelegramID(ctx, targetID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return model.User{}, model.ErrUserNotFound
	}

	isAdmin, isSuper := role.Flags()
	ok, err := s.userRepo.UpdateUserRoles(ctx, targetID, isAdmin, isSuper)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update roles: %w", err)
	}
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}

	log.Info().Int64("actor", actorID).Int64("telegram_id", targetID).Str("role", string(role)).Msg("role updated")

	target.IsAdmin, target.IsSuperAdmin = isAdmin, isSuper
	return *target, nil
}
