package dto

import "github.com/IT-Nick/quizbot/internal/domain/model"

// UpdateUserRoleRequest тело POST /users/update_role
type UpdateUserRoleRequest struct {
	TelegramID int64  `json:"telegram_id"`
	RoleName   string `json:"role_name"`
}

// UpdateUserRoleResponse пользователь после смены роли
type UpdateUserRoleResponse struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
	Role    model.Role `json:"role"`
}

// SetActiveRequest тело POST /tests/{public_id}/active
type SetActiveRequest struct {
	Active *bool `json:"active"`
}
