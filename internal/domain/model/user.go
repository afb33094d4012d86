package model

import "time"

// User зарегистрированный пользователь бота. Ключ идентичности - TelegramID.
type User struct {
	ID           int64     `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	IsSuperAdmin bool      `json:"is_superadmin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role возвращает роль пользователя по сохраненным флагам
func (u User) Role() Role {
	switch {
	case u.IsSuperAdmin:
		return RoleSuperAdmin
	case u.IsAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}
