package update_user_role_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/IT-Nick/quizbot/internal/app/handlers/http/respond"
	"github.com/IT-Nick/quizbot/internal/domain/dto"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	httpError "github.com/IT-Nick/quizbot/pkg/http"
)

// RoleSetter смена роли пользователя
type RoleSetter interface {
	SetRole(ctx context.Context, actorID, targetID int64, role model.Role) (model.User, error)
}

// UpdateUserRoleHandler структура для обработчика
type UpdateUserRoleHandler struct {
	access RoleSetter
}

// NewUpdateUserRoleHandler создает новый экземпляр обработчика
func NewUpdateUserRoleHandler(access RoleSetter) *UpdateUserRoleHandler {
	return &UpdateUserRoleHandler{access: access}
}

// ServeHTTP метод для обработки запроса
func (h *UpdateUserRoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	var request dto.UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.TelegramID <= 0 {
		httpError.ErrorResponse(w, http.StatusBadRequest, "telegram_id is required")
		return
	}

	role, err := model.ParseRole(request.RoleName)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	// права суперадмина проверяет сервис
	user, err := h.access.SetRole(r.Context(), callerID, request.TelegramID, role)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, dto.UpdateUserRoleResponse{
		Message: fmt.Sprintf("user %d role updated to %s", user.TelegramID, role),
		User:    user,
		Role:    user.Role(),
	})
}
