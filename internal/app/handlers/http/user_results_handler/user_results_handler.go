package user_results_handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/IT-Nick/quizbot/internal/app/handlers/http/respond"
	"github.com/IT-Nick/quizbot/internal/domain/dto"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	httpError "github.com/IT-Nick/quizbot/pkg/http"
)

// ResultLister результаты пользователя
type ResultLister interface {
	ListMyResults(ctx context.Context, callerID int64, limit int) ([]model.UserResult, error)
}

// UserGetter профиль пользователя
type UserGetter interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (model.User, error)
}

// UserResultsHandler GET /users/{telegram_id}/results. Свои результаты видит каждый, чужие только админ.
type UserResultsHandler struct {
	reports ResultLister
	users   UserGetter
	access  respond.Privileger
}

// NewUserResultsHandler создает новый экземпляр обработчика
func NewUserResultsHandler(reports ResultLister, users UserGetter, access respond.Privileger) *UserResultsHandler {
	return &UserResultsHandler{reports: reports, users: users, access: access}
}

// ServeHTTP метод для обработки запроса
func (h *UserResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}

	telegramID, err := strconv.ParseInt(r.PathValue("telegram_id"), 10, 64)
	if err != nil || telegramID <= 0 {
		httpError.ErrorResponse(w, http.StatusBadRequest, "invalid telegram_id")
		return
	}
	limit, err := respond.IntQuery(r, "limit", 0)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	ctx := r.Context()
	if telegramID != callerID {
		privileged, err := h.access.IsPrivileged(ctx, callerID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		if !privileged {
			httpError.ErrorResponse(w, http.StatusForbidden, "admin rights required")
			return
		}
	}

	user, err := h.users.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	results, err := h.reports.ListMyResults(ctx, telegramID, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if results == nil {
		results = []model.UserResult{}
	}

	httpError.JSONResponse(w, http.StatusOK, dto.UserResultsResponse{
		TelegramID: telegramID,
		FullName:   user.FullName,
		Results:    results,
	})
}
