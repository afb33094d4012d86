package respond

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/IT-Nick/quizbot/internal/app/middleware"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	httpError "github.com/IT-Nick/quizbot/pkg/http"
	"github.com/rs/zerolog/log"
)

// Privileger проверка прав администратора
type Privileger interface {
	IsPrivileged(ctx context.Context, callerID int64) (bool, error)
}

// StatusFor HTTP-статус для доменной ошибки
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrEmptyTest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error пишет доменную ошибку. Текст внутренних ошибок наружу не отдается.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("http handler failed")
		httpError.ErrorResponse(w, code, "internal error")
		return
	}
	httpError.ErrorResponse(w, code, err.Error())
}

// Caller telegram id из токена. false и ответ 401, если Auth не отработал.
func Caller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.CallerID(r.Context())
	if !ok {
		httpError.ErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return id, true
}

// RequirePrivileged как Caller, но дополнительно требует прав администратора
func RequirePrivileged(w http.ResponseWriter, r *http.Request, access Privileger) (int64, bool) {
	callerID, ok := Caller(w, r)
	if !ok {
		return 0, false
	}
	privileged, err := access.IsPrivileged(r.Context(), callerID)
	if err != nil {
		Error(w, r, err)
		return 0, false
	}
	if !privileged {
		httpError.ErrorResponse(w, http.StatusForbidden, "admin rights required")
		return 0, false
	}
	return callerID, true
}

// IntQuery целый параметр запроса или def, если его нет
func IntQuery(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, model.Invalidf("query parameter %s must be an integer", name)
	}
	return n, nil
}
