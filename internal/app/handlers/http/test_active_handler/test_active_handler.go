package test_active_handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/IT-Nick/quizbot/internal/app/handlers/http/respond"
	"github.com/IT-Nick/quizbot/internal/domain/dto"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	httpError "github.com/IT-Nick/quizbot/pkg/http"
	"github.com/rs/zerolog/log"
)

// ActiveSetter включение и выключение теста
type ActiveSetter interface {
	SetActive(ctx context.Context, publicTestID string, privileged, active bool) (model.Test, error)
}

// TestActiveHandler POST /tests/{public_id}/active {"active": bool}
type TestActiveHandler struct {
	tests  ActiveSetter
	access respond.Privileger
}

// NewTestActiveHandler создает новый экземпляр обработчика
func NewTestActiveHandler(tests ActiveSetter, access respond.Privileger) *TestActiveHandler {
	return &TestActiveHandler{tests: tests, access: access}
}

// ServeHTTP метод для обработки запроса
func (h *TestActiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	callerID, ok := respond.RequirePrivileged(w, r, h.access)
	if !ok {
		return
	}

	var request dto.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Active == nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "body must be {\"active\": true|false}")
		return
	}

	test, err := h.tests.SetActive(r.Context(), r.PathValue("public_id"), true, *request.Active)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	log.Info().Str("public_id", test.PublicID).Bool("active", test.IsActive).Int64("by", callerID).Msg("test active flag changed")
	httpError.JSONResponse(w, http.StatusOK, test)
}
