package delete_test_handler

import (
	"context"
	"net/http"

	"github.com/IT-Nick/quizbot/internal/app/handlers/http/respond"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	httpError "github.com/IT-Nick/quizbot/pkg/http"
)

// TestDeleter удаление теста
type TestDeleter interface {
	DeleteTest(ctx context.Context, publicTestID string, callerID int64, privileged bool) (model.DeleteResult, error)
}

// DeleteTestHandler DELETE /tests/{public_id}
type DeleteTestHandler struct {
	tests  TestDeleter
	access respond.Privileger
}

// NewDeleteTestHandler создает новый экземпляр обработчика
func NewDeleteTestHandler(tests TestDeleter, access respond.Privileger) *DeleteTestHandler {
	return &DeleteTestHandler{tests: tests, access: access}
}

// ServeHTTP метод для обработки запроса
func (h *DeleteTestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	callerID, ok := respond.RequirePrivileged(w, r, h.access)
	if !ok {
		return
	}

	res, err := h.tests.DeleteTest(r.Context(), r.PathValue("public_id"), callerID, true)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	httpError.JSONResponse(w, http.StatusOK, res)
}
