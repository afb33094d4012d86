package health_handler

import (
	"context"
	"net/http"
	"time"

	httpError "github.com/IT-Nick/quizbot/pkg/http"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 2 * time.Second

// Pinger проверка соединения с хранилищем
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse структура для ответа
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthHandler GET /healthz, без авторизации
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler создает новый экземпляр обработчика
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// ServeHTTP метод для обработки запроса
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("health check failed")
		httpError.ErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	httpError.JSONResponse(w, http.StatusOK, HealthResponse{Status: "ok"})
}
