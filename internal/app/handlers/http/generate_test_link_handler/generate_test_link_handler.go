package generate_test_link_handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/IT-Nick/quizbot/internal/app/handlers/http/respond"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/deeplink"
	httpError "github.com/IT-Nick/quizbot/pkg/http"
)

const (
	minQRSize = 64
	maxQRSize = 1024
)

// TestGetter поиск теста по публичному id
type TestGetter interface {
	GetTest(ctx context.Context, publicTestID string) (model.Test, error)
}

// GenerateTestLinkResponse структура для ответа
type GenerateTestLinkResponse struct {
	PublicID  string `json:"public_id"`
	Link      string `json:"link"`
	QRCodeURL string `json:"qr_code_url"`
}

// GenerateTestLinkHandler GET /tests/{public_id}/link
type GenerateTestLinkHandler struct {
	tests       TestGetter
	access      respond.Privileger
	botUsername string
	baseURL     string
}

// NewGenerateTestLinkHandler создает новый экземпляр обработчика.
// baseURL может быть пустым, тогда qr_code_url будет относительным.
func NewGenerateTestLinkHandler(tests TestGetter, access respond.Privileger, botUsername, baseURL string) *GenerateTestLinkHandler {
	return &GenerateTestLinkHandler{tests: tests, access: access, botUsername: botUsername, baseURL: baseURL}
}

// ServeHTTP метод для обработки запроса
func (h *GenerateTestLinkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := respond.RequirePrivileged(w, r, h.access); !ok {
		return
	}

	test, err := h.tests.GetTest(r.Context(), r.PathValue("public_id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, GenerateTestLinkResponse{
		PublicID:  test.PublicID,
		Link:      deeplink.Link(h.botUsername, test.PublicID),
		QRCodeURL: fmt.Sprintf("%s/tests/%s/qr.png", h.baseURL, test.PublicID),
	})
}

// QRCodeHandler GET /tests/{public_id}/qr.png?size=
type QRCodeHandler struct {
	tests       TestGetter
	access      respond.Privileger
	botUsername string
}

// NewQRCodeHandler создает новый экземпляр обработчика
func NewQRCodeHandler(tests TestGetter, access respond.Privileger, botUsername string) *QRCodeHandler {
	return &QRCodeHandler{tests: tests, access: access, botUsername: botUsername}
}

// ServeHTTP метод для обработки запроса
func (h *QRCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := respond.RequirePrivileged(w, r, h.access); !ok {
		return
	}

	size, err := respond.IntQuery(r, "size", deeplink.DefaultQRSize)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if size < minQRSize || size > maxQRSize {
		httpError.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("size must be between %d and %d", minQRSize, maxQRSize))
		return
	}

	test, err := h.tests.GetTest(r.Context(), r.PathValue("public_id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	png, err := deeplink.QRCode(deeplink.Link(h.botUsername, test.PublicID), size)
	if err != nil {
		respond.Error(w, r, fmt.Errorf("failed to generate qr code: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
