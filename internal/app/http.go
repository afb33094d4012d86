package app

import (
	"net/http"

	"github.com/IT-Nick/quizbot/internal/app/handlers/http/delete_test_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/http/generate_test_link_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/http/health_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/http/test_active_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/http/test_report_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/http/test_results_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/http/update_user_role_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/http/user_results_handler"
	"github.com/IT-Nick/quizbot/internal/app/middleware"
)

// httpHandler маршруты HTTP API. Все, кроме /healthz, требуют Bearer JWT.
func (app *App) httpHandler() http.Handler {
	mx := http.NewServeMux()
	auth := middleware.Auth(app.config.Server.JWTSecret)
	botUsername := app.config.TelegramBot.Username

	mx.Handle("GET /healthz", health_handler.NewHealthHandler(app.storage))

	mx.Handle("POST /users/update_role", auth(update_user_role_handler.NewUpdateUserRoleHandler(app.access)))
	mx.Handle("GET /users/{telegram_id}/results", auth(user_results_handler.NewUserResultsHandler(app.reports, app.users, app.access)))

	mx.Handle("GET /tests/{public_id}/results", auth(test_results_handler.NewTestResultsHandler(app.reports, app.access)))
	mx.Handle("GET /tests/{public_id}/report.pdf", auth(test_report_handler.NewTestReportHandler(app.reports, app.access, app.renderer)))
	mx.Handle("GET /tests/{public_id}/link", auth(generate_test_link_handler.NewGenerateTestLinkHandler(app.tests, app.access, botUsername, app.config.Server.PublicURL)))
	mx.Handle("GET /tests/{public_id}/qr.png", auth(generate_test_link_handler.NewQRCodeHandler(app.tests, app.access, botUsername)))
	mx.Handle("POST /tests/{public_id}/active", auth(test_active_handler.NewTestActiveHandler(app.tests, app.access)))
	mx.Handle("DELETE /tests/{public_id}", auth(delete_test_handler.NewDeleteTestHandler(app.tests, app.access)))

	return middleware.AccessLog(middleware.RecoverHTTP(mx))
}
