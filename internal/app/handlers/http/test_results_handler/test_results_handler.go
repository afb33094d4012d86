package test_results_handler

import (
	"context"
	"net/http"

	"github.com/IT-Nick/quizbot/internal/app/handlers/http/respond"
	"github.com/IT-Nick/quizbot/internal/domain/dto"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	reportsService "github.com/IT-Nick/quizbot/internal/domain/reports/service"
	httpError "github.com/IT-Nick/quizbot/pkg/http"
)

// PageLister страницы "кто решал"
type PageLister interface {
	WhoSolvedPage(ctx context.Context, publicTestID string, page, pageSize int) (reportsService.WhoSolvedPage, error)
}

// TestResultsHandler GET /tests/{public_id}/results?limit=&page=
type TestResultsHandler struct {
	reports PageLister
	access  respond.Privileger
}

// NewTestResultsHandler создает новый экземпляр обработчика
func NewTestResultsHandler(reports PageLister, access respond.Privileger) *TestResultsHandler {
	return &TestResultsHandler{reports: reports, access: access}
}

// ServeHTTP метод для обработки запроса
func (h *TestResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := respond.RequirePrivileged(w, r, h.access); !ok {
		return
	}

	limit, err := respond.IntQuery(r, "limit", reportsService.DefaultWhoSolvedLimit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	page, err := respond.IntQuery(r, "page", 0)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.reports.WhoSolvedPage(r.Context(), r.PathValue("public_id"), page, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if res.Results == nil {
		res.Results = []model.SolverResult{}
	}

	httpError.JSONResponse(w, http.StatusOK, dto.TestResultsResponse{
		Test:     res.Test,
		Page:     res.Page,
		PageSize: res.PageSize,
		HasNext:  res.HasNext,
		Results:  res.Results,
	})
}
