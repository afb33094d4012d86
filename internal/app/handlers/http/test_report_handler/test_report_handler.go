package test_report_handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/IT-Nick/quizbot/internal/app/handlers/http/respond"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	reportsService "github.com/IT-Nick/quizbot/internal/domain/reports/service"
	"github.com/IT-Nick/quizbot/internal/infra/pdf"
)

// PageLister страницы "кто решал"
type PageLister interface {
	WhoSolvedPage(ctx context.Context, publicTestID string, page, pageSize int) (reportsService.WhoSolvedPage, error)
}

// Renderer сборка PDF-отчета
type Renderer interface {
	WhoSolvedReport(test model.Test, results []model.SolverResult, generatedAt time.Time) ([]byte, error)
}

// TestReportHandler GET /tests/{public_id}/report.pdf
type TestReportHandler struct {
	reports  PageLister
	access   respond.Privileger
	renderer Renderer
	now      func() time.Time
}

// NewTestReportHandler создает новый экземпляр обработчика
func NewTestReportHandler(reports PageLister, access respond.Privileger, renderer Renderer) *TestReportHandler {
	return &TestReportHandler{reports: reports, access: access, renderer: renderer, now: time.Now}
}

// ServeHTTP метод для обработки запроса
func (h *TestReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := respond.RequirePrivileged(w, r, h.access); !ok {
		return
	}

	res, err := h.reports.WhoSolvedPage(r.Context(), r.PathValue("public_id"), 0, reportsService.MaxLimit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	data, err := h.renderer.WhoSolvedReport(res.Test, res.Results, h.now())
	if err != nil {
		respond.Error(w, r, fmt.Errorf("failed to render report: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName(res.Test.PublicID)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
