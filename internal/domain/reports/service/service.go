package service

import (
	"context"
	"fmt"
	"math"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

// Лимиты по умолчанию для списков результатов
const (
	DefaultMyResultsLimit = 10
	DefaultWhoSolvedLimit = 30
	MaxLimit              = 200
)

// TestRepository поиск теста по публичному id
type TestRepository interface {
	GetTestByPublicID(ctx context.Context, publicID string) (*model.Test, error)
}

// ResultRepository выборки завершенных попыток
type ResultRepository interface {
	ListUserResults(ctx context.Context, telegramID int64, limit int) ([]model.UserResult, error)
	ListTestResults(ctx context.Context, testID int64, limit, offset int) ([]model.SolverResult, error)
}

// WhoSolvedPage страница списка "кто решал"
type WhoSolvedPage struct {
	Test     model.Test
	Results  []model.SolverResult
	Page     int
	PageSize int
	HasNext  bool
}

// ReportService только чтение: результаты по пользователю и по тесту
type ReportService struct {
	testRepo   TestRepository
	resultRepo ResultRepository
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(testRepo TestRepository, resultRepo ResultRepository) *ReportService {
	return &ReportService{testRepo: testRepo, resultRepo: resultRepo}
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ListMyResults последние завершенные попытки пользователя
func (s *ReportService) ListMyResults(ctx context.Context, callerID int64, limit int) ([]model.UserResult, error) {
	results, err := s.resultRepo.ListUserResults(ctx, callerID, clampLimit(limit, DefaultMyResultsLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list user results: %w", err)
	}
	return results, nil
}

// ListWhoSolved последние завершенные попытки по тесту
func (s *ReportService) ListWhoSolved(ctx context.Context, publicTestID string, limit int) ([]model.SolverResult, error) {
	page, err := s.WhoSolvedPage(ctx, publicTestID, 0, clampLimit(limit, DefaultWhoSolvedLimit))
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// WhoSolvedPage страница результатов по тесту, page с нуля
func (s *ReportService) WhoSolvedPage(ctx context.Context, publicTestID string, page, pageSize int) (WhoSolvedPage, error) {
	test, err := s.testRepo.GetTestByPublicID(ctx, model.NormalizePublicID(publicTestID))
	if err != nil {
		return WhoSolvedPage{}, fmt.Errorf("failed to get test: %w", err)
	}
	if test == nil {
		return WhoSolvedPage{}, model.ErrTestNotFound
	}
	if page < 0 {
		page = 0
	}
	pageSize = clampLimit(pageSize, DefaultWhoSolvedLimit)
	if page > math.MaxInt32/pageSize {
		return WhoSolvedPage{}, model.Invalidf("page %d is out of range", page)
	}

	// на одну строку больше, чтобы понять, есть ли следующая страница
	results, err := s.resultRepo.ListTestResults(ctx, test.ID, pageSize+1, page*pageSize)
	if err != nil {
		return WhoSolvedPage{}, fmt.Errorf("failed to list test results: %w", err)
	}

	hasNext := len(results) > pageSize
	if hasNext {
		results = results[:pageSize]
	}
	return WhoSolvedPage{Test: *test, Results: results, Page: page, PageSize: pageSize, HasNext: hasNext}, nil
}
