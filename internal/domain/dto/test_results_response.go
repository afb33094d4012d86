package dto

import "github.com/IT-Nick/quizbot/internal/domain/model"

// TestResultsResponse страница результатов по тесту
type TestResultsResponse struct {
	Test     model.Test           `json:"test"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	HasNext  bool                 `json:"has_next"`
	Results  []model.SolverResult `json:"results"`
}
