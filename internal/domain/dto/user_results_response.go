package dto

import "github.com/IT-Nick/quizbot/internal/domain/model"

// UserResultsResponse завершенные попытки пользователя
type UserResultsResponse struct {
	TelegramID int64              `json:"telegram_id"`
	FullName   string             `json:"full_name,omitempty"`
	Results    []model.UserResult `json:"results"`
}
