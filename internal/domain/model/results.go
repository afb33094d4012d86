package model

import "time"

// UserResult строка "мои результаты"
type UserResult struct {
	AttemptID    int64         `json:"attempt_id"`
	TestPublicID string        `json:"test_public_id"`
	TestTitle    string        `json:"test_title"`
	Score        int           `json:"score"`
	Total        int           `json:"total"`
	Percent      int           `json:"percent"`
	TimeSpentSec int           `json:"time_spent_sec"`
	Status       AttemptStatus `json:"status"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
}

// SolverResult строка "кто решал" по тесту
type SolverResult struct {
	AttemptID    int64         `json:"attempt_id"`
	UserName     string        `json:"user_name"`
	TelegramID   int64         `json:"telegram_id"`
	Score        int           `json:"score"`
	Total        int           `json:"total"`
	Percent      int           `json:"percent"`
	TimeSpentSec int           `json:"time_spent_sec"`
	Status       AttemptStatus `json:"status"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
}
