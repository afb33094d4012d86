package model

import "time"

// Test тест, который автор собирает из упорядоченных вопросов
type Test struct {
	ID          int64     `json:"-"`
	PublicID    string    `json:"public_id"`
	Title       string    `json:"title"`
	DurationSec int       `json:"duration_sec"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Duration время, отведенное на попытку
func (t Test) Duration() time.Duration {
	return time.Duration(t.DurationSec) * time.Second
}

// TestSummary строка списка тестов с количеством вопросов
type TestSummary struct {
	Test
	QuestionCount int `json:"question_count"`
}

// DeleteResult сколько строк ушло каскадом вместе с тестом
type DeleteResult struct {
	QuestionsDeleted int `json:"questions_deleted"`
	AttemptsDeleted  int `json:"attempts_deleted"`
}
