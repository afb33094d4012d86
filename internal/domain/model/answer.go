package model

import "time"

// Answer ответ на вопрос в рамках попытки. На пару (попытка, вопрос) не больше одного.
type Answer struct {
	ID         int64     `json:"id"`
	AttemptID  int64     `json:"attempt_id"`
	QuestionID int64     `json:"question_id"`
	Chosen     string    `json:"chosen"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}
