package model

import (
	"math"
	"time"
)

// AttemptStatus статус попытки. finished и timeout терминальные.
type AttemptStatus string

const (
	StatusInProgress AttemptStatus = "in_progress"
	StatusFinished   AttemptStatus = "finished"
	StatusTimeout    AttemptStatus = "timeout"
)

// IsTerminal true для finished и timeout
func (s AttemptStatus) IsTerminal() bool {
	return s == StatusFinished || s == StatusTimeout
}

// Attempt прохождение теста пользователем
type Attempt struct {
	ID           int64         `json:"id"`
	TestID       int64         `json:"-"`
	TelegramID   int64         `json:"telegram_id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	Score        int           `json:"score"`
	Total        int           `json:"total"`
	Percent      int           `json:"percent"`
	TimeSpentSec int           `json:"time_spent_sec"`
	Status       AttemptStatus `json:"status"`
}

// Deadline момент, после которого ответы не принимаются
func (a Attempt) Deadline(d time.Duration) time.Time {
	return a.StartedAt.Add(d)
}

// Expired true, если now строго позже дедлайна
func (a Attempt) Expired(d time.Duration, now time.Time) bool {
	return now.After(a.Deadline(d))
}

// Finalize заполняет поля завершения. Вызывается один раз при переходе в терминальный статус.
func (a *Attempt) Finalize(status AttemptStatus, now time.Time) {
	finished := now
	a.FinishedAt = &finished
	spent := int(now.Sub(a.StartedAt) / time.Second)
	if spent < 0 {
		spent = 0
	}
	a.TimeSpentSec = spent
	a.Percent = Percent(a.Score, a.Total)
	a.Status = status
}

// Percent round(score / max(total,1) * 100), половины округляются от нуля
func Percent(score, total int) int {
	if total < 1 {
		total = 1
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
