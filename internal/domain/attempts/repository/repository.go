package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository попытки, ответы и выборки результатов в PostgreSQL.
// Уникальность ответа держит UNIQUE (attempt_id, question_id), переход в терминальный
// статус идет под блокировкой строки попытки.
type AttemptRepository struct {
	db *pgxpool.Pool
}

// NewAttemptRepository создает новый экземпляр AttemptRepository
func NewAttemptRepository(db *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{db: db}
}

const attemptColumns = "id, test_id, telegram_id, started_at, finished_at, score, total, percent, time_spent_sec, status"

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	var a model.Attempt
	err := row.Scan(&a.ID, &a.TestID, &a.TelegramID, &a.StartedAt, &a.FinishedAt,
		&a.Score, &a.Total, &a.Percent, &a.TimeSpentSec, &a.Status)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAttempt создает попытку со снимком total
func (r *AttemptRepository) CreateAttempt(ctx context.Context, a model.Attempt) (model.Attempt, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO attempts (test_id, telegram_id, started_at, score, total, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.TestID, a.TelegramID, a.StartedAt, a.Score, a.Total, a.Status,
	).Scan(&a.ID)
	if err != nil {
		return model.Attempt{}, fmt.Errorf("failed to create attempt: %w", err)
	}
	return a, nil
}

// GetAttempt получает попытку по id, nil если ее нет
func (r *AttemptRepository) GetAttempt(ctx context.Context, id int64) (*model.Attempt, error) {
	a, err := scanAttempt(r.db.QueryRow(ctx, "SELECT "+attemptColumns+" FROM attempts WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return a, nil
}

// CountAnswers сколько ответов уже записано в попытке
func (r *AttemptRepository) CountAnswers(ctx context.Context, attemptID int64) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM answers WHERE attempt_id = $1", attemptID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return count, nil
}

func lockAttempt(ctx context.Context, tx pgx.Tx, id int64) (*model.Attempt, error) {
	a, err := scanAttempt(tx.QueryRow(ctx, "SELECT "+attemptColumns+" FROM attempts WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to lock attempt: %w", err)
	}
	return a, nil
}

// RecordAnswer записывает ответ и увеличивает счет в одной транзакции.
// Повтор для той же пары (попытка, вопрос) дает model.ErrAlreadyAnswered,
// закрытая попытка дает model.ErrAttemptClosed.
func (r *AttemptRepository) RecordAnswer(ctx context.Context, ans model.Answer) (model.Attempt, error) {
	var out model.Attempt
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		a, err := lockAttempt(ctx, tx, ans.AttemptID)
		if err != nil {
			return err
		}
		if a.Status.IsTerminal() {
			return model.ErrAttemptClosed
		}

		result, err := tx.Exec(ctx, `
			INSERT INTO answers (attempt_id, question_id, chosen, is_correct)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (attempt_id, question_id) DO NOTHING`,
			ans.AttemptID, ans.QuestionID, ans.Chosen, ans.IsCorrect)
		if err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrAlreadyAnswered
		}

		if ans.IsCorrect {
			if _, err := tx.Exec(ctx, "UPDATE attempts SET score = score + 1 WHERE id = $1", ans.AttemptID); err != nil {
				return fmt.Errorf("failed to increment score: %w", err)
			}
			a.Score++
		}
		out = *a
		return nil
	})
	if err != nil {
		return model.Attempt{}, err
	}
	return out, nil
}

// FinalizeAttempt переводит попытку в терминальный статус ровно один раз.
// Если попытка уже закрыта, возвращает ее текущее состояние и model.ErrAttemptClosed.
func (r *AttemptRepository) FinalizeAttempt(ctx context.Context, id int64, status model.AttemptStatus, now time.Time) (model.Attempt, error) {
	var out model.Attempt
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		a, err := lockAttempt(ctx, tx, id)
		if err != nil {
			return err
		}
		out = *a
		if a.Status.IsTerminal() {
			return model.ErrAttemptClosed
		}

		a.Finalize(status, now)
		result, err := tx.Exec(ctx, `
			UPDATE attempts
			SET status = $2, finished_at = $3, time_spent_sec = $4, percent = $5
			WHERE id = $1 AND status = 'in_progress'`,
			a.ID, a.Status, a.FinishedAt, a.TimeSpentSec, a.Percent)
		if err != nil {
			return fmt.Errorf("failed to finalize attempt: %w", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrAttemptClosed
		}
		out = *a
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrAttemptClosed) {
			return out, err
		}
		return model.Attempt{}, err
	}
	return out, nil
}

// ListOverdueAttempts попытки in_progress, у которых дедлайн раньше now
func (r *AttemptRepository) ListOverdueAttempts(ctx context.Context, now time.Time, limit int) ([]model.Attempt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.test_id, a.telegram_id, a.started_at, a.finished_at, a.score, a.total, a.percent, a.time_spent_sec, a.status
		FROM attempts a
		JOIN tests t ON t.id = a.test_id
		WHERE a.status = 'in_progress'
		  AND a.started_at + make_interval(secs => t.duration_sec) < $1
		ORDER BY a.id
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return attempts, nil
}

// ListUserResults завершенные попытки пользователя, новые первыми
func (r *AttemptRepository) ListUserResults(ctx context.Context, telegramID int64, limit int) ([]model.UserResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, t.public_id, t.title, a.score, a.total, a.percent, a.time_spent_sec, a.status, a.finished_at
		FROM attempts a
		JOIN tests t ON t.id = a.test_id
		WHERE a.telegram_id = $1 AND a.status <> 'in_progress'
		ORDER BY a.id DESC
		LIMIT $2`, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user results: %w", err)
	}
	defer rows.Close()

	var results []model.UserResult
	for rows.Next() {
		var res model.UserResult
		if err := rows.Scan(&res.AttemptID, &res.TestPublicID, &res.TestTitle, &res.Score, &res.Total,
			&res.Percent, &res.TimeSpentSec, &res.Status, &res.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return results, nil
}

// ListTestResults завершенные попытки по тесту с именами пользователей, новые первыми
func (r *AttemptRepository) ListTestResults(ctx context.Context, testID int64, limit, offset int) ([]model.SolverResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, u.full_name, u.telegram_id, a.score, a.total, a.percent, a.time_spent_sec, a.status, a.finished_at
		FROM attempts a
		JOIN users u ON u.telegram_id = a.telegram_id
		WHERE a.test_id = $1 AND a.status <> 'in_progress'
		ORDER BY a.id DESC
		LIMIT $2 OFFSET $3`, testID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query test results: %w", err)
	}
	defer rows.Close()

	var results []model.SolverResult
	for rows.Next() {
		var res model.SolverResult
		if err := rows.Scan(&res.AttemptID, &res.UserName, &res.TelegramID, &res.Score, &res.Total,
			&res.Percent, &res.TimeSpentSec, &res.Status, &res.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return results, nil
}
