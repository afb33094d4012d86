package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

const attemptColumns = "id, test_id, telegram_id, started_at_unix, finished_at_unix, score, total, percent, time_spent_sec, status"

func scanAttempt(row rowScanner) (model.Attempt, error) {
	var (
		a        model.Attempt
		started  int64
		finished sql.NullInt64
		status   string
	)
	if err := row.Scan(&a.ID, &a.TestID, &a.TelegramID, &started, &finished,
		&a.Score, &a.Total, &a.Percent, &a.TimeSpentSec, &status); err != nil {
		return model.Attempt{}, err
	}
	a.StartedAt = fromUnix(started)
	a.FinishedAt = fromNullUnix(finished)
	a.Status = model.AttemptStatus(status)
	return a, nil
}

// CreateAttempt создает попытку со снимком total
func (s *Store) CreateAttempt(ctx context.Context, a model.Attempt) (model.Attempt, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (test_id, telegram_id, started_at_unix, score, total, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.TestID, a.TelegramID, toUnix(a.StartedAt), a.Score, a.Total, string(a.Status))
	if err != nil {
		return model.Attempt{}, fmt.Errorf("failed to create attempt: %w", err)
	}
	if a.ID, err = result.LastInsertId(); err != nil {
		return model.Attempt{}, fmt.Errorf("failed to read attempt id: %w", err)
	}
	return a, nil
}

// GetAttempt получает попытку по id, nil если ее нет
func (s *Store) GetAttempt(ctx context.Context, id int64) (*model.Attempt, error) {
	a, err := scanAttempt(s.db.QueryRowContext(ctx, "SELECT "+attemptColumns+" FROM attempts WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &a, nil
}

func getAttemptTx(ctx context.Context, tx *sql.Tx, id int64) (model.Attempt, error) {
	a, err := scanAttempt(tx.QueryRowContext(ctx, "SELECT "+attemptColumns+" FROM attempts WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Attempt{}, model.ErrAttemptNotFound
		}
		return model.Attempt{}, fmt.Errorf("failed to get attempt: %w", err)
	}
	return a, nil
}

// CountAnswers сколько ответов уже записано в попытке
func (s *Store) CountAnswers(ctx context.Context, attemptID int64) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM answers WHERE attempt_id = ?", attemptID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return count, nil
}

// RecordAnswer записывает ответ и увеличивает счет в одной транзакции.
// Повтор для той же пары (попытка, вопрос) дает model.ErrAlreadyAnswered,
// закрытая попытка дает model.ErrAttemptClosed.
func (s *Store) RecordAnswer(ctx context.Context, ans model.Answer) (model.Attempt, error) {
	var out model.Attempt
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		a, err := getAttemptTx(ctx, tx, ans.AttemptID)
		if err != nil {
			return err
		}
		if a.Status.IsTerminal() {
			return model.ErrAttemptClosed
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO answers (attempt_id, question_id, chosen, is_correct, created_at_unix)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (attempt_id, question_id) DO NOTHING`,
			ans.AttemptID, ans.QuestionID, ans.Chosen, ans.IsCorrect, toUnix(time.Now()))
		if err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return model.ErrAlreadyAnswered
		}

		if ans.IsCorrect {
			if _, err := tx.ExecContext(ctx, "UPDATE attempts SET score = score + 1 WHERE id = ?", ans.AttemptID); err != nil {
				return fmt.Errorf("failed to increment score: %w", err)
			}
			a.Score++
		}
		out = a
		return nil
	})
	if err != nil {
		return model.Attempt{}, err
	}
	return out, nil
}

// FinalizeAttempt переводит попытку в терминальный статус ровно один раз.
// Если попытка уже закрыта, возвращает ее текущее состояние и model.ErrAttemptClosed.
func (s *Store) FinalizeAttempt(ctx context.Context, id int64, status model.AttemptStatus, now time.Time) (model.Attempt, error) {
	var out model.Attempt
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		a, err := getAttemptTx(ctx, tx, id)
		if err != nil {
			return err
		}
		out = a
		if a.Status.IsTerminal() {
			return model.ErrAttemptClosed
		}

		a.Finalize(status, now)
		result, err := tx.ExecContext(ctx, `
			UPDATE attempts
			SET status = ?, finished_at_unix = ?, time_spent_sec = ?, percent = ?
			WHERE id = ? AND status = 'in_progress'`,
			string(a.Status), toNullUnix(a.FinishedAt), a.TimeSpentSec, a.Percent, a.ID)
		if err != nil {
			return fmt.Errorf("failed to finalize attempt: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return model.ErrAttemptClosed
		}
		out = a
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
func (s *Store) ListOverdueAttempts(ctx context.Context, now time.Time, limit int) ([]model.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.test_id, a.telegram_id, a.started_at_unix, a.finished_at_unix, a.score, a.total, a.percent, a.time_spent_sec, a.status
		FROM attempts a
		JOIN tests t ON t.id = a.test_id
		WHERE a.status = 'in_progress'
		  AND a.started_at_unix + t.duration_sec * 1000000000 < ?
		ORDER BY a.id
		LIMIT ?`, toUnix(now), limit)
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
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return attempts, nil
}

// ListUserResults завершенные попытки пользователя, новые первыми
func (s *Store) ListUserResults(ctx context.Context, telegramID int64, limit int) ([]model.UserResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, t.public_id, t.title, a.score, a.total, a.percent, a.time_spent_sec, a.status, a.finished_at_unix
		FROM attempts a
		JOIN tests t ON t.id = a.test_id
		WHERE a.telegram_id = ? AND a.status <> 'in_progress'
		ORDER BY a.id DESC
		LIMIT ?`, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user results: %w", err)
	}
	defer rows.Close()

	var results []model.UserResult
	for rows.Next() {
		var (
			res      model.UserResult
			status   string
			finished sql.NullInt64
		)
		if err := rows.Scan(&res.AttemptID, &res.TestPublicID, &res.TestTitle, &res.Score, &res.Total,
			&res.Percent, &res.TimeSpentSec, &status, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan user result: %w", err)
		}
		res.Status = model.AttemptStatus(status)
		res.FinishedAt = fromNullUnix(finished)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return results, nil
}

// ListTestResults завершенные попытки по тесту с именами пользователей, новые первыми
func (s *Store) ListTestResults(ctx context.Context, testID int64, limit, offset int) ([]model.SolverResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, u.full_name, u.telegram_id, a.score, a.total, a.percent, a.time_spent_sec, a.status, a.finished_at_unix
		FROM attempts a
		JOIN users u ON u.telegram_id = a.telegram_id
		WHERE a.test_id = ? AND a.status <> 'in_progress'
		ORDER BY a.id DESC
		LIMIT ? OFFSET ?`, testID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query test results: %w", err)
	}
	defer rows.Close()

	var results []model.SolverResult
	for rows.Next() {
		var (
			res      model.SolverResult
			status   string
			finished sql.NullInt64
		)
		if err := rows.Scan(&res.AttemptID, &res.UserName, &res.TelegramID, &res.Score, &res.Total,
			&res.Percent, &res.TimeSpentSec, &status, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}
		res.Status = model.AttemptStatus(status)
		res.FinishedAt = fromNullUnix(finished)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return results, nil
}
