package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

const testColumns = "id, public_id, title, duration_sec, is_active, created_by, created_at_unix"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTest(row rowScanner, extra ...any) (model.Test, error) {
	var (
		t       model.Test
		created int64
	)
	dest := append([]any{&t.ID, &t.PublicID, &t.Title, &t.DurationSec, &t.IsActive, &t.CreatedBy, &created}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Test{}, err
	}
	t.CreatedAt = fromUnix(created)
	return t, nil
}

// CreateTest сохраняет тест. Занятый public_id возвращается как model.ErrDuplicate.
func (s *Store) CreateTest(ctx context.Context, test model.Test) (model.Test, error) {
	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tests (public_id, title, duration_sec, is_active, created_by, created_at_unix)
		VALUES (?, ?, ?, ?, ?, ?)`,
		test.PublicID, test.Title, test.DurationSec, test.IsActive, test.CreatedBy, toUnix(now))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Test{}, model.ErrDuplicate
		}
		return model.Test{}, fmt.Errorf("failed to create test: %w", err)
	}
	if test.ID, err = result.LastInsertId(); err != nil {
		return model.Test{}, fmt.Errorf("failed to read test id: %w", err)
	}
	test.CreatedAt = now
	return test, nil
}

func (s *Store) getTest(ctx context.Context, where string, arg any) (*model.Test, error) {
	test, err := scanTest(s.db.QueryRowContext(ctx, "SELECT "+testColumns+" FROM tests WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return &test, nil
}

// GetTestByPublicID ищет тест по публичному id, nil если не найден
func (s *Store) GetTestByPublicID(ctx context.Context, publicID string) (*model.Test, error) {
	return s.getTest(ctx, "public_id = ?", publicID)
}

// GetTestByID ищет тест по внутреннему id, nil если не найден
func (s *Store) GetTestByID(ctx context.Context, id int64) (*model.Test, error) {
	return s.getTest(ctx, "id = ?", id)
}

// ListTests последние тесты, новые первыми
func (s *Store) ListTests(ctx context.Context, limit int) ([]model.TestSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+testColumns+`, (SELECT COUNT(*) FROM questions q WHERE q.test_id = tests.id)
		FROM tests
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tests: %w", err)
	}
	defer rows.Close()

	var tests []model.TestSummary
	for rows.Next() {
		var count int
		test, err := scanTest(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test: %w", err)
		}
		tests = append(tests, model.TestSummary{Test: test, QuestionCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return tests, nil
}

// SetTestActive включает или выключает тест
func (s *Store) SetTestActive(ctx context.Context, testID int64, active bool) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE tests SET is_active = ? WHERE id = ?", active, testID); err != nil {
		return fmt.Errorf("failed to update test active flag: %w", err)
	}
	return nil
}

// DeleteTest удаляет тест. Вопросы, попытки и ответы уходят каскадом.
func (s *Store) DeleteTest(ctx context.Context, testID int64) (model.DeleteResult, error) {
	var res model.DeleteResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions WHERE test_id = ?", testID).Scan(&res.QuestionsDeleted); err != nil {
			return fmt.Errorf("failed to count questions: %w", err)
		}
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM attempts WHERE test_id = ?", testID).Scan(&res.AttemptsDeleted); err != nil {
			return fmt.Errorf("failed to count attempts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tests WHERE id = ?", testID); err != nil {
			return fmt.Errorf("failed to delete test: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.DeleteResult{}, err
	}
	return res, nil
}

// AddQuestion сохраняет вопрос. Занятый order_index возвращается как model.ErrDuplicate.
func (s *Store) AddQuestion(ctx context.Context, q model.Question) (model.Question, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO questions (test_id, order_index, q_text, a_text, b_text, c_text, d_text, correct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.TestID, q.OrderIndex, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Question{}, model.ErrDuplicate
		}
		return model.Question{}, fmt.Errorf("failed to add question: %w", err)
	}
	if q.ID, err = result.LastInsertId(); err != nil {
		return model.Question{}, fmt.Errorf("failed to read question id: %w", err)
	}
	return q, nil
}

// CountQuestions количество вопросов теста
func (s *Store) CountQuestions(ctx context.Context, testID int64) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions WHERE test_id = ?", testID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// MaxQuestionIndex наибольший порядковый номер вопроса, 0 для пустого теста
func (s *Store) MaxQuestionIndex(ctx context.Context, testID int64) (int, error) {
	var last int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(order_index), 0) FROM questions WHERE test_id = ?", testID).Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to get max question index: %w", err)
	}
	return last, nil
}

// GetQuestionByIndex вопрос теста по порядковому номеру, nil если такого нет
func (s *Store) GetQuestionByIndex(ctx context.Context, testID int64, orderIndex int) (*model.Question, error) {
	var q model.Question
	err := s.db.QueryRowContext(ctx, `
		SELECT id, test_id, order_index, q_text, a_text, b_text, c_text, d_text, correct
		FROM questions
		WHERE test_id = ? AND order_index = ?`, testID, orderIndex).
		Scan(&q.ID, &q.TestID, &q.OrderIndex, &q.Text, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.Correct)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}
