package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// TestRepository репозиторий для работы с тестами и вопросами
type TestRepository struct {
	db *pgxpool.Pool
}

// NewTestRepository создает новый экземпляр TestRepository
func NewTestRepository(db *pgxpool.Pool) *TestRepository {
	return &TestRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const testColumns = "id, public_id, title, duration_sec, is_active, created_by, created_at"

func scanTest(row pgx.Row) (*model.Test, error) {
	var t model.Test
	if err := row.Scan(&t.ID, &t.PublicID, &t.Title, &t.DurationSec, &t.IsActive, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTest сохраняет тест. Занятый public_id возвращается как model.ErrDuplicate.
func (r *TestRepository) CreateTest(ctx context.Context, test model.Test) (model.Test, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO tests (public_id, title, duration_sec, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		test.PublicID, test.Title, test.DurationSec, test.IsActive, test.CreatedBy,
	).Scan(&test.ID, &test.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Test{}, model.ErrDuplicate
		}
		return model.Test{}, fmt.Errorf("failed to create test: %w", err)
	}
	return test, nil
}

// GetTestByPublicID ищет тест по публичному id, nil если не найден
func (r *TestRepository) GetTestByPublicID(ctx context.Context, publicID string) (*model.Test, error) {
	test, err := scanTest(r.db.QueryRow(ctx, "SELECT "+testColumns+" FROM tests WHERE public_id = $1", publicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test by public id: %w", err)
	}
	return test, nil
}

// GetTestByID ищет тест по внутреннему id, nil если не найден
func (r *TestRepository) GetTestByID(ctx context.Context, id int64) (*model.Test, error) {
	test, err := scanTest(r.db.QueryRow(ctx, "SELECT "+testColumns+" FROM tests WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test by id: %w", err)
	}
	return test, nil
}

// ListTests последние тесты, новые первыми
func (r *TestRepository) ListTests(ctx context.Context, limit int) ([]model.TestSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.public_id, t.title, t.duration_sec, t.is_active, t.created_by, t.created_at,
		       (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id)
		FROM tests t
		ORDER BY t.id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tests: %w", err)
	}
	defer rows.Close()

	var tests []model.TestSummary
	for rows.Next() {
		var s model.TestSummary
		if err := rows.Scan(&s.ID, &s.PublicID, &s.Title, &s.DurationSec, &s.IsActive, &s.CreatedBy, &s.CreatedAt, &s.QuestionCount); err != nil {
			return nil, fmt.Errorf("failed to scan test: %w", err)
		}
		tests = append(tests, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return tests, nil
}

// SetTestActive включает или выключает тест
func (r *TestRepository) SetTestActive(ctx context.Context, testID int64, active bool) error {
	if _, err := r.db.Exec(ctx, "UPDATE tests SET is_active = $2 WHERE id = $1", testID, active); err != nil {
		return fmt.Errorf("failed to update test active flag: %w", err)
	}
	return nil
}

// DeleteTest удаляет тест. Вопросы, попытки и ответы уходят каскадом.
func (r *TestRepository) DeleteTest(ctx context.Context, testID int64) (model.DeleteResult, error) {
	var res model.DeleteResult
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT id FROM tests WHERE id = $1 FOR UPDATE", testID); err != nil {
			return fmt.Errorf("failed to lock test: %w", err)
		}
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM questions WHERE test_id = $1", testID).Scan(&res.QuestionsDeleted); err != nil {
			return fmt.Errorf("failed to count questions: %w", err)
		}
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM attempts WHERE test_id = $1", testID).Scan(&res.AttemptsDeleted); err != nil {
			return fmt.Errorf("failed to count attempts: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM tests WHERE id = $1", testID); err != nil {
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
func (r *TestRepository) AddQuestion(ctx context.Context, q model.Question) (model.Question, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO questions (test_id, order_index, q_text, a_text, b_text, c_text, d_text, correct)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		q.TestID, q.OrderIndex, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct,
	).Scan(&q.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Question{}, model.ErrDuplicate
		}
		return model.Question{}, fmt.Errorf("failed to add question: %w", err)
	}
	return q, nil
}

// CountQuestions количество вопросов теста
func (r *TestRepository) CountQuestions(ctx context.Context, testID int64) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM questions WHERE test_id = $1", testID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// MaxQuestionIndex наибольший порядковый номер вопроса, 0 для пустого теста
func (r *TestRepository) MaxQuestionIndex(ctx context.Context, testID int64) (int, error) {
	var last int
	if err := r.db.QueryRow(ctx, "SELECT COALESCE(MAX(order_index), 0) FROM questions WHERE test_id = $1", testID).Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to get max question index: %w", err)
	}
	return last, nil
}

// GetQuestionByIndex вопрос теста по порядковому номеру, nil если такого нет
func (r *TestRepository) GetQuestionByIndex(ctx context.Context, testID int64, orderIndex int) (*model.Question, error) {
	var q model.Question
	err := r.db.QueryRow(ctx, `
		SELECT id, test_id, order_index, q_text, a_text, b_text, c_text, d_text, correct
		FROM questions
		WHERE test_id = $1 AND order_index = $2`, testID, orderIndex).
		Scan(&q.ID, &q.TestID, &q.OrderIndex, &q.Text, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.Correct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}
