package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// схема создается идемпотентно, старые таблицы users получают флаги ролей
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		telegram_id BIGINT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		phone TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_admin BOOLEAN NOT NULL DEFAULT FALSE`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_superadmin BOOLEAN NOT NULL DEFAULT FALSE`,
	`CREATE TABLE IF NOT EXISTS tests (
		id BIGSERIAL PRIMARY KEY,
		public_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		duration_sec INTEGER NOT NULL CHECK (duration_sec > 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id BIGSERIAL PRIMARY KEY,
		test_id BIGINT NOT NULL REFERENCES tests(id) ON DELETE CASCADE,
		order_index INTEGER NOT NULL,
		q_text TEXT NOT NULL,
		a_text TEXT NOT NULL,
		b_text TEXT NOT NULL,
		c_text TEXT NOT NULL,
		d_text TEXT NOT NULL,
		correct CHAR(1) NOT NULL CHECK (correct IN ('A', 'B', 'C', 'D')),
		UNIQUE (test_id, order_index)
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id BIGSERIAL PRIMARY KEY,
		test_id BIGINT NOT NULL REFERENCES tests(id) ON DELETE CASCADE,
		telegram_id BIGINT NOT NULL REFERENCES users(telegram_id),
		started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at TIMESTAMPTZ,
		score INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL,
		percent INTEGER NOT NULL DEFAULT 0,
		time_spent_sec INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'in_progress' CHECK (status IN ('in_progress', 'finished', 'timeout'))
	)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id BIGSERIAL PRIMARY KEY,
		attempt_id BIGINT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
		question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		chosen CHAR(1) NOT NULL,
		is_correct BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (attempt_id, question_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts (telegram_id, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_test ON attempts (test_id, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_in_progress ON attempts (started_at) WHERE status = 'in_progress'`,
}

// MigratePostgres создает таблицы и индексы, если их еще нет
func MigratePostgres(ctx context.Context, db *pgxpool.Pool) error {
	const op = "app.MigratePostgres"

	for _, stmt := range postgresSchema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
