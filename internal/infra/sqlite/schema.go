package sqlite

import "context"

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			telegram_id INTEGER NOT NULL UNIQUE,
			full_name TEXT NOT NULL,
			phone TEXT,
			is_admin INTEGER NOT NULL DEFAULT 0,
			is_superadmin INTEGER NOT NULL DEFAULT 0,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			public_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			duration_sec INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_by INTEGER NOT NULL,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			test_id INTEGER NOT NULL REFERENCES tests(id) ON DELETE CASCADE,
			order_index INTEGER NOT NULL,
			q_text TEXT NOT NULL,
			a_text TEXT NOT NULL,
			b_text TEXT NOT NULL,
			c_text TEXT NOT NULL,
			d_text TEXT NOT NULL,
			correct TEXT NOT NULL CHECK (correct IN ('A','B','C','D')),
			UNIQUE (test_id, order_index)
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			test_id INTEGER NOT NULL REFERENCES tests(id) ON DELETE CASCADE,
			telegram_id INTEGER NOT NULL REFERENCES users(telegram_id),
			started_at_unix INTEGER NOT NULL,
			finished_at_unix INTEGER,
			score INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL,
			percent INTEGER NOT NULL DEFAULT 0,
			time_spent_sec INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'in_progress'
		);`,
		`CREATE TABLE IF NOT EXISTS answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			attempt_id INTEGER NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
			question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			chosen TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			created_at_unix INTEGER NOT NULL,
			UNIQUE (attempt_id, question_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts(telegram_id, id DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_test ON attempts(test_id, id DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_status ON attempts(status);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
