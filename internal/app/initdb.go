package app

import (
	"context"
	"fmt"

	accessService "github.com/IT-Nick/quizbot/internal/domain/access/service"
	attemptsRepo "github.com/IT-Nick/quizbot/internal/domain/attempts/repository"
	attemptsService "github.com/IT-Nick/quizbot/internal/domain/attempts/service"
	reportsService "github.com/IT-Nick/quizbot/internal/domain/reports/service"
	testsRepo "github.com/IT-Nick/quizbot/internal/domain/tests/repository"
	testsService "github.com/IT-Nick/quizbot/internal/domain/tests/service"
	usersRepo "github.com/IT-Nick/quizbot/internal/domain/users/repository"
	usersService "github.com/IT-Nick/quizbot/internal/domain/users/service"
	"github.com/IT-Nick/quizbot/internal/infra/config"
	"github.com/IT-Nick/quizbot/internal/infra/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type userStore interface {
	usersService.Repository
	accessService.UserRepository
	attemptsService.UserRepository
}

type testStore interface {
	testsService.Repository
	attemptsService.TestRepository
	reportsService.TestRepository
}

type attemptStore interface {
	attemptsService.AttemptRepository
	reportsService.ResultRepository
}

// storage репозитории выбранного драйвера
type storage struct {
	users    userStore
	tests    testStore
	attempts attemptStore
	ping     func(ctx context.Context) error
	close    func()
}

// Ping проверка соединения для /healthz
func (s *storage) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func postgresStorage(db *pgxpool.Pool) *storage {
	return &storage{
		users:    usersRepo.NewUserRepository(db),
		tests:    testsRepo.NewTestRepository(db),
		attempts: attemptsRepo.NewAttemptRepository(db),
		ping:     db.Ping,
		close:    db.Close,
	}
}

func sqliteStorage(store *sqlite.Store) *storage {
	return &storage{
		users:    store,
		tests:    store,
		attempts: store,
		ping:     store.Ping,
		close: func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close sqlite")
			}
		},
	}
}

// InitDatabase устанавливает подключение к базе данных выбранного драйвера и готовит схему
func InitDatabase(ctx context.Context, cfg *config.Config) (*storage, error) {
	const op = "app.InitDatabase"

	if cfg.Database.Driver == config.DriverSQLite {
		store, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info().Str("path", cfg.Database.Path).Msg("sqlite opened")
		return sqliteStorage(store), nil
	}

	connConfig, err := pgxpool.ParseConfig(cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse database config: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, connConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create database pool: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}
	if err := MigratePostgres(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info().Str("host", connConfig.ConnConfig.Host).Str("database", connConfig.ConnConfig.Database).Msg("database connected successfully")
	return postgresStorage(db), nil
}
