package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/rs/zerolog/log"
)

// TestRepository чтение тестов и вопросов, нужное движку попыток
type TestRepository interface {
	GetTestByPublicID(ctx context.Context, publicID string) (*model.Test, error)
	GetTestByID(ctx context.Context, id int64) (*model.Test, error)
	CountQuestions(ctx context.Context, testID int64) (int, error)
	MaxQuestionIndex(ctx context.Context, testID int64) (int, error)
	GetQuestionByIndex(ctx context.Context, testID int64, orderIndex int) (*model.Question, error)
}

// AttemptRepository хранилище попыток. RecordAnswer и FinalizeAttempt атомарны на стороне хранилища.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, a model.Attempt) (model.Attempt, error)
	GetAttempt(ctx context.Context, id int64) (*model.Attempt, error)
	CountAnswers(ctx context.Context, attemptID int64) (int, error)
	RecordAnswer(ctx context.Context, ans model.Answer) (model.Attempt, error)
	FinalizeAttempt(ctx context.Context, id int64, status model.AttemptStatus, now time.Time) (model.Attempt, error)
	ListOverdueAttempts(ctx context.Context, now time.Time, limit int) ([]model.Attempt, error)
}

// UserRepository проверка регистрации владельца попытки
type UserRepository interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

// OutcomeKind чем закончилась отправка ответа
type OutcomeKind string

const (
	OutcomeNext     OutcomeKind = "next"
	OutcomeFinished OutcomeKind = "finished"
	OutcomeTimeout  OutcomeKind = "timeout"
)

// Started результат StartAttempt
type Started struct {
	Attempt model.Attempt
	Test    model.Test
	First   model.Question
}

// Outcome результат SubmitAnswer. Next заполнен только для OutcomeNext.
type Outcome struct {
	Kind    OutcomeKind
	Attempt model.Attempt
	Next    *model.Question
}

// AttemptService движок попыток. Состояния между вызовами не держит,
// каждая операция восстанавливает попытку из хранилища.
type AttemptService struct {
	testRepo    TestRepository
	attemptRepo AttemptRepository
	userRepo    UserRepository
	now         func() time.Time
}

// Option настройка AttemptService
type Option func(*AttemptService)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(s *AttemptService) { s.now = now }
}

// NewAttemptService создает новый экземпляр AttemptService
func NewAttemptService(testRepo TestRepository, attemptRepo AttemptRepository, userRepo UserRepository, opts ...Option) *AttemptService {
	s := &AttemptService{
		testRepo:    testRepo,
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartAttempt начинает попытку по публичному id теста и возвращает первый вопрос.
// total фиксируется по количеству вопросов на момент старта.
func (s *AttemptService) StartAttempt(ctx context.Context, publicTestID string, callerID int64) (Started, error) {
	user, err := s.userRepo.GetUserByTelegramID(ctx, callerID)
	if err != nil {
		return Started{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return Started{}, model.ErrUserNotFound
	}

	test, err := s.testRepo.GetTestByPublicID(ctx, model.NormalizePublicID(publicTestID))
	if err != nil {
		return Started{}, fmt.Errorf("failed to get test: %w", err)
	}
	if test == nil || !test.IsActive {
		return Started{}, model.ErrTestNotFound
	}

	total, err := s.testRepo.CountQuestions(ctx, test.ID)
	if err != nil {
		return Started{}, fmt.Errorf("failed to count questions: %w", err)
	}
	if total == 0 {
		return Started{}, model.ErrEmptyTest
	}
	// номера уникальны и начинаются с 1, поэтому совпадение с количеством значит отсутствие пропусков
	last, err := s.testRepo.MaxQuestionIndex(ctx, test.ID)
	if err != nil {
		return Started{}, fmt.Errorf("failed to get max question index: %w", err)
	}
	if last != total {
		log.Warn().Str("public_id", test.PublicID).Int("count", total).Int("max_index", last).Msg("question numbering has gaps")
		return Started{}, fmt.Errorf("test %s has gaps in question numbering: %w", test.PublicID, model.ErrQuestionNotFound)
	}

	first, err := s.testRepo.GetQuestionByIndex(ctx, test.ID, 1)
	if err != nil {
		return Started{}, fmt.Errorf("failed to get first question: %w", err)
	}
	if first == nil {
		return Started{}, model.ErrQuestionNotFound
	}

	attempt, err := s.attemptRepo.CreateAttempt(ctx, model.Attempt{
		TestID:     test.ID,
		TelegramID: callerID,
		StartedAt:  s.now(),
		Total:      total,
		Status:     model.StatusInProgress,
	})
	if err != nil {
		return Started{}, fmt.Errorf("failed to create attempt: %w", err)
	}

	log.Info().Int64("attempt_id", attempt.ID).Str("public_id", test.PublicID).
		Int64("telegram_id", callerID).Int("total", total).Msg("attempt started")

	return Started{Attempt: attempt, Test: *test, First: *first}, nil
}

// GetCurrentQuestion вопрос попытки по порядковому номеру
func (s *AttemptService) GetCurrentQuestion(ctx context.Context, attemptID int64, orderIndex int) (model.Question, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return model.Question{}, err
	}
	return s.questionAt(ctx, attempt.TestID, orderIndex)
}

// SubmitAnswer принимает ответ на вопрос orderIndex.
// Проверки идут строго по порядку: попытка, владелец, статус, дедлайн, вопрос, повтор.
func (s *AttemptService) SubmitAnswer(ctx context.Context, attemptID int64, orderIndex int, letter string, callerID int64) (Outcome, error) {
	chosen, ok := model.NormalizeLetter(letter)
	if !ok {
		return Outcome{}, model.Invalidf("answer letter must be one of A, B, C, D")
	}

	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return Outcome{}, err
	}
	if attempt.TelegramID != callerID {
		return Outcome{}, fmt.Errorf("attempt %d belongs to another user: %w", attemptID, model.ErrForbidden)
	}
	if attempt.Status.IsTerminal() {
		return Outcome{Kind: kindOf(attempt.Status), Attempt: *attempt}, model.ErrAttemptClosed
	}

	test, err := s.testRepo.GetTestByID(ctx, attempt.TestID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to get test: %w", err)
	}
	if test == nil {
		return Outcome{}, model.ErrTestNotFound
	}

	now := s.now()
	if attempt.Expired(test.Duration(), now) {
		return s.finalize(ctx, attempt.ID, model.StatusTimeout, now)
	}

	answered, err := s.attemptRepo.CountAnswers(ctx, attempt.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to count answers: %w", err)
	}
	if orderIndex > answered+1 {
		return Outcome{}, fmt.Errorf("question %d is ahead of the sequence: %w", orderIndex, model.ErrQuestionNotFound)
	}

	question, err := s.questionAt(ctx, attempt.TestID, orderIndex)
	if err != nil {
		return Outcome{}, err
	}

	updated, err := s.attemptRepo.RecordAnswer(ctx, model.Answer{
		AttemptID:  attempt.ID,
		QuestionID: question.ID,
		Chosen:     chosen,
		IsCorrect:  question.IsCorrect(chosen),
	})
	if err != nil {
		if errors.Is(err, model.ErrAlreadyAnswered) || errors.Is(err, model.ErrAttemptClosed) || errors.Is(err, model.ErrNotFound) {
			return Outcome{}, err
		}
		return Outcome{}, fmt.Errorf("failed to record answer: %w", err)
	}

	next := orderIndex + 1
	if next > updated.Total {
		return s.finalize(ctx, attempt.ID, model.StatusFinished, s.now())
	}

	nextQuestion, err := s.questionAt(ctx, attempt.TestID, next)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: OutcomeNext, Attempt: updated, Next: &nextQuestion}, nil
}

// ExpireOverdue закрывает по таймауту попытки с прошедшим дедлайном.
// Возвращает закрытые этим вызовом попытки.
func (s *AttemptService) ExpireOverdue(ctx context.Context, limit int) ([]model.Attempt, error) {
	now := s.now()
	overdue, err := s.attemptRepo.ListOverdueAttempts(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue attempts: %w", err)
	}

	var expired []model.Attempt
	for _, a := range overdue {
		out, err := s.finalize(ctx, a.ID, model.StatusTimeout, now)
		if err != nil {
			if errors.Is(err, model.ErrAttemptClosed) {
				continue
			}
			return expired, err
		}
		expired = append(expired, out.Attempt)
	}
	return expired, nil
}

func (s *AttemptService) finalize(ctx context.Context, attemptID int64, status model.AttemptStatus, now time.Time) (Outcome, error) {
	attempt, err := s.attemptRepo.FinalizeAttempt(ctx, attemptID, status, now)
	if err != nil {
		if errors.Is(err, model.ErrAttemptClosed) {
			return Outcome{Kind: kindOf(attempt.Status), Attempt: attempt}, err
		}
		return Outcome{}, fmt.Errorf("failed to finalize attempt: %w", err)
	}

	log.Info().Int64("attempt_id", attempt.ID).Str("status", string(attempt.Status)).
		Int("score", attempt.Score).Int("total", attempt.Total).Int("percent", attempt.Percent).
		Int("time_spent_sec", attempt.TimeSpentSec).Msg("attempt finalized")

	return Outcome{Kind: kindOf(attempt.Status), Attempt: attempt}, nil
}

func (s *AttemptService) getAttempt(ctx context.Context, attemptID int64) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt == nil {
		return nil, model.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptService) questionAt(ctx context.Context, testID int64, orderIndex int) (model.Question, error) {
	q, err := s.testRepo.GetQuestionByIndex(ctx, testID, orderIndex)
	if err != nil {
		return model.Question{}, fmt.Errorf("failed to get question: %w", err)
	}
	if q == nil {
		return model.Question{}, model.ErrQuestionNotFound
	}
	return *q, nil
}

func kindOf(status model.AttemptStatus) OutcomeKind {
	switch status {
	case model.StatusFinished:
		return OutcomeFinished
	case model.StatusTimeout:
		return OutcomeTimeout
	}
	return OutcomeNext
}
