package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/rs/zerolog/log"
)

// Ограничения авторинга
const (
	MinTitleLen        = 3
	MinDurationMinutes = 1
	MaxDurationMinutes = 300
	MinQuestionCount   = 1
	MaxQuestionCount   = 200
	MinQuestionTextLen = 2

	publicIDPrefix   = "T"
	publicIDMin      = 10000
	publicIDMax      = 99999
	publicIDAttempts = 5
)

// Repository хранилище тестов и вопросов
type Repository interface {
	CreateTest(ctx context.Context, test model.Test) (model.Test, error)
	GetTestByPublicID(ctx context.Context, publicID string) (*model.Test, error)
	ListTests(ctx context.Context, limit int) ([]model.TestSummary, error)
	SetTestActive(ctx context.Context, testID int64, active bool) error
	DeleteTest(ctx context.Context, testID int64) (model.DeleteResult, error)
	AddQuestion(ctx context.Context, q model.Question) (model.Question, error)
	CountQuestions(ctx context.Context, testID int64) (int, error)
}

// TestService создание, просмотр и удаление тестов
type TestService struct {
	testRepo    Repository
	newPublicID func() (string, error)
}

// Option настройка TestService
type Option func(*TestService)

// WithPublicIDGenerator подменяет генератор публичных id
func WithPublicIDGenerator(gen func() (string, error)) Option {
	return func(s *TestService) { s.newPublicID = gen }
}

// NewTestService создает новый экземпляр TestService
func NewTestService(testRepo Repository, opts ...Option) *TestService {
	s := &TestService{testRepo: testRepo, newPublicID: GeneratePublicID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeneratePublicID "T" и пять случайных цифр
func GeneratePublicID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(publicIDMax-publicIDMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate public id: %w", err)
	}
	return fmt.Sprintf("%s%d", publicIDPrefix, n.Int64()+publicIDMin), nil
}

// ValidateTitle название не короче трех символов
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < MinTitleLen {
		return "", model.Invalidf("title must be at least %d characters", MinTitleLen)
	}
	return title, nil
}

// ValidateDuration длительность в минутах от 1 до 300
func ValidateDuration(minutes int) error {
	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return model.Invalidf("duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes)
	}
	return nil
}

// ValidateQuestionCount количество вопросов от 1 до 200
func ValidateQuestionCount(count int) error {
	if count < MinQuestionCount || count > MaxQuestionCount {
		return model.Invalidf("question count must be between %d and %d", MinQuestionCount, MaxQuestionCount)
	}
	return nil
}

// ValidateQuestionText текст вопроса не короче двух символов
func ValidateQuestionText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinQuestionTextLen {
		return "", model.Invalidf("question text must be at least %d characters", MinQuestionTextLen)
	}
	return text, nil
}

// ValidateOption текст варианта не пустой
func ValidateOption(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", model.Invalidf("option text must not be empty")
	}
	return text, nil
}

// CreateTest создает тест до добавления вопросов, чтобы на него можно было ссылаться сразу.
// questionCount проверяется здесь, а сами вопросы приходят через AddQuestion.
func (s *TestService) CreateTest(ctx context.Context, callerID int64, privileged bool, title string, durationMinutes, questionCount int) (model.Test, error) {
	if !privileged {
		return model.Test{}, fmt.Errorf("only admins can create tests: %w", model.ErrForbidden)
	}
	title, err := ValidateTitle(title)
	if err != nil {
		return model.Test{}, err
	}
	if err := ValidateDuration(durationMinutes); err != nil {
		return model.Test{}, err
	}
	if err := ValidateQuestionCount(questionCount); err != nil {
		return model.Test{}, err
	}

	for i := 0; i < publicIDAttempts; i++ {
		publicID, err := s.newPublicID()
		if err != nil {
			return model.Test{}, err
		}

		test, err := s.testRepo.CreateTest(ctx, model.Test{
			PublicID:    publicID,
			Title:       title,
			DurationSec: durationMinutes * 60,
			IsActive:    true,
			CreatedBy:   callerID,
		})
		if errors.Is(err, model.ErrDuplicate) {
			log.Warn().Str("public_id", publicID).Msg("public id collision, retrying")
			continue
		}
		if err != nil {
			return model.Test{}, fmt.Errorf("failed to create test: %w", err)
		}

		log.Info().Str("public_id", test.PublicID).Int64("created_by", callerID).Msg("test created")
		return test, nil
	}
	return model.Test{}, fmt.Errorf("failed to allocate a unique public id after %d attempts", publicIDAttempts)
}

// AddQuestion сохраняет вопрос сразу, без общей транзакции на весь тест.
// Номера идут подряд с 1: принимается только следующий за последним,
// занятый номер тоже считается ошибкой ввода.
func (s *TestService) AddQuestion(ctx context.Context, publicTestID string, orderIndex int, text string, options [4]string, correct string) (model.Question, error) {
	if orderIndex < 1 {
		return model.Question{}, model.Invalidf("order index must be positive")
	}
	text, err := ValidateQuestionText(text)
	if err != nil {
		return model.Question{}, err
	}
	for i := range options {
		if options[i], err = ValidateOption(options[i]); err != nil {
			return model.Question{}, err
		}
	}
	letter, ok := model.NormalizeLetter(correct)
	if !ok {
		return model.Question{}, model.Invalidf("correct answer must be one of A, B, C, D")
	}

	test, err := s.GetTest(ctx, publicTestID)
	if err != nil {
		return model.Question{}, err
	}
	count, err := s.testRepo.CountQuestions(ctx, test.ID)
	if err != nil {
		return model.Question{}, fmt.Errorf("failed to count questions: %w", err)
	}
	if orderIndex <= count {
		return model.Question{}, model.Invalidf("question %d already exists in test %s", orderIndex, test.PublicID)
	}
	if orderIndex != count+1 {
		return model.Question{}, model.Invalidf("question %d must follow question %d in test %s", orderIndex, count, test.PublicID)
	}

	q, err := s.testRepo.AddQuestion(ctx, model.Question{
		TestID:     test.ID,
		OrderIndex: orderIndex,
		Text:       text,
		Options:    options,
		Correct:    letter,
	})
	if errors.Is(err, model.ErrDuplicate) {
		return model.Question{}, model.Invalidf("question %d already exists in test %s", orderIndex, test.PublicID)
	}
	if err != nil {
		return model.Question{}, fmt.Errorf("failed to add question: %w", err)
	}
	return q, nil
}

// GetTest тест по публичному id
func (s *TestService) GetTest(ctx context.Context, publicTestID string) (model.Test, error) {
	test, err := s.testRepo.GetTestByPublicID(ctx, model.NormalizePublicID(publicTestID))
	if err != nil {
		return model.Test{}, fmt.Errorf("failed to get test: %w", err)
	}
	if test == nil {
		return model.Test{}, model.ErrTestNotFound
	}
	return *test, nil
}

// ListTests последние тесты, новые первыми
func (s *TestService) ListTests(ctx context.Context, limit int) ([]model.TestSummary, error) {
	tests, err := s.testRepo.ListTests(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	return tests, nil
}

// SetActive включает или выключает прием новых попыток
func (s *TestService) SetActive(ctx context.Context, publicTestID string, privileged, active bool) (model.Test, error) {
	if !privileged {
		return model.Test{}, fmt.Errorf("only admins can change tests: %w", model.ErrForbidden)
	}
	test, err := s.GetTest(ctx, publicTestID)
	if err != nil {
		return model.Test{}, err
	}
	if err := s.testRepo.SetTestActive(ctx, test.ID, active); err != nil {
		return model.Test{}, fmt.Errorf("failed to set test active: %w", err)
	}
	test.IsActive = active
	return test, nil
}

// DeleteTest удаляет тест вместе с вопросами и попытками
func (s *TestService) DeleteTest(ctx context.Context, publicTestID string, callerID int64, privileged bool) (model.DeleteResult, error) {
	if !privileged {
		return model.DeleteResult{}, fmt.Errorf("only admins can delete tests: %w", model.ErrForbidden)
	}
	test, err := s.GetTest(ctx, publicTestID)
	if err != nil {
		return model.DeleteResult{}, err
	}

	res, err := s.testRepo.DeleteTest(ctx, test.ID)
	if err != nil {
		return model.DeleteResult{}, fmt.Errorf("failed to delete test: %w", err)
	}

	log.Info().Str("public_id", test.PublicID).Int64("deleted_by", callerID).
		Int("questions", res.QuestionsDeleted).Int("attempts", res.AttemptsDeleted).Msg("test deleted")
	return res, nil
}
