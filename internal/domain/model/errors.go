package model

import (
	"errors"
	"fmt"
)

// Виды ошибок. Конкретные ошибки ниже оборачивают вид, проверка через errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrEmptyTest    = errors.New("test has no questions")
)

var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrTestNotFound     = fmt.Errorf("test %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrAttemptNotFound  = fmt.Errorf("attempt %w", ErrNotFound)

	ErrAlreadyAnswered   = fmt.Errorf("question already answered: %w", ErrConflict)
	ErrAttemptClosed     = fmt.Errorf("attempt already closed: %w", ErrConflict)
	ErrAlreadyRegistered = fmt.Errorf("user already registered: %w", ErrConflict)

	// ErrDuplicate нарушение уникального ключа на уровне хранилища
	ErrDuplicate = errors.New("duplicate key")
)

// Invalidf ошибка валидации пользовательского ввода
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
