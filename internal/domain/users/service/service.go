package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/rs/zerolog/log"
)

// MinFullNameLen минимальная длина имени при регистрации
const MinFullNameLen = 3

// Repository хранилище пользователей
type Repository interface {
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

// UserService содержит логику бизнес-операций для пользователей
type UserService struct {
	userRepo Repository
}

// NewUserService создает новый экземпляр UserService
func NewUserService(userRepo Repository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ValidateFullName имя не короче трех символов
func ValidateFullName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < MinFullNameLen {
		return "", model.Invalidf("full name must be at least %d characters", MinFullNameLen)
	}
	return name, nil
}

// Register регистрирует пользователя. Повторная регистрация дает model.ErrAlreadyRegistered.
func (s *UserService) Register(ctx context.Context, callerID int64, fullName string, phone *string) (model.User, error) {
	fullName, err := ValidateFullName(fullName)
	if err != nil {
		return model.User{}, err
	}
	if phone != nil {
		p := strings.TrimSpace(*phone)
		if p == "" {
			phone = nil
		} else {
			phone = &p
		}
	}

	user, err := s.userRepo.CreateUser(ctx, model.User{TelegramID: callerID, FullName: fullName, Phone: phone})
	if err != nil {
		if errors.Is(err, model.ErrAlreadyRegistered) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Int64("telegram_id", callerID).Msg("user registered")
	return user, nil
}

// GetUserByTelegramID возвращает пользователя или model.ErrUserNotFound
func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (model.User, error) {
	user, err := s.userRepo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return model.User{}, model.ErrUserNotFound
	}
	return *user, nil
}

// IsRegistered есть ли пользователь в базе
func (s *UserService) IsRegistered(ctx context.Context, telegramID int64) (bool, error) {
	_, err := s.GetUserByTelegramID(ctx, telegramID)
	if errors.Is(err, model.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}
