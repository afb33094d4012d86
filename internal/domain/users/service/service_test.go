package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/sqlite"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewUserService(store)
}

func TestRegister(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	phone := " +998 90 000 "

	u, err := svc.Register(ctx, 42, "  Ann Lee ", &phone)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.FullName != "Ann Lee" || u.Phone == nil || *u.Phone != "+998 90 000" || u.IsAdmin {
		t.Errorf("неожиданный пользователь %+v", u)
	}

	if _, err := svc.Register(ctx, 42, "Ann Lee", nil); !errors.Is(err, model.ErrAlreadyRegistered) {
		t.Errorf("повторная регистрация: %v", err)
	}
	if !errors.Is(model.ErrAlreadyRegistered, model.ErrConflict) {
		t.Errorf("ErrAlreadyRegistered должна быть Conflict")
	}

	ok, err := svc.IsRegistered(ctx, 42)
	if err != nil || !ok {
		t.Errorf("IsRegistered(42) = %v, %v", ok, err)
	}
	ok, err = svc.IsRegistered(ctx, 43)
	if err != nil || ok {
		t.Errorf("IsRegistered(43) = %v, %v", ok, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService(t)
	if _, err := svc.Register(context.Background(), 1, " Al ", nil); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("короткое имя: ожидалась InvalidInput, получено %v", err)
	}
	if _, err := svc.GetUserByTelegramID(context.Background(), 1); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("после ошибки валидации пользователь не должен появиться: %v", err)
	}
}
