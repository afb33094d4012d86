package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

const bankYAML = `
- text: Ключевое слово для горутины?
  options: [defer, go, chan, select]
  answer: B
- text: Нулевое значение для map?
  options: ["nil", "{}", "0", "пустая строка"]
  answer: A
- text: Чем закрывают канал?
  options: [stop, end, close, done]
  answer: c
`

func writeBank(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.yaml")
	if err := os.WriteFile(path, []byte(bankYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestImportTest(t *testing.T) {
	f := newHTTPFixture(t)
	ctx := context.Background()
	bank := writeBank(t)
	rng := rand.New(rand.NewPCG(7, 8))

	test, err := f.app.ImportTest(ctx, ImportRequest{
		BankPath: bank, Title: "Импорт", DurationMinutes: 3, QuestionCount: 2, AuthorID: admin,
	}, rng)
	if err != nil {
		t.Fatalf("ImportTest: %v", err)
	}
	if test.DurationSec != 180 || !test.IsActive {
		t.Errorf("тест = %+v", test)
	}

	started, err := f.app.attempts.StartAttempt(ctx, test.PublicID, bob)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if started.Attempt.Total != 2 {
		t.Errorf("total = %d, ожидалось 2", started.Attempt.Total)
	}

	_, err = f.app.ImportTest(ctx, ImportRequest{
		BankPath: bank, Title: "Импорт", DurationMinutes: 3, QuestionCount: 5, AuthorID: admin,
	}, rng)
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("больше вопросов, чем в банке: %v", err)
	}

	_, err = f.app.ImportTest(ctx, ImportRequest{
		BankPath: bank, Title: "Импорт", DurationMinutes: 3, QuestionCount: 1, AuthorID: alice,
	}, rng)
	if !errors.Is(err, model.ErrForbidden) {
		t.Errorf("импорт не админом: %v", err)
	}
}
