package app

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/questionbank"
	"github.com/rs/zerolog/log"
)

// ImportRequest параметры теста, собираемого из банка вопросов
type ImportRequest struct {
	BankPath        string
	Title           string
	DurationMinutes int
	QuestionCount   int
	AuthorID        int64
}

// ImportTest создает тест из случайных вопросов банка от имени автора.
// Автор должен быть администратором.
func (app *App) ImportTest(ctx context.Context, req ImportRequest, rng *rand.Rand) (model.Test, error) {
	const op = "app.ImportTest"

	bank, err := questionbank.Load(req.BankPath)
	if err != nil {
		return model.Test{}, fmt.Errorf("%s: %w", op, err)
	}
	if req.QuestionCount > bank.Len() {
		return model.Test{}, model.Invalidf("bank has %d questions, %d requested", bank.Len(), req.QuestionCount)
	}

	privileged, err := app.access.IsPrivileged(ctx, req.AuthorID)
	if err != nil {
		return model.Test{}, fmt.Errorf("%s: %w", op, err)
	}

	test, err := app.tests.CreateTest(ctx, req.AuthorID, privileged, req.Title, req.DurationMinutes, req.QuestionCount)
	if err != nil {
		return model.Test{}, fmt.Errorf("%s: %w", op, err)
	}

	for i, item := range bank.Pick(req.QuestionCount, rng) {
		if _, err := app.tests.AddQuestion(ctx, test.PublicID, i+1, item.Text, item.OptionsArray(), item.Answer); err != nil {
			// недособранный тест не оставляем
			if _, delErr := app.tests.DeleteTest(ctx, test.PublicID, req.AuthorID, true); delErr != nil {
				log.Warn().Err(delErr).Str("public_id", test.PublicID).Msg("failed to remove partial test")
			}
			return model.Test{}, fmt.Errorf("%s: question %d: %w", op, i+1, err)
		}
	}

	log.Info().Str("public_id", test.PublicID).Str("bank", req.BankPath).Int("questions", req.QuestionCount).Msg("test imported")
	return test, nil
}
