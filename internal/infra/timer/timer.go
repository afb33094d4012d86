package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/rs/zerolog/log"
)

// Expirer закрывает просроченные попытки, реализуется AttemptService
type Expirer interface {
	ExpireOverdue(ctx context.Context, limit int) ([]model.Attempt, error)
}

// Notifier сообщает владельцу о попытке, закрытой по таймауту
type Notifier func(ctx context.Context, attempt model.Attempt)

// Sweeper периодически закрывает попытки, у которых вышло время.
// Без него таймаут определяется лениво при следующем ответе.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	batch    int
	notify   Notifier
}

// NewSweeper создает Sweeper. notify может быть nil.
func NewSweeper(expirer Expirer, interval time.Duration, batch int, notify Notifier) *Sweeper {
	if batch <= 0 {
		batch = 100
	}
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		batch:    batch,
		notify:   notify,
	}
}

// Run крутит цикл до отмены ctx
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("attempt sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("attempt sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Error().Err(err).Msg("failed to expire overdue attempts")
			}
		}
	}
}

// Sweep один проход: закрывает пачки, пока они приходят полными
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	total := 0
	for {
		expired, err := s.expirer.ExpireOverdue(ctx, s.batch)
		total += len(expired)
		for _, a := range expired {
			log.Info().Int64("attempt_id", a.ID).Int64("telegram_id", a.TelegramID).Msg("attempt expired by sweeper")
			if s.notify != nil {
				s.notify(ctx, a)
			}
		}
		if err != nil {
			return total, fmt.Errorf("failed to expire attempts: %w", err)
		}
		if len(expired) < s.batch || ctx.Err() != nil {
			return total, nil
		}
	}
}
