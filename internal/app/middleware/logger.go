package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// RequestIDKey ключ request id в telebot.Context
const RequestIDKey = "request_id"

// Logger пишет в лог каждое обновление Telegram с request id и временем обработки
func Logger() telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			requestID := uuid.NewString()
			c.Set(RequestIDKey, requestID)

			event := log.Info().Str(RequestIDKey, requestID).Int("update_id", c.Update().ID)
			if sender := c.Sender(); sender != nil {
				event = event.Int64("telegram_id", sender.ID)
			}
			if cb := c.Callback(); cb != nil {
				event = event.Str("callback", cb.Data)
			} else if msg := c.Message(); msg != nil {
				event = event.Int("text_len", len(msg.Text))
			}

			start := time.Now()
			err := next(c)

			event = event.Dur("duration", time.Since(start))
			if err != nil {
				event = event.Err(err)
			}
			event.Msg("telegram update")
			return err
		}
	}
}

// RequestID request id текущего обновления, если Logger подключен
func RequestID(c telebot.Context) string {
	id, _ := c.Get(RequestIDKey).(string)
	return id
}
