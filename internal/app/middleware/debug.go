package middleware

import (
	"context"

	"github.com/IT-Nick/quizbot/internal/infra/session"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// DebugUserActions после обработки пишет в debug-лог шаг формы пользователя.
// Выключенный middleware ничего не делает.
func DebugUserActions(enabled bool, sessions session.Store) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		if !enabled {
			return next
		}
		return func(c telebot.Context) error {
			err := next(c)

			sender := c.Sender()
			if sender == nil {
				return err
			}
			step := session.StepIdle
			if st, ok, serr := sessions.Get(context.Background(), sender.ID); serr == nil && ok {
				step = st.Step
			}

			action := "unknown"
			if cb := c.Callback(); cb != nil {
				action = "callback: " + cb.Data
			} else if msg := c.Message(); msg != nil {
				action = "message: " + msg.Text
			}

			log.Debug().Str(RequestIDKey, RequestID(c)).Int64("telegram_id", sender.ID).
				Str("step", string(step)).Str("action", action).Msg("user action")
			return err
		}
	}
}
