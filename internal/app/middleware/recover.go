package middleware

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// Recover превращает панику обработчика в ошибку.
// onError вызывается с восстановленной ошибкой, по умолчанию она пишется в лог.
func Recover(onError ...func(error, telebot.Context)) telebot.MiddlewareFunc {
	var handleError func(error, telebot.Context)
	if len(onError) > 0 {
		handleError = onError[0]
	} else {
		handleError = func(err error, c telebot.Context) {
			log.Error().Err(err).Str(RequestIDKey, RequestID(c)).Msg("recovered from panic")
		}
	}

	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = panicError(r)
					handleError(err, c)
				}
			}()
			return next(c)
		}
	}
}

func panicError(r any) error {
	switch x := r.(type) {
	case error:
		return x
	case string:
		return errors.New(x)
	default:
		return fmt.Errorf("panic: %v", x)
	}
}
