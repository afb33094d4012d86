package answer_handler

import (
	"context"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/app/dialog"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/view"
	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// AnswerHandler нажатие кнопки варианта ответа
type AnswerHandler struct {
	dialog *dialog.Dialog
}

// NewAnswerHandler возвращает структуру обработчика
func NewAnswerHandler(d *dialog.Dialog) *AnswerHandler {
	return &AnswerHandler{dialog: d}
}

// Handle обрабатывает callback ans:{attemptID}:{index}:{letter}. data уже очищена роутером.
func (h *AnswerHandler) Handle(c telebot.Context, data string) error {
	res, err := h.dialog.Answer(context.Background(), c.Sender().ID, data)
	if err != nil {
		_ = c.Respond()
		return fmt.Errorf("failed to handle answer: %w", err)
	}

	if err := c.Respond(&telebot.CallbackResponse{Text: res.Toast}); err != nil {
		return err
	}

	// кнопки под отвеченным вопросом больше не нужны
	if res.Close && c.Message() != nil {
		if _, err := c.Bot().EditReplyMarkup(c.Message(), nil); err != nil {
			log.Debug().Err(err).Int64("telegram_id", c.Sender().ID).Msg("failed to remove answer buttons")
		}
	}

	return view.Send(c, res.Replies)
}
