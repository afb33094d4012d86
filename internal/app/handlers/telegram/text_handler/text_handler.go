package text_handler

import (
	"context"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/app/dialog"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/view"
	"gopkg.in/telebot.v4"
)

// TextHandler кнопки меню и шаги форм
type TextHandler struct {
	dialog *dialog.Dialog
}

// NewTextHandler возвращает структуру обработчика
func NewTextHandler(d *dialog.Dialog) *TextHandler {
	return &TextHandler{dialog: d}
}

func (h *TextHandler) Handle(c telebot.Context) error {
	replies, err := h.dialog.HandleText(context.Background(), c.Sender().ID, c.Text())
	if err != nil {
		return fmt.Errorf("failed to handle text: %w", err)
	}
	return view.Send(c, replies)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *TextHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
