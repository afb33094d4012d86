package start_handler

import (
	"context"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/app/dialog"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/view"
	"gopkg.in/telebot.v4"
)

// StartHandler структура для обработки команды /start
type StartHandler struct {
	dialog *dialog.Dialog
}

// NewStartHandler возвращает структуру обработчика
func NewStartHandler(d *dialog.Dialog) *StartHandler {
	return &StartHandler{dialog: d}
}

// Handle показывает меню или, если пришли по deep link /start <id>, сразу начинает тест
func (h *StartHandler) Handle(c telebot.Context) error {
	replies, err := h.dialog.Start(context.Background(), c.Sender().ID, c.Message().Payload)
	if err != nil {
		return fmt.Errorf("failed to handle /start: %w", err)
	}
	return view.Send(c, replies)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *StartHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
