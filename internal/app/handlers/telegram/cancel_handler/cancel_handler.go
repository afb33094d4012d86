package cancel_handler

import (
	"context"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/app/dialog"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/view"
	"gopkg.in/telebot.v4"
)

// CancelHandler команда /cancel
type CancelHandler struct {
	dialog *dialog.Dialog
}

// NewCancelHandler возвращает структуру обработчика
func NewCancelHandler(d *dialog.Dialog) *CancelHandler {
	return &CancelHandler{dialog: d}
}

func (h *CancelHandler) Handle(c telebot.Context) error {
	replies, err := h.dialog.Cancel(context.Background(), c.Sender().ID)
	if err != nil {
		return fmt.Errorf("failed to handle /cancel: %w", err)
	}
	return view.Send(c, replies)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *CancelHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
