package who_page_handler

import (
	"context"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/app/dialog"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/view"
	"gopkg.in/telebot.v4"
)

// WhoPageHandler листание списка "кто решал"
type WhoPageHandler struct {
	dialog *dialog.Dialog
}

// NewWhoPageHandler возвращает структуру обработчика
func NewWhoPageHandler(d *dialog.Dialog) *WhoPageHandler {
	return &WhoPageHandler{dialog: d}
}

// Handle обрабатывает callback who:{publicID}:{page}:{size}. data уже очищена роутером.
func (h *WhoPageHandler) Handle(c telebot.Context, data string) error {
	replies, err := h.dialog.WhoSolvedPage(context.Background(), c.Sender().ID, data)
	if err != nil {
		return fmt.Errorf("failed to handle who solved page: %w", err)
	}
	if err := c.Respond(); err != nil {
		return err
	}
	return view.Send(c, replies)
}
