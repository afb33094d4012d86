package callback_handler

import (
	"strings"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/answer_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/who_page_handler"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// CallbackHandler направляет нажатия инлайн-кнопок по префиксу data
type CallbackHandler struct {
	answer *answer_handler.AnswerHandler
	who    *who_page_handler.WhoPageHandler
}

// NewCallbackHandler возвращает структуру обработчика
func NewCallbackHandler(answer *answer_handler.AnswerHandler, who *who_page_handler.WhoPageHandler) *CallbackHandler {
	return &CallbackHandler{answer: answer, who: who}
}

// CleanData убирает пробелы и служебный \f, который telebot добавляет к unique-кнопкам
func CleanData(data string) string {
	data = strings.TrimSpace(data)
	data = strings.ReplaceAll(data, "\f", "")
	return data
}

// Prefix часть data до первого двоеточия
func Prefix(data string) string {
	prefix, _, _ := strings.Cut(data, ":")
	return prefix
}

func (h *CallbackHandler) Handle(c telebot.Context) error {
	data := CleanData(c.Callback().Data)

	switch Prefix(data) {
	case model.AnswerCallbackPrefix:
		return h.answer.Handle(c, data)
	case model.WhoSolvedCallbackPrefix:
		return h.who.Handle(c, data)
	default:
		return c.Respond()
	}
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *CallbackHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
