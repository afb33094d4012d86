package view

import (
	"bytes"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/app/dialog"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// MenuMarkup основное меню как reply-клавиатура
func MenuMarkup(rows [][]string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	for _, row := range rows {
		buttons := make([]telebot.ReplyButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, telebot.ReplyButton{Text: text})
		}
		markup.ReplyKeyboard = append(markup.ReplyKeyboard, buttons)
	}
	return markup
}

// QuestionMarkup кнопки A-D под вопросом, по две в ряд
func QuestionMarkup(p *dialog.QuestionPrompt) *telebot.ReplyMarkup {
	btn := func(letter string) telebot.InlineButton {
		return telebot.InlineButton{Text: letter, Data: dialog.AnswerData(p.AttemptID, p.OrderIndex, letter)}
	}
	l := model.Letters
	return &telebot.ReplyMarkup{InlineKeyboard: [][]telebot.InlineButton{
		{btn(l[0]), btn(l[1])},
		{btn(l[2]), btn(l[3])},
	}}
}

// PagingMarkup кнопки листания "кто решал"
func PagingMarkup(p *dialog.Paging) *telebot.ReplyMarkup {
	var row []telebot.InlineButton
	if p.HasPrev {
		row = append(row, telebot.InlineButton{Text: "⬅️", Data: dialog.WhoSolvedData(p.PublicID, p.Page-1, p.Size)})
	}
	if p.HasNext {
		row = append(row, telebot.InlineButton{Text: "➡️", Data: dialog.WhoSolvedData(p.PublicID, p.Page+1, p.Size)})
	}
	return &telebot.ReplyMarkup{InlineKeyboard: [][]telebot.InlineButton{row}}
}

// Render сообщение и опции отправки для одного ответа диалога
func Render(r dialog.Reply) (any, []any) {
	switch {
	case r.Document != nil:
		return &telebot.Document{
			File:     telebot.FromReader(bytes.NewReader(r.Document.Data)),
			FileName: r.Document.Name,
			Caption:  r.Document.Caption,
		}, nil
	case r.Photo != nil:
		return &telebot.Photo{
			File:    telebot.FromReader(bytes.NewReader(r.Photo.Data)),
			Caption: r.Photo.Caption,
		}, nil
	}

	var opts []any
	switch {
	case r.Question != nil:
		opts = append(opts, QuestionMarkup(r.Question))
	case r.Paging != nil:
		opts = append(opts, PagingMarkup(r.Paging))
	case r.Keyboard != nil:
		opts = append(opts, MenuMarkup(r.Keyboard))
	}
	return r.Text, opts
}

// Send отправляет ответы диалога по порядку
func Send(c telebot.Context, replies []dialog.Reply) error {
	for _, r := range replies {
		what, opts := Render(r)
		if err := c.Send(what, opts...); err != nil {
			return fmt.Errorf("failed to send reply: %w", err)
		}
	}
	return nil
}
