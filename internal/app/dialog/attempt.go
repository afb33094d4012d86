package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	attemptsService "github.com/IT-Nick/quizbot/internal/domain/attempts/service"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
)

// AnswerData callback data кнопки варианта: ans:{attemptID}:{index}:{letter}
func AnswerData(attemptID int64, orderIndex int, letter string) string {
	return fmt.Sprintf("%s:%d:%d:%s", model.AnswerCallbackPrefix, attemptID, orderIndex, letter)
}

// ParseAnswerData разбирает callback data кнопки варианта
func ParseAnswerData(data string) (attemptID int64, orderIndex int, letter string, err error) {
	parts := strings.Split(data, ":")
	if len(parts) != 4 || parts[0] != model.AnswerCallbackPrefix {
		return 0, 0, "", model.Invalidf("invalid answer callback %q", data)
	}
	attemptID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, "", model.Invalidf("invalid attempt id in callback %q", data)
	}
	orderIndex, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, "", model.Invalidf("invalid question index in callback %q", data)
	}
	return attemptID, orderIndex, parts[3], nil
}

// startAttempt начинает попытку. keepStep оставляет форму ввода id, если тест не найден.
func (d *Dialog) startAttempt(ctx context.Context, callerID int64, publicID string, keepStep bool) ([]Reply, error) {
	started, err := d.Attempts.StartAttempt(ctx, publicID, callerID)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		if err := d.clear(ctx, callerID); err != nil {
			return nil, err
		}
		return d.withMenu(ctx, callerID, d.text(msgService.NeedRegister))
	case errors.Is(err, model.ErrTestNotFound):
		if keepStep {
			return []Reply{d.text(msgService.TakeNotFound)}, nil
		}
		return d.withMenu(ctx, callerID, d.text(msgService.TakeNotFound))
	case errors.Is(err, model.ErrEmptyTest), errors.Is(err, model.ErrQuestionNotFound):
		if err := d.clear(ctx, callerID); err != nil {
			return nil, err
		}
		return d.withMenu(ctx, callerID, d.text(msgService.TakeEmpty))
	case err != nil:
		return nil, err
	}

	if err := d.clear(ctx, callerID); err != nil {
		return nil, err
	}

	a := started.Attempt
	return []Reply{
		d.text(msgService.TakeStarted, started.Test.Title, a.Total, started.Test.DurationSec/60),
		d.questionReply(a.ID, started.First, a.Total),
	}, nil
}

func (d *Dialog) questionReply(attemptID int64, q model.Question, total int) Reply {
	return Reply{
		Text: d.Messages.Text(msgService.Question, q.OrderIndex, total, q.Text,
			q.Options[0], q.Options[1], q.Options[2], q.Options[3]),
		Question: &QuestionPrompt{AttemptID: attemptID, OrderIndex: q.OrderIndex, Total: total},
	}
}

func (d *Dialog) resultReply(ctx context.Context, callerID int64, a model.Attempt) ([]Reply, error) {
	key := msgService.Finished
	if a.Status == model.StatusTimeout {
		key = msgService.Timeout
	}
	return d.withMenu(ctx, callerID, d.text(key, a.Score, a.Total, a.Percent, a.TimeSpentSec))
}

// Answer обрабатывает нажатие кнопки варианта ответа
func (d *Dialog) Answer(ctx context.Context, callerID int64, data string) (AnswerResult, error) {
	attemptID, orderIndex, letter, err := ParseAnswerData(data)
	if err != nil {
		return AnswerResult{Toast: d.Messages.Text(msgService.InvalidLetter)}, nil
	}

	out, err := d.Attempts.SubmitAnswer(ctx, attemptID, orderIndex, letter, callerID)
	switch {
	case errors.Is(err, model.ErrAlreadyAnswered):
		return AnswerResult{Toast: d.Messages.Text(msgService.AlreadyAnswered), Close: true}, nil
	case errors.Is(err, model.ErrAttemptClosed):
		return AnswerResult{Toast: d.Messages.Text(msgService.AttemptClosed), Close: true}, nil
	case errors.Is(err, model.ErrForbidden):
		return AnswerResult{Toast: d.Messages.Text(msgService.AttemptForbidden)}, nil
	case errors.Is(err, model.ErrInvalidInput):
		return AnswerResult{Toast: d.Messages.Text(msgService.InvalidLetter)}, nil
	case errors.Is(err, model.ErrNotFound):
		return AnswerResult{Toast: d.Messages.Text(msgService.QuestionNotFound)}, nil
	case err != nil:
		return AnswerResult{}, err
	}

	res := AnswerResult{Toast: d.Messages.Text(msgService.AnswerAccepted), Close: true}
	if out.Kind == attemptsService.OutcomeTimeout {
		res.Toast = d.Messages.Text(msgService.AnswerLate)
	}
	switch out.Kind {
	case attemptsService.OutcomeNext:
		res.Replies = []Reply{d.questionReply(out.Attempt.ID, *out.Next, out.Attempt.Total)}
	default:
		replies, err := d.resultReply(ctx, callerID, out.Attempt)
		if err != nil {
			return AnswerResult{}, err
		}
		res.Replies = replies
	}
	return res, nil
}
