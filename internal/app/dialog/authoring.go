package dialog

import (
	"context"
	"errors"
	"strconv"

	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	testsService "github.com/IT-Nick/quizbot/internal/domain/tests/service"
	"github.com/IT-Nick/quizbot/internal/infra/deeplink"
	"github.com/IT-Nick/quizbot/internal/infra/session"
	"github.com/rs/zerolog/log"
)

// requirePrivileged повторная проверка прав на шагах форм: права могли снять посреди формы
func (d *Dialog) requirePrivileged(ctx context.Context, callerID int64) ([]Reply, bool, error) {
	ok, err := d.Access.IsPrivileged(ctx, callerID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		if err := d.clear(ctx, callerID); err != nil {
			return nil, false, err
		}
		replies, err := d.withMenu(ctx, callerID, d.text(msgService.Forbidden))
		return replies, false, err
	}
	return nil, true, nil
}

func (d *Dialog) createTitle(ctx context.Context, callerID int64, st session.State, text string) ([]Reply, error) {
	title, err := testsService.ValidateTitle(text)
	if err != nil {
		return []Reply{d.text(msgService.CreateBadTitle)}, nil
	}
	st.Title = title
	if err := d.setStep(ctx, callerID, st, session.StepCreateDuration); err != nil {
		return nil, err
	}
	return []Reply{d.text(msgService.CreateAskDuration)}, nil
}

func (d *Dialog) createDuration(ctx context.Context, callerID int64, st session.State, text string) ([]Reply, error) {
	minutes, err := strconv.Atoi(text)
	if err != nil || testsService.ValidateDuration(minutes) != nil {
		return []Reply{d.text(msgService.CreateBadDuration)}, nil
	}
	st.DurationMin = minutes
	if err := d.setStep(ctx, callerID, st, session.StepCreateCount); err != nil {
		return nil, err
	}
	return []Reply{d.text(msgService.CreateAskCount)}, nil
}

func (d *Dialog) createCount(ctx context.Context, callerID int64, st session.State, text string) ([]Reply, error) {
	count, err := strconv.Atoi(text)
	if err != nil || testsService.ValidateQuestionCount(count) != nil {
		return []Reply{d.text(msgService.CreateBadCount)}, nil
	}

	replies, ok, err := d.requirePrivileged(ctx, callerID)
	if !ok || err != nil {
		return replies, err
	}

	test, err := d.Tests.CreateTest(ctx, callerID, true, st.Title, st.DurationMin, count)
	if err != nil {
		return nil, err
	}

	st.QuestionTotal = count
	st.TestPublicID = test.PublicID
	st.QuestionIndex = 1
	if err := d.setStep(ctx, callerID, st, session.StepCreateQuestion); err != nil {
		return nil, err
	}
	return []Reply{
		d.text(msgService.CreateCreated, test.PublicID),
		d.text(msgService.CreateAskQuestion, st.QuestionIndex, st.QuestionTotal),
	}, nil
}

func (d *Dialog) createQuestion(ctx context.Context, callerID int64, st session.State, text string) ([]Reply, error) {
	q, err := testsService.ValidateQuestionText(text)
	if err != nil {
		return []Reply{d.text(msgService.CreateBadQuestion)}, nil
	}
	st.QuestionText = q
	st.Options = [4]string{}
	st.OptionIndex = 0
	if err := d.setStep(ctx, callerID, st, session.StepCreateOption); err != nil {
		return nil, err
	}
	return []Reply{d.text(msgService.CreateAskOption, model.Letters[0])}, nil
}

func (d *Dialog) createOption(ctx context.Context, callerID int64, st session.State, text string) ([]Reply, error) {
	opt, err := testsService.ValidateOption(text)
	if err != nil {
		return []Reply{d.text(msgService.CreateBadOption)}, nil
	}
	st.Options[st.OptionIndex] = opt
	st.OptionIndex++

	if st.OptionIndex < len(model.Letters) {
		if err := d.setStep(ctx, callerID, st, session.StepCreateOption); err != nil {
			return nil, err
		}
		return []Reply{d.text(msgService.CreateAskOption, model.Letters[st.OptionIndex])}, nil
	}

	if err := d.setStep(ctx, callerID, st, session.StepCreateCorrect); err != nil {
		return nil, err
	}
	return []Reply{d.text(msgService.CreateAskCorrect)}, nil
}

func (d *Dialog) createCorrect(ctx context.Context, callerID int64, st session.State, text string) ([]Reply, error) {
	letter, ok := model.NormalizeLetter(text)
	if !ok {
		return []Reply{d.text(msgService.CreateBadCorrect)}, nil
	}

	_, err := d.Tests.AddQuestion(ctx, st.TestPublicID, st.QuestionIndex, st.QuestionText, st.Options, letter)
	switch {
	case errors.Is(err, model.ErrTestNotFound):
		// тест удалили, пока шла форма
		if err := d.clear(ctx, callerID); err != nil {
			return nil, err
		}
		return d.withMenu(ctx, callerID, d.text(msgService.TestNotFound))
	case err != nil:
		return nil, err
	}

	if st.QuestionIndex < st.QuestionTotal {
		st.QuestionIndex++
		st.QuestionText = ""
		st.Options = [4]string{}
		st.OptionIndex = 0
		if err := d.setStep(ctx, callerID, st, session.StepCreateQuestion); err != nil {
			return nil, err
		}
		return []Reply{d.text(msgService.CreateAskQuestion, st.QuestionIndex, st.QuestionTotal)}, nil
	}

	if err := d.clear(ctx, callerID); err != nil {
		return nil, err
	}

	link := deeplink.Link(d.botUsername, st.TestPublicID)
	replies, err := d.withMenu(ctx, callerID, d.text(msgService.CreateDone, st.TestPublicID, st.QuestionTotal, link))
	if err != nil {
		return nil, err
	}

	png, err := deeplink.QRCode(link, deeplink.DefaultQRSize)
	if err != nil {
		// ссылка уже отправлена текстом, без QR можно обойтись
		log.Warn().Err(err).Str("public_id", st.TestPublicID).Msg("failed to build qr code")
		return replies, nil
	}
	return append(replies, Reply{Photo: &File{Name: st.TestPublicID + ".png", Data: png, Caption: link}}), nil
}

func (d *Dialog) deleteTest(ctx context.Context, callerID int64, publicID string) ([]Reply, error) {
	replies, ok, err := d.requirePrivileged(ctx, callerID)
	if !ok || err != nil {
		return replies, err
	}

	res, err := d.Tests.DeleteTest(ctx, publicID, callerID, true)
	switch {
	case errors.Is(err, model.ErrTestNotFound):
		return []Reply{d.text(msgService.TestNotFound)}, nil
	case err != nil:
		return nil, err
	}

	if err := d.clear(ctx, callerID); err != nil {
		return nil, err
	}
	return d.withMenu(ctx, callerID, d.text(msgService.DeleteDone,
		model.NormalizePublicID(publicID), res.QuestionsDeleted, res.AttemptsDeleted))
}
