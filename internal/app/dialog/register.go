package dialog

import (
	"context"
	"errors"

	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	usersService "github.com/IT-Nick/quizbot/internal/domain/users/service"
	"github.com/IT-Nick/quizbot/internal/infra/session"
)

// noPhone ответ, которым пользователь пропускает телефон
const noPhone = "0"

func (d *Dialog) registerName(ctx context.Context, callerID int64, st session.State, text string) ([]Reply, error) {
	name, err := usersService.ValidateFullName(text)
	if err != nil {
		return []Reply{d.text(msgService.RegisterBadName)}, nil
	}
	st.FullName = name
	if err := d.setStep(ctx, callerID, st, session.StepRegisterPhone); err != nil {
		return nil, err
	}
	return []Reply{d.text(msgService.RegisterAskPhone)}, nil
}

func (d *Dialog) registerPhone(ctx context.Context, callerID int64, st session.State, text string) ([]Reply, error) {
	var phone *string
	if text != noPhone && text != "" {
		phone = &text
	}

	user, err := d.Users.Register(ctx, callerID, st.FullName, phone)
	switch {
	case errors.Is(err, model.ErrAlreadyRegistered):
		if err := d.clear(ctx, callerID); err != nil {
			return nil, err
		}
		return d.withMenu(ctx, callerID, d.text(msgService.RegisterAlready))
	case errors.Is(err, model.ErrInvalidInput):
		if err := d.setStep(ctx, callerID, session.State{}, session.StepRegisterName); err != nil {
			return nil, err
		}
		return []Reply{d.text(msgService.RegisterBadName)}, nil
	case err != nil:
		return nil, err
	}

	if err := d.clear(ctx, callerID); err != nil {
		return nil, err
	}
	return d.withMenu(ctx, callerID, d.text(msgService.RegisterDone, user.FullName))
}
