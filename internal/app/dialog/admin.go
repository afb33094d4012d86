package dialog

import (
	"context"
	"errors"
	"strconv"

	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
)

// changeAdmin выдает (grant) или снимает права администратора по telegram id
func (d *Dialog) changeAdmin(ctx context.Context, callerID int64, text string, grant bool) ([]Reply, error) {
	targetID, err := strconv.ParseInt(text, 10, 64)
	if err != nil || targetID <= 0 {
		return []Reply{d.text(msgService.AdminBadID)}, nil
	}

	if grant {
		_, err = d.Access.GrantAdmin(ctx, callerID, targetID)
	} else {
		_, err = d.Access.RevokeAdmin(ctx, callerID, targetID)
	}

	var reply Reply
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		reply = d.text(msgService.AdminUserNotFound, targetID)
	case errors.Is(err, model.ErrForbidden):
		reply = d.text(msgService.Forbidden)
		if !grant && d.Access.IsConfiguredAdmin(targetID) {
			reply = d.text(msgService.AdminConfigured)
		}
	case err != nil:
		return nil, err
	case grant:
		reply = d.text(msgService.AdminGranted, targetID)
	default:
		reply = d.text(msgService.AdminRevoked, targetID)
	}

	if err := d.clear(ctx, callerID); err != nil {
		return nil, err
	}
	return d.withMenu(ctx, callerID, reply)
}
