package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	reportsService "github.com/IT-Nick/quizbot/internal/domain/reports/service"
	"github.com/IT-Nick/quizbot/internal/infra/pdf"
)

const dateLayout = "02.01.2006 15:04"

// WhoSolvedData callback data кнопки страницы: who:{publicID}:{page}:{size}
func WhoSolvedData(publicID string, page, size int) string {
	return fmt.Sprintf("%s:%s:%d:%d", model.WhoSolvedCallbackPrefix, publicID, page, size)
}

// ParseWhoSolvedData разбирает callback data кнопки страницы
func ParseWhoSolvedData(data string) (publicID string, page, size int, err error) {
	parts := strings.Split(data, ":")
	if len(parts) != 4 || parts[0] != model.WhoSolvedCallbackPrefix || parts[1] == "" {
		return "", 0, 0, model.Invalidf("invalid who solved callback %q", data)
	}
	page, err = strconv.Atoi(parts[2])
	if err != nil || page < 0 {
		return "", 0, 0, model.Invalidf("invalid page in callback %q", data)
	}
	size, err = strconv.Atoi(parts[3])
	if err != nil || size < 1 {
		return "", 0, 0, model.Invalidf("invalid page size in callback %q", data)
	}
	return parts[1], page, size, nil
}

func (d *Dialog) statusLabel(s model.AttemptStatus) string {
	if s == model.StatusTimeout {
		return d.Messages.Text(msgService.StatusTimeout)
	}
	return d.Messages.Text(msgService.StatusFinished)
}

func (d *Dialog) myResults(ctx context.Context, callerID int64) ([]Reply, error) {
	if err := d.clear(ctx, callerID); err != nil {
		return nil, err
	}
	results, err := d.Reports.ListMyResults(ctx, callerID, reportsService.DefaultMyResultsLimit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []Reply{d.text(msgService.MyResultsEmpty)}, nil
	}

	lines := []string{d.Messages.Text(msgService.MyResultsHeader)}
	for _, r := range results {
		lines = append(lines, d.Messages.Text(msgService.MyResultsRow,
			r.TestPublicID, r.Score, r.Total, r.Percent, r.TimeSpentSec, d.statusLabel(r.Status)))
	}
	return []Reply{{Text: strings.Join(lines, "\n")}}, nil
}

func (d *Dialog) listTests(ctx context.Context, callerID int64) ([]Reply, error) {
	if err := d.clear(ctx, callerID); err != nil {
		return nil, err
	}
	replies, ok, err := d.requirePrivileged(ctx, callerID)
	if !ok || err != nil {
		return replies, err
	}

	tests, err := d.Tests.ListTests(ctx, TestsListLimit)
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return []Reply{d.text(msgService.TestsEmpty)}, nil
	}

	lines := []string{d.Messages.Text(msgService.TestsHeader)}
	for _, t := range tests {
		state := d.Messages.Text(msgService.TestActive)
		if !t.IsActive {
			state = d.Messages.Text(msgService.TestInactive)
		}
		lines = append(lines, d.Messages.Text(msgService.TestsRow,
			t.PublicID, t.Title, t.DurationSec/60, t.QuestionCount, state))
	}
	return []Reply{{Text: strings.Join(lines, "\n")}}, nil
}

// whoSolved страница "кто решал". fromForm: ввод id из формы, при ошибке форма остается.
func (d *Dialog) whoSolved(ctx context.Context, callerID int64, publicID string, page int, fromForm bool) ([]Reply, error) {
	replies, ok, err := d.requirePrivileged(ctx, callerID)
	if !ok || err != nil {
		return replies, err
	}

	p, err := d.Reports.WhoSolvedPage(ctx, publicID, page, WhoSolvedPageSize)
	switch {
	case errors.Is(err, model.ErrTestNotFound):
		return []Reply{d.text(msgService.TestNotFound)}, nil
	case errors.Is(err, model.ErrInvalidInput):
		return []Reply{d.text(msgService.Unknown)}, nil
	case err != nil:
		return nil, err
	}

	if fromForm {
		if err := d.clear(ctx, callerID); err != nil {
			return nil, err
		}
	}
	return []Reply{d.renderWhoSolved(p)}, nil
}

func (d *Dialog) renderWhoSolved(p reportsService.WhoSolvedPage) Reply {
	if len(p.Results) == 0 && p.Page == 0 {
		return d.text(msgService.WhoEmpty, p.Test.PublicID)
	}

	lines := []string{d.Messages.Text(msgService.WhoHeader, p.Test.PublicID, p.Page+1)}
	for _, r := range p.Results {
		finished := ""
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format(dateLayout)
		}
		lines = append(lines, d.Messages.Text(msgService.WhoRow,
			r.UserName, r.TelegramID, r.Score, r.Total, r.Percent, r.TimeSpentSec, finished))
	}

	reply := Reply{Text: strings.Join(lines, "\n")}
	if p.Page > 0 || p.HasNext {
		reply.Paging = &Paging{
			PublicID: p.Test.PublicID,
			Page:     p.Page,
			Size:     p.PageSize,
			HasPrev:  p.Page > 0,
			HasNext:  p.HasNext,
		}
	}
	return reply
}

// WhoSolvedPage обрабатывает кнопки листания "кто решал"
func (d *Dialog) WhoSolvedPage(ctx context.Context, callerID int64, data string) ([]Reply, error) {
	publicID, page, _, err := ParseWhoSolvedData(data)
	if err != nil {
		return []Reply{d.text(msgService.Unknown)}, nil
	}
	return d.whoSolved(ctx, callerID, publicID, page, false)
}

func (d *Dialog) exportPDF(ctx context.Context, callerID int64, publicID string) ([]Reply, error) {
	replies, ok, err := d.requirePrivileged(ctx, callerID)
	if !ok || err != nil {
		return replies, err
	}

	test, err := d.Tests.GetTest(ctx, publicID)
	switch {
	case errors.Is(err, model.ErrTestNotFound):
		return []Reply{d.text(msgService.TestNotFound)}, nil
	case err != nil:
		return nil, err
	}

	results, err := d.Reports.ListWhoSolved(ctx, test.PublicID, reportsService.MaxLimit)
	if err != nil {
		return nil, err
	}
	data, err := d.pdf.WhoSolvedReport(test, results, d.now())
	if err != nil {
		return nil, err
	}

	if err := d.clear(ctx, callerID); err != nil {
		return nil, err
	}
	return []Reply{{Document: &File{
		Name:    pdf.FileName(test.PublicID),
		Data:    data,
		Caption: d.Messages.Text(msgService.ExportCaption, test.PublicID),
	}}}, nil
}
