package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	accessService "github.com/IT-Nick/quizbot/internal/domain/access/service"
	attemptsService "github.com/IT-Nick/quizbot/internal/domain/attempts/service"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	reportsService "github.com/IT-Nick/quizbot/internal/domain/reports/service"
	testsService "github.com/IT-Nick/quizbot/internal/domain/tests/service"
	usersService "github.com/IT-Nick/quizbot/internal/domain/users/service"
	"github.com/IT-Nick/quizbot/internal/infra/pdf"
	"github.com/IT-Nick/quizbot/internal/infra/session"
)

// Размеры списков в чате
const (
	TestsListLimit    = 20
	WhoSolvedPageSize = 10
)

// Reply одно исходящее сообщение. Транспорт решает, как его отрисовать.
type Reply struct {
	Text string
	// Keyboard основное меню, nil если меню не меняется
	Keyboard [][]string
	Question *QuestionPrompt
	Paging   *Paging
	Document *File
	Photo    *File
}

// QuestionPrompt вопрос попытки, под которым нужны кнопки A-D
type QuestionPrompt struct {
	AttemptID  int64
	OrderIndex int
	Total      int
}

// Paging навигация по страницам "кто решал", Page с нуля
type Paging struct {
	PublicID string
	Page     int
	Size     int
	HasPrev  bool
	HasNext  bool
}

// File вложение, которое нужно отправить документом или фото
type File struct {
	Name    string
	Data    []byte
	Caption string
}

// AnswerResult ответ на нажатие кнопки варианта: всплывающий текст и сообщения в чат
type AnswerResult struct {
	Toast   string
	Replies []Reply
	// Close кнопки под вопросом больше не нужны
	Close bool
}

// Services зависимости диалога
type Services struct {
	Users    *usersService.UserService
	Access   *accessService.AccessService
	Tests    *testsService.TestService
	Attempts *attemptsService.AttemptService
	Reports  *reportsService.ReportService
	Messages *msgService.MessageService
}

// Dialog ведет многошаговые формы поверх доменных сервисов.
// Состояние формы хранится в session.Store, поэтому Dialog можно использовать из разных горутин.
type Dialog struct {
	Services
	sessions    session.Store
	pdf         *pdf.Renderer
	botUsername string
	now         func() time.Time
}

// Option настройка Dialog
type Option func(*Dialog)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(d *Dialog) { d.now = now }
}

// WithBotUsername имя бота для deep link
func WithBotUsername(name string) Option {
	return func(d *Dialog) { d.botUsername = name }
}

// WithPDFRenderer задает генератор PDF-отчетов
func WithPDFRenderer(r *pdf.Renderer) Option {
	return func(d *Dialog) { d.pdf = r }
}

// New создает Dialog
func New(services Services, sessions session.Store, opts ...Option) *Dialog {
	d := &Dialog{
		Services: services,
		sessions: sessions,
		pdf:      pdf.NewRenderer(""),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dialog) text(key string, args ...any) Reply {
	return Reply{Text: d.Messages.Text(key, args...)}
}

func (d *Dialog) setStep(ctx context.Context, callerID int64, st session.State, step session.Step) error {
	st.Step = step
	st.UpdatedAt = d.now()
	if err := d.sessions.Set(ctx, callerID, st); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (d *Dialog) clear(ctx context.Context, callerID int64) error {
	if err := d.sessions.Delete(ctx, callerID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Start команда /start. С payload сразу начинает попытку по публичному id теста.
func (d *Dialog) Start(ctx context.Context, callerID int64, payload string) ([]Reply, error) {
	const op = "dialog.Start"

	if err := d.clear(ctx, callerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if payload = strings.TrimSpace(payload); payload != "" {
		return d.startAttempt(ctx, callerID, payload, false)
	}

	menu, err := d.menu(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	privileged, err := d.Access.IsPrivileged(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reply := d.text(msgService.Welcome)
	if privileged {
		reply = d.text(msgService.WelcomeAdmin)
	}
	reply.Keyboard = menu
	return []Reply{reply}, nil
}

// Cancel команда /cancel, сбрасывает текущую форму
func (d *Dialog) Cancel(ctx context.Context, callerID int64) ([]Reply, error) {
	if err := d.clear(ctx, callerID); err != nil {
		return nil, err
	}
	return d.withMenu(ctx, callerID, d.text(msgService.Cancelled))
}

// HandleText обрабатывает обычное сообщение: кнопку меню или очередной шаг формы.
// Кнопка меню всегда начинает новую форму.
func (d *Dialog) HandleText(ctx context.Context, callerID int64, text string) ([]Reply, error) {
	text = strings.TrimSpace(text)

	if replies, ok, err := d.handleMenu(ctx, callerID, text); ok || err != nil {
		return replies, err
	}

	st, ok, err := d.sessions.Get(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok || st.Step == session.StepIdle {
		return d.withMenu(ctx, callerID, d.text(msgService.Unknown))
	}

	switch st.Step {
	case session.StepRegisterName:
		return d.registerName(ctx, callerID, st, text)
	case session.StepRegisterPhone:
		return d.registerPhone(ctx, callerID, st, text)
	case session.StepTakeTestID:
		return d.startAttempt(ctx, callerID, text, true)
	case session.StepCreateTitle:
		return d.createTitle(ctx, callerID, st, text)
	case session.StepCreateDuration:
		return d.createDuration(ctx, callerID, st, text)
	case session.StepCreateCount:
		return d.createCount(ctx, callerID, st, text)
	case session.StepCreateQuestion:
		return d.createQuestion(ctx, callerID, st, text)
	case session.StepCreateOption:
		return d.createOption(ctx, callerID, st, text)
	case session.StepCreateCorrect:
		return d.createCorrect(ctx, callerID, st, text)
	case session.StepWhoSolvedID:
		return d.whoSolved(ctx, callerID, text, 0, true)
	case session.StepDeleteTestID:
		return d.deleteTest(ctx, callerID, text)
	case session.StepExportTestID:
		return d.exportPDF(ctx, callerID, text)
	case session.StepGrantAdminID:
		return d.changeAdmin(ctx, callerID, text, true)
	case session.StepRevokeAdminID:
		return d.changeAdmin(ctx, callerID, text, false)
	default:
		if err := d.clear(ctx, callerID); err != nil {
			return nil, err
		}
		return d.withMenu(ctx, callerID, d.text(msgService.Unknown))
	}
}

func (d *Dialog) handleMenu(ctx context.Context, callerID int64, text string) ([]Reply, bool, error) {
	var (
		step     session.Step
		ask      string
		need     func(context.Context, int64) (bool, error)
		register bool
	)

	switch text {
	case model.BtnRegister:
		registered, err := d.Users.IsRegistered(ctx, callerID)
		if err != nil {
			return nil, true, err
		}
		if registered {
			replies, err := d.withMenu(ctx, callerID, d.text(msgService.RegisterAlready))
			return replies, true, err
		}
		step, ask = session.StepRegisterName, msgService.RegisterAskName
	case model.BtnTakeTest:
		step, ask, register = session.StepTakeTestID, msgService.TakeAskID, true
	case model.BtnMyResults:
		replies, err := d.myResults(ctx, callerID)
		return replies, true, err
	case model.BtnCreateTest:
		step, ask, need = session.StepCreateTitle, msgService.CreateAskTitle, d.Access.IsPrivileged
	case model.BtnWhoSolved:
		step, ask, need = session.StepWhoSolvedID, msgService.WhoAskID, d.Access.IsPrivileged
	case model.BtnTestsList:
		replies, err := d.listTests(ctx, callerID)
		return replies, true, err
	case model.BtnDeleteTest:
		step, ask, need = session.StepDeleteTestID, msgService.DeleteAskID, d.Access.IsPrivileged
	case model.BtnExportPDF:
		step, ask, need = session.StepExportTestID, msgService.ExportAskID, d.Access.IsPrivileged
	case model.BtnAddAdmin:
		step, ask, need = session.StepGrantAdminID, msgService.AdminAskGrant, d.Access.IsSuperAdmin
	case model.BtnRemoveAdmin:
		step, ask, need = session.StepRevokeAdminID, msgService.AdminAskRevoke, d.Access.IsSuperAdmin
	default:
		return nil, false, nil
	}

	if err := d.clear(ctx, callerID); err != nil {
		return nil, true, err
	}

	if register {
		registered, err := d.Users.IsRegistered(ctx, callerID)
		if err != nil {
			return nil, true, err
		}
		if !registered {
			replies, err := d.withMenu(ctx, callerID, d.text(msgService.NeedRegister))
			return replies, true, err
		}
	}
	if need != nil {
		allowed, err := need(ctx, callerID)
		if err != nil {
			return nil, true, err
		}
		if !allowed {
			return []Reply{d.text(msgService.Forbidden)}, true, nil
		}
	}

	if err := d.setStep(ctx, callerID, session.State{}, step); err != nil {
		return nil, true, err
	}
	return []Reply{d.text(ask)}, true, nil
}

// menu клавиатура по правам пользователя
func (d *Dialog) menu(ctx context.Context, callerID int64) ([][]string, error) {
	registered, err := d.Users.IsRegistered(ctx, callerID)
	if err != nil {
		return nil, err
	}
	privileged, err := d.Access.IsPrivileged(ctx, callerID)
	if err != nil {
		return nil, err
	}
	super, err := d.Access.IsSuperAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if registered {
		rows = append(rows, []string{model.BtnTakeTest, model.BtnMyResults})
	} else {
		rows = append(rows, []string{model.BtnRegister})
	}
	if privileged {
		rows = append(rows,
			[]string{model.BtnCreateTest, model.BtnWhoSolved},
			[]string{model.BtnTestsList, model.BtnDeleteTest},
			[]string{model.BtnExportPDF},
		)
	}
	if super {
		rows = append(rows, []string{model.BtnAddAdmin, model.BtnRemoveAdmin})
	}
	return rows, nil
}

func (d *Dialog) withMenu(ctx context.Context, callerID int64, reply Reply) ([]Reply, error) {
	menu, err := d.menu(ctx, callerID)
	if err != nil {
		return nil, err
	}
	reply.Keyboard = menu
	return []Reply{reply}, nil
}

// ExpiredNotice текст уведомления о попытке, закрытой фоновым таймером
func (d *Dialog) ExpiredNotice(a model.Attempt) string {
	return d.Messages.Text(msgService.TimerExpired, a.Score, a.Total, a.Percent)
}
