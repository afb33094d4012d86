package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/IT-Nick/quizbot/internal/app/dialog"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/answer_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/callback_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/cancel_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/start_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/text_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/who_page_handler"
	"github.com/IT-Nick/quizbot/internal/app/middleware"
	accessService "github.com/IT-Nick/quizbot/internal/domain/access/service"
	attemptsService "github.com/IT-Nick/quizbot/internal/domain/attempts/service"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	reportsService "github.com/IT-Nick/quizbot/internal/domain/reports/service"
	testsService "github.com/IT-Nick/quizbot/internal/domain/tests/service"
	usersService "github.com/IT-Nick/quizbot/internal/domain/users/service"
	"github.com/IT-Nick/quizbot/internal/infra/config"
	"github.com/IT-Nick/quizbot/internal/infra/pdf"
	"github.com/IT-Nick/quizbot/internal/infra/session"
	"github.com/IT-Nick/quizbot/internal/infra/timer"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v4"
)

const shutdownTimeout = 10 * time.Second

type Services struct {
	users    *usersService.UserService
	access   *accessService.AccessService
	tests    *testsService.TestService
	attempts *attemptsService.AttemptService
	reports  *reportsService.ReportService
	messages *msgService.MessageService
}

type App struct {
	config   *config.Config
	bot      *telebot.Bot
	storage  *storage
	server   *http.Server
	sessions session.Store
	renderer *pdf.Renderer
	dialog   *dialog.Dialog

	Services
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := InitDatabase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sessions, err := session.NewStore(ctx, session.Options{
		Backend:   cfg.Session.Backend,
		Path:      cfg.Session.Path,
		RedisAddr: cfg.Session.RedisAddr,
		TTL:       cfg.Session.TTL,
	})
	if err != nil {
		db.close()
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	app := &App{
		config:   cfg,
		storage:  db,
		sessions: sessions,
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Функция для инициализации сервисов и репозиториев
func (app *App) initServices() error {
	messages, err := msgService.NewMessageService(app.config.MessagesPath)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	app.messages = messages
	app.users = usersService.NewUserService(app.storage.users)
	app.access = accessService.NewAccessService(app.storage.users, app.config.Admins)
	app.tests = testsService.NewTestService(app.storage.tests)
	app.attempts = attemptsService.NewAttemptService(app.storage.tests, app.storage.attempts, app.storage.users)
	app.reports = reportsService.NewReportService(app.storage.tests, app.storage.attempts)
	app.renderer = pdf.NewRenderer(app.config.Report.FontDir)

	if app.sessions == nil {
		app.sessions = session.NewMemoryStore()
	}
	app.dialog = dialog.New(dialog.Services{
		Users:    app.users,
		Access:   app.access,
		Tests:    app.tests,
		Attempts: app.attempts,
		Reports:  app.reports,
		Messages: app.messages,
	}, app.sessions,
		dialog.WithBotUsername(app.config.TelegramBot.Username),
		dialog.WithPDFRenderer(app.renderer),
	)
	return nil
}

// ListenAndServeTelegram создает бота и регистрирует обработчики, сам бот запускается в Run
func (app *App) ListenAndServeTelegram() error {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  app.config.TelegramBot.Token,
		Poller: newPoller(app.config),
		OnError: func(err error, c telebot.Context) {
			// ошибки обработчиков уже залогированы в middleware.Logger
			ev := log.Debug().Err(err)
			if c != nil {
				ev = ev.Str(middleware.RequestIDKey, middleware.RequestID(c))
			}
			ev.Msg("telegram handler error")
		},
	})
	if err != nil {
		return fmt.Errorf("telebot.NewBot: %w", err)
	}
	app.bot = bot

	app.bootstrapHandlersTelegram()
	return nil
}

// bootstrapHandlersTelegram - регистрирует обработчики для бота
func (app *App) bootstrapHandlersTelegram() {
	app.bot.Use(
		middleware.Recover(),
		middleware.Logger(),
		middleware.DebugUserActions(zerolog.GlobalLevel() <= zerolog.DebugLevel, app.sessions),
	)

	app.bot.Handle("/start", start_handler.NewStartHandler(app.dialog).GetHandlerFunc())
	app.bot.Handle("/cancel", cancel_handler.NewCancelHandler(app.dialog).GetHandlerFunc())

	// ответы на вопросы и страницы "кто решал" приходят через inline-кнопки
	app.bot.Handle(telebot.OnCallback, callback_handler.NewCallbackHandler(
		answer_handler.NewAnswerHandler(app.dialog),
		who_page_handler.NewWhoPageHandler(app.dialog),
	).GetHandlerFunc())

	// меню и шаги форм
	app.bot.Handle(telebot.OnText, text_handler.NewTextHandler(app.dialog).GetHandlerFunc())
}

// notifyExpired сообщает владельцу, что попытка закрыта по таймауту
func (app *App) notifyExpired(_ context.Context, a model.Attempt) {
	if app.bot == nil {
		return
	}
	if _, err := app.bot.Send(&telebot.User{ID: a.TelegramID}, app.dialog.ExpiredNotice(a)); err != nil {
		log.Warn().Err(err).Int64("attempt_id", a.ID).Int64("telegram_id", a.TelegramID).Msg("failed to notify about timeout")
	}
}

// ListenAndServeHTTP запускает HTTP сервер, если задан порт
func (app *App) ListenAndServeHTTP() error {
	if app.server == nil {
		return nil
	}

	log.Info().Str("addr", app.server.Addr).Msg("http api started")
	if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run запускает бота, HTTP API и фоновое закрытие попыток и ждет отмены ctx
func (app *App) Run(ctx context.Context) error {
	const op = "app.Run"

	if err := app.ListenAndServeTelegram(); err != nil {
		return fmt.Errorf("%s: failed to start Telegram bot: %w", op, err)
	}

	if addr := app.config.HTTPAddr(); addr != "" {
		app.server = &http.Server{
			Addr:              addr,
			Handler:           app.httpHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("username", app.bot.Me.Username).Str("mode", app.config.TelegramBot.Mode).Msg("telegram bot started")
		app.bot.Start()
		return nil
	})

	g.Go(func() error {
		if err := app.ListenAndServeHTTP(); err != nil {
			return fmt.Errorf("%s: failed to start HTTP server: %w", op, err)
		}
		return nil
	})

	if interval := app.config.Attempts.SweepInterval; interval > 0 {
		sweeper := timer.NewSweeper(app.attempts, interval, app.config.Attempts.SweepBatch, app.notifyExpired)
		g.Go(func() error {
			sweeper.Run(ctx)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		app.shutdown()
		return nil
	})

	return g.Wait()
}

func (app *App) shutdown() {
	log.Info().Msg("shutting down")
	if app.bot != nil {
		app.bot.Stop()
	}
	if app.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.server.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("http server shutdown failed")
		}
	}
}

// Close освобождает хранилища
func (app *App) Close() {
	if c, ok := app.sessions.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close session store")
		}
	}
	if app.storage != nil {
		app.storage.close()
	}
}
