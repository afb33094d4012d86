package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IT-Nick/quizbot/internal/app"
	"github.com/IT-Nick/quizbot/internal/app/middleware"
	"github.com/IT-Nick/quizbot/internal/infra/config"
	"github.com/IT-Nick/quizbot/internal/infra/deeplink"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "путь к YAML-конфигурации")
	issueToken := flag.Int64("issue-token", 0, "выпустить JWT для HTTP API на указанный telegram id и выйти")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "срок жизни токена для -issue-token, 0 без срока")
	importBank := flag.String("import", "", "создать тест из банка вопросов (YAML или JSON) и выйти")
	importTitle := flag.String("title", "", "название теста для -import")
	importDuration := flag.Int("duration", 10, "время на тест в минутах для -import")
	importCount := flag.Int("count", 10, "сколько вопросов взять из банка для -import")
	importAuthor := flag.Int64("author", 0, "telegram id администратора, от имени которого создается тест")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config.LoadConfig: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Pretty); err != nil {
		fmt.Fprintf(os.Stderr, "logger.Init: %v\n", err)
		os.Exit(1)
	}

	if *issueToken != 0 {
		token, err := middleware.IssueToken(cfg.Server.JWTSecret, *issueToken, *tokenTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to issue token")
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("app starting")

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init app")
	}

	if *importBank != "" {
		test, err := application.ImportTest(ctx, app.ImportRequest{
			BankPath:        *importBank,
			Title:           *importTitle,
			DurationMinutes: *importDuration,
			QuestionCount:   *importCount,
			AuthorID:        *importAuthor,
		}, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
		application.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("import failed")
		}
		fmt.Println(deeplink.Link(cfg.TelegramBot.Username, test.PublicID))
		return
	}

	err = application.Run(ctx)
	application.Close()
	if err != nil {
		log.Error().Err(err).Msg("app stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("app stopped")
}
