package app

import (
	"github.com/IT-Nick/quizbot/internal/infra/config"
	"gopkg.in/telebot.v4"
)

// newPoller создает Poller в зависимости от режима
func newPoller(cfg *config.Config) telebot.Poller {
	if cfg.TelegramBot.Mode == config.ModeWebhook {
		return &telebot.Webhook{
			Listen: cfg.TelegramBot.ListenAddr,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: cfg.TelegramBot.WebhookURL,
			},
		}
	}
	return &telebot.LongPoller{Timeout: cfg.TelegramBot.PollTimeout}
}
