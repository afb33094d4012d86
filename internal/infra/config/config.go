package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Режимы получения обновлений Telegram
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Host      string `yaml:"host"`
		Port      string `yaml:"port"`
		JWTSecret string `yaml:"jwt_secret"`
		PublicURL string `yaml:"public_url"`
	} `yaml:"server"`
	TelegramBot struct {
		Token       string        `yaml:"token"`
		Username    string        `yaml:"username"`
		Mode        string        `yaml:"mode"`
		PollTimeout time.Duration `yaml:"poll_timeout"`
		WebhookURL  string        `yaml:"webhook_url"`
		ListenAddr  string        `yaml:"listen_addr"`
	} `yaml:"telegram_bot"`
	Admins   []int64 `yaml:"admins"`
	Database struct {
		Driver   string `yaml:"driver"`
		URL      string `yaml:"url"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"dbname"`
		SSLMode  string `yaml:"sslmode"`
		Path     string `yaml:"path"`
	} `yaml:"database"`
	Session struct {
		Backend   string        `yaml:"backend"`
		Path      string        `yaml:"path"`
		RedisAddr string        `yaml:"redis_addr"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"session"`
	Attempts struct {
		SweepInterval time.Duration `yaml:"sweep_interval"`
		SweepBatch    int           `yaml:"sweep_batch"`
	} `yaml:"attempts"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Report struct {
		FontDir string `yaml:"font_dir"`
	} `yaml:"report"`
	MessagesPath string `yaml:"messages_path"`
}

// LoadConfig читает YAML (если путь задан), затем .env и переменные окружения поверх него
func LoadConfig(filename string) (*Config, error) {
	config := &Config{}

	if filename != "" {
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}

		defer func(f *os.File) {
			err := f.Close()
			if err != nil {
				log.Warn().Err(err).Msg("f.Close() failed")
			}
		}(f)

		if err := yaml.NewDecoder(f).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
		}
	}

	// .env необязателен
	_ = godotenv.Load()

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.TelegramBot.Token, "TELEGRAM_BOT_TOKEN", "BOT_TOKEN")
	setString(&c.TelegramBot.Username, "BOT_USERNAME")
	setString(&c.TelegramBot.Mode, "BOT_MODE")
	setString(&c.TelegramBot.WebhookURL, "WEBHOOK_URL")
	setString(&c.TelegramBot.ListenAddr, "LISTEN_ADDR")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Path, "SQLITE_PATH")
	setString(&c.Server.JWTSecret, "JWT_SECRET")
	setString(&c.Server.Port, "HTTP_PORT")
	setString(&c.Session.Backend, "SESSION_BACKEND")
	setString(&c.Session.RedisAddr, "REDIS_ADDR")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("ADMIN_IDS"); v != "" {
		ids, err := ParseAdminIDs(v)
		if err != nil {
			return err
		}
		c.Admins = ids
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SWEEP_INTERVAL %q: %w", v, err)
		}
		c.Attempts.SweepInterval = d
	}
	return nil
}

// ParseAdminIDs разбирает список telegram id через запятую
func ParseAdminIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Config) setDefaults() {
	if c.TelegramBot.Mode == "" {
		c.TelegramBot.Mode = ModePolling
	}
	if c.TelegramBot.PollTimeout == 0 {
		c.TelegramBot.PollTimeout = 10 * time.Second
	}
	if c.TelegramBot.ListenAddr == "" {
		c.TelegramBot.ListenAddr = ":8443"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Attempts.SweepBatch <= 0 {
		c.Attempts.SweepBatch = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate проверяет обязательные поля и допустимые значения
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramBot.Token == "" {
		errs = append(errs, errors.New("telegram bot token is required (telegram_bot.token or TELEGRAM_BOT_TOKEN)"))
	}
	switch c.TelegramBot.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.TelegramBot.WebhookURL == "" {
			errs = append(errs, errors.New("webhook mode requires telegram_bot.webhook_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown bot mode %q", c.TelegramBot.Mode))
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	switch c.Session.Backend {
	case "memory", "json", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.Session.Backend))
	}
	if c.Server.Port != "" && c.Server.JWTSecret == "" {
		errs = append(errs, errors.New("http server requires server.jwt_secret"))
	}
	if c.Attempts.SweepInterval < 0 {
		errs = append(errs, errors.New("attempts.sweep_interval must not be negative"))
	}
	return errors.Join(errs...)
}

// PostgresDSN строка подключения: url как есть или собранная из полей
func (c *Config) PostgresDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

// HTTPAddr адрес HTTP API, пустой если API выключен
func (c *Config) HTTPAddr() string {
	if c.Server.Port == "" {
		return ""
	}
	return c.Server.Host + ":" + c.Server.Port
}
