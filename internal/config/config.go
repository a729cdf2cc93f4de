package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken        string
	DatabasePath    string
	Host            string
	Port            string
	CSRFSecret      string
	CookieDomain    string
	PublicURL       string
	LogLevel        string
	LogFormat       string
	CleanupSchedule string
	TelegramPolling bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	c := &Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		DatabasePath:    os.Getenv("DATABASE_PATH"),
		Host:            os.Getenv("HOST"),
		Port:            os.Getenv("PORT"),
		CSRFSecret:      os.Getenv("CSRF_SECRET"),
		CookieDomain:    os.Getenv("COOKIE_DOMAIN"),
		PublicURL:       os.Getenv("PUBLIC_URL"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogFormat:       os.Getenv("LOG_FORMAT"),
		CleanupSchedule: os.Getenv("SESSION_CLEANUP_SCHEDULE"),
		TelegramPolling: os.Getenv("TELEGRAM_POLLING") != "false",
	}

	if c.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "./hireloop.db"
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == "" {
		c.Port = "3000"
	}
	if c.CSRFSecret == "" {
		return nil, fmt.Errorf("CSRF_SECRET is required")
	}
	if c.PublicURL == "" {
		c.PublicURL = "http://localhost:" + c.Port
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.CleanupSchedule == "" {
		c.CleanupSchedule = "@hourly"
	}

	return c, nil
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
