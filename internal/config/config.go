package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

var ErrEmptyStoragePath = errors.New(
	"error getting PP_STORAGE_PATH: variable not specified or contains an empty string")

type Config struct {
	Env          string // Env is the current environment: local, dev, prod.
	StoragePath  string // StoragePath is the path to the sqlite product database.
	TemplatePath string // TemplatePath is the shared page template file.
	OutputDir    string // OutputDir is where generated documents are written.
	Tg           Telegram
}

type Telegram struct {
	Token   string        // Token is a telegram bot token; empty disables the bot.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

// MustLoad loads the configuration from environment variables and returns a Config struct.
func MustLoad() *Config {
	// Automatically binds environment variables to config keys
	viper.SetEnvPrefix("PP")
	viper.AutomaticEnv()

	// optional args
	viper.SetDefault("ENV", "production")
	viper.SetDefault("TEMPLATE_PATH", "template.html")
	viper.SetDefault("OUTPUT_DIR", "public")
	viper.SetDefault("TELEGRAM_TIMEOUT", "15s")

	if viper.GetString("STORAGE_PATH") == "" {
		panic(ErrEmptyStoragePath)
	}

	return &Config{
		Env:          viper.GetString("ENV"),
		StoragePath:  viper.GetString("STORAGE_PATH"),
		TemplatePath: viper.GetString("TEMPLATE_PATH"),
		OutputDir:    viper.GetString("OUTPUT_DIR"),
		Tg: Telegram{
			Token:   viper.GetString("TELEGRAM_TOKEN"),
			Timeout: viper.GetDuration("TELEGRAM_TIMEOUT"),
		},
	}
}
