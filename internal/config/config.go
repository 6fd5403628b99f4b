package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("telegram bot token not set (TELEGRAM_BOT_TOKEN or keychain)")

type Config struct {
	Telegram Telegram `mapstructure:"telegram"`
	Log      Log      `mapstructure:"log"`
	Rules    Rules    `mapstructure:"rules"`
}

type Telegram struct {
	BotToken       string        `mapstructure:"bot_token"`
	APIEndpoint    string        `mapstructure:"api_endpoint"`
	AllowedChatIDs []int64       `mapstructure:"allowed_chat_ids"`
	MaxMessageAge  time.Duration `mapstructure:"max_message_age"`
	Debug          bool          `mapstructure:"debug"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Rules struct {
	Path          string        `mapstructure:"path"`
	WatchInterval time.Duration `mapstructure:"watch_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.api_endpoint", tgbotapi.APIEndpoint)
	v.SetDefault("telegram.allowed_chat_ids", []int64{})
	v.SetDefault("telegram.max_message_age", time.Duration(0))
	v.SetDefault("telegram.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("rules.path", "")
	v.SetDefault("rules.watch_interval", 5*time.Second)
}

// Load reads configuration from the environment and, when path is not
// empty, from a YAML file. Environment variables win over the file;
// "telegram.bot_token" maps to TELEGRAM_BOT_TOKEN.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Telegram.BotToken = strings.TrimSpace(cfg.Telegram.BotToken)
	return &cfg, nil
}

// ResolveToken returns the configured bot token, falling back to lookup
// (normally the system keychain). It fails if neither yields a token.
func (c *Config) ResolveToken(lookup func() (string, error)) (string, error) {
	if c.Telegram.BotToken != "" {
		return c.Telegram.BotToken, nil
	}
	if lookup == nil {
		return "", ErrMissingToken
	}

	token, err := lookup()
	if err != nil {
		return "", fmt.Errorf("%w: keychain: %v", ErrMissingToken, err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
