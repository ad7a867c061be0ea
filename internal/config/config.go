package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string         `yaml:"discord_token"`
	DatabasePath  string         `yaml:"database_path"`
	RedisAddr     string         `yaml:"redis_addr"`
	LogLevel      string         `yaml:"log_level"`
	Health        HealthConfig   `yaml:"health"`
	AntiSpam      AntiSpamConfig `yaml:"antispam"`
	Timers        TimerConfig    `yaml:"timers"`
	Notifications NotifyConfig   `yaml:"notifications"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// AntiSpamConfig holds the global defaults; guilds may override the
// cooldown pair and the mute length through their settings rows.
type AntiSpamConfig struct {
	MessageRate            int `yaml:"message_rate"`
	CooldownSeconds        int `yaml:"cooldown_seconds"`
	MuteMinutes            int `yaml:"mute_minutes"`
	RedirectTimeoutSeconds int `yaml:"redirect_timeout_seconds"`
	ReloadMinutes          int `yaml:"reload_minutes"`
	BucketCacheSize        int `yaml:"bucket_cache_size"`
}

type TimerConfig struct {
	MaxWaitHours int `yaml:"max_wait_hours"`
}

type NotifyConfig struct {
	DMOnMute    bool        `yaml:"dm_on_mute"`
	EmbedColors EmbedColors `yaml:"embed_colors"`
}

type EmbedColors struct {
	Action  int `yaml:"action"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath: "/data/sweeper.db",
		LogLevel:     "info",
		Health:       HealthConfig{Enabled: false, Addr: ":8080"},
		AntiSpam: AntiSpamConfig{
			MessageRate:            5,
			CooldownSeconds:        10,
			MuteMinutes:            60,
			RedirectTimeoutSeconds: 10,
			ReloadMinutes:          10,
			BucketCacheSize:        4096,
		},
		Timers: TimerConfig{MaxWaitHours: 24},
		Notifications: NotifyConfig{
			DMOnMute: true,
			EmbedColors: EmbedColors{
				Action:  0x1BA8F1,
				Warning: 0xEF4444,
				Error:   0xF97316,
			},
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.AntiSpam.MessageRate <= 0 || cfg.AntiSpam.CooldownSeconds <= 0 {
		return Config{}, errors.New("antispam message_rate and cooldown_seconds must be positive")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.RedisAddr = envString("REDIS_ADDR", cfg.RedisAddr)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.AntiSpam.MessageRate = envInt("ANTISPAM_MESSAGE_RATE", cfg.AntiSpam.MessageRate)
	cfg.AntiSpam.CooldownSeconds = envInt("ANTISPAM_COOLDOWN_SECONDS", cfg.AntiSpam.CooldownSeconds)
	cfg.AntiSpam.MuteMinutes = envInt("ANTISPAM_MUTE_MINUTES", cfg.AntiSpam.MuteMinutes)
	cfg.AntiSpam.RedirectTimeoutSeconds = envInt("ANTISPAM_REDIRECT_TIMEOUT_SECONDS", cfg.AntiSpam.RedirectTimeoutSeconds)
	cfg.AntiSpam.ReloadMinutes = envInt("ANTISPAM_RELOAD_MINUTES", cfg.AntiSpam.ReloadMinutes)
	cfg.AntiSpam.BucketCacheSize = envInt("ANTISPAM_BUCKET_CACHE_SIZE", cfg.AntiSpam.BucketCacheSize)
	cfg.Timers.MaxWaitHours = envInt("TIMER_MAX_WAIT_HOURS", cfg.Timers.MaxWaitHours)
	cfg.Notifications.DMOnMute = envBool("DM_ON_MUTE", cfg.Notifications.DMOnMute)
	cfg.Notifications.EmbedColors.Action = envInt("EMBED_COLOR_ACTION", cfg.Notifications.EmbedColors.Action)
	cfg.Notifications.EmbedColors.Warning = envInt("EMBED_COLOR_WARNING", cfg.Notifications.EmbedColors.Warning)
	cfg.Notifications.EmbedColors.Error = envInt("EMBED_COLOR_ERROR", cfg.Notifications.EmbedColors.Error)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
