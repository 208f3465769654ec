package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Server struct {
		Port string `env:"PORT" envDefault:"5250"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

		// gin mode: debug, release or test
		Mode string `env:"GIN_MODE" envDefault:"release"`

		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	}

	Database struct {
		// sqlite or postgres
		Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
		DSN    string `env:"DB_DSN" envDefault:"database/studentnest.db"`
	}

	Auth struct {
		// Required; tokens signed with any other secret are rejected
		JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
		TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"24h"`

		// Staff accounts may act on bookings and inquiries they are not a party to
		AdminOverride bool `env:"AUTH_ADMIN_OVERRIDE" envDefault:"true"`
	}

	Lifecycle struct {
		// Reject out-of-order transitions such as pending -> completed
		StrictTransitions bool `env:"BOOKING_STRICT_TRANSITIONS" envDefault:"false"`
	}

	Notifications struct {
		// Number of notification batches buffered before pushes are rejected
		QueueSize int `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`

		// Maximum number of retries for a failed batch write
		MaxRetries int `env:"NOTIFY_MAX_RETRIES" envDefault:"2"`

		// Delay between retries in milliseconds
		RetryDelay int `env:"NOTIFY_RETRY_DELAY_MS" envDefault:"200"`

		TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
		TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`

		RedisAddr    string `env:"REDIS_ADDR"`
		RedisChannel string `env:"REDIS_CHANNEL" envDefault:"studentnest.notifications"`
	}

	Geocoding struct {
		// Fill in coordinates for listings created without them
		Enabled  bool   `env:"GEOCODER_ENABLED" envDefault:"false"`
		BaseURL  string `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org"`
		CacheDir string `env:"GEOCODER_CACHE_DIR" envDefault:"cache"`
	}

	Search struct {
		PageSize    int `env:"SEARCH_PAGE_SIZE" envDefault:"12"`
		MaxPageSize int `env:"SEARCH_MAX_PAGE_SIZE" envDefault:"100"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RetryDelayDuration returns the notification retry delay as a time.Duration
func (c *Config) RetryDelayDuration() time.Duration {
	return time.Duration(c.Notifications.RetryDelay) * time.Millisecond
}
