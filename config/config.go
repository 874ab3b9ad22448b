package config

import (
	"log"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is built once in main and handed to the components that need
// it; nothing reads the environment after startup.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"bookline-backend"`

	DatabaseURL string `env:"DB_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`

	// Tenant portals live at {subdomain}.{BaseDomain}.
	BaseDomain string `env:"BASE_DOMAIN" envDefault:"bookline.local"`

	JWTSecret      string `env:"JWT_SECRET"`
	JWTExpiryHours int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	MailHost     string `env:"MAIL_HOST"`
	MailPort     int    `env:"MAIL_PORT" envDefault:"587"`
	MailUsername string `env:"MAIL_USERNAME"`
	MailPassword string `env:"MAIL_PASSWORD"`
	MailFromName string `env:"MAIL_FROM_NAME" envDefault:"Bookline"`
	MailFromAddr string `env:"MAIL_FROM_ADDRESS" envDefault:"no-reply@bookline.local"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `env:"TWILIO_PHONE_NUMBER"`

	// When true the notification transport is skipped and sends are
	// logged with status "simulated".
	SimulateNotifications bool `env:"SIMULATE_NOTIFICATIONS" envDefault:"true"`

	ReminderCronSpec string `env:"REMINDER_CRON" envDefault:"*/15 * * * *"`
	OutboxCronSpec   string `env:"OUTBOX_CRON" envDefault:"* * * * *"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
