package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Mail transports.
const (
	MailLog   = "log"
	MailSMTP  = "smtp"
	MailQueue = "queue"
)

// Config is read from ACCOUNTS_* environment variables.
type Config struct {
	Issuer string `envconfig:"ISSUER" default:"accounts"`
	Port   int    `envconfig:"PORT" default:"8080"`
	Env    string `envconfig:"ENV" default:"dev"`

	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseDSN    string `envconfig:"DATABASE_DSN" default:"file:accounts.db"`

	PepperFile     string `envconfig:"PEPPER_FILE" default:"data/pepper"`
	SigningKeyFile string `envconfig:"SIGNING_KEY_FILE"` // empty: ephemeral keys

	TokenTTL             time.Duration `envconfig:"TOKEN_TTL" default:"15m"`
	ResetTTL             time.Duration `envconfig:"RESET_TTL" default:"24h"`
	HousekeepingInterval time.Duration `envconfig:"HOUSEKEEPING_INTERVAL" default:"1h"`
	ShutdownGracePeriod  time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	AllowedHosts []string `envconfig:"ALLOWED_HOSTS"`

	MailTransport   string        `envconfig:"MAIL_TRANSPORT" default:"log"`
	MailSendTimeout time.Duration `envconfig:"MAIL_SEND_TIMEOUT" default:"30s"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"no-reply@accounts.local"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// MailWorker runs the queue consumer in this process when the queue
	// transport is selected.
	MailWorker            bool `envconfig:"MAIL_WORKER" default:"true"`
	MailWorkerConcurrency int  `envconfig:"MAIL_WORKER_CONCURRENCY" default:"2"`
}

// LoadConfig reads and validates configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("ACCOUNTS", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn must be provided"))
	}

	switch c.MailTransport {
	case MailLog:
	case MailSMTP:
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("smtp host must be provided for the smtp transport"))
		}
	case MailQueue:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis address must be provided for the queue transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mail transport %q", c.MailTransport))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.ResetTTL <= 0 {
		errs = append(errs, errors.New("reset ttl must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool { return c.Env == "prod" || c.Env == "production" }
