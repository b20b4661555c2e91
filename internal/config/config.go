package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	MailTransportQueue = "queue"
	MailTransportSMTP  = "smtp"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	Storage    `yaml:"storage"`
	Tokens     `yaml:"tokens"`
	Cookies    `yaml:"cookies"`
	CORS       `yaml:"cors"`
	Frontend   `yaml:"frontend"`
	Mail       `yaml:"mail"`
	RabbitMQ   `yaml:"rabbitmq"`
	Postgres   `yaml:"postgres"`
	Redis      `yaml:"redis"`
	S3         `yaml:"s3"`
	HTTPServer `yaml:"http_server"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout        time.Duration `yaml:"timeout" env-default:"4s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// WriteTimeout leaves Timeout for writing the response after the
// handler has used its whole RequestTimeout.
func (h HTTPServer) WriteTimeout() time.Duration {
	return h.RequestTimeout + h.Timeout
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"postgres"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
	Migrate  bool   `yaml:"migrate" env:"POSTGRES_MIGRATE" env-default:"true"`
}

// Redis is optional: an empty address disables the profile cache.
type Redis struct {
	Address  string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"1m"`
}

type Tokens struct {
	AccessTokenSecret  string        `yaml:"access_token_secret" env:"ACCESS_TOKEN_SECRET" env-required:"true"`
	RefreshTokenSecret string        `yaml:"refresh_token_secret" env:"REFRESH_TOKEN_SECRET" env-required:"true"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl" env-default:"15m"`
	RefreshTokenTTL    time.Duration `yaml:"refresh_token_ttl" env-default:"240h"`
	ResetTokenTTL      time.Duration `yaml:"reset_token_ttl" env-default:"10m"`
}

type Cookies struct {
	Secure   bool   `yaml:"secure" env:"COOKIE_SECURE" env-default:"false"`
	SameSite string `yaml:"same_site" env:"COOKIE_SAME_SITE" env-default:"lax"`
	Domain   string `yaml:"domain" env:"COOKIE_DOMAIN"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
}

type Frontend struct {
	ResetPasswordURL string `yaml:"reset_password_url" env:"RESET_PASSWORD_URL" env-default:"http://localhost:5173/reset-password"`
}

type Mail struct {
	Transport string `yaml:"transport" env:"MAIL_TRANSPORT" env-default:"queue"`
	Host      string `yaml:"host" env:"SMTP_HOST"`
	Port      int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username  string `yaml:"username" env:"SMTP_USER"`
	Password  string `yaml:"password" env:"SMTP_PASSWORD"`
	From      string `yaml:"from" env:"SMTP_FROM"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env:"RABBITMQ_URL"`
	QueueName string `yaml:"queue_name" env:"RABBITMQ_QUEUE" env-default:"emails"`
}

// S3 is optional: an empty bucket disables avatar and cover uploads.
type S3 struct {
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	Region    string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	PublicURL string `yaml:"public_url" env:"S3_PUBLIC_URL"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
}

// MustLoad reads the config file pointed to by CONFIG_PATH,
// falling back to defaultPath.
func MustLoad(defaultPath string) *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to read config: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPServer.Timeout <= 0 || c.HTTPServer.RequestTimeout <= 0 {
		return fmt.Errorf("http_server timeouts must be positive")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.User == "" || c.Postgres.DBName == "" {
			return fmt.Errorf("postgres user and dbname are required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Mail.Transport {
	case MailTransportQueue:
		if c.RabbitMQ.URL == "" {
			return fmt.Errorf("rabbitmq url is required for queue mail transport")
		}
	case MailTransportSMTP:
		if c.Mail.Host == "" {
			return fmt.Errorf("smtp host is required for smtp mail transport")
		}
	default:
		return fmt.Errorf("unknown mail transport %q", c.Mail.Transport)
	}

	if c.Tokens.AccessTokenSecret == c.Tokens.RefreshTokenSecret {
		return fmt.Errorf("access and refresh token secrets must differ")
	}

	return nil
}
