package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	Email    EmailConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PaymentConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	// PriceRefs maps gateway subscription price ids to membership tiers.
	PriceRefPar    string
	PriceRefBirdie string
	PriceRefEagle  string
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type AuthConfig struct {
	JWTSecret string
}

type LoggingConfig struct {
	Level string
}

// Load reads configuration from the environment (optionally seeded by a .env
// file in development). The returned Config is passed explicitly to every
// component; there is no package-level instance.
func Load() (*Config, error) {
	// Missing .env is fine outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.baseurl", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "baybook")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("payment.baseurl", "https://api.stripe.com")
	v.SetDefault("email.port", 465)
	v.SetDefault("logging.level", "info")

	cfg := &Config{
		Server: ServerConfig{
			Host:    v.GetString("server.host"),
			Port:    v.GetInt("server.port"),
			BaseURL: v.GetString("server.baseurl"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Payment: PaymentConfig{
			SecretKey:      v.GetString("payment.secret_key"),
			WebhookSecret:  v.GetString("payment.webhook_secret"),
			BaseURL:        v.GetString("payment.baseurl"),
			PriceRefPar:    v.GetString("payment.price_ref_par"),
			PriceRefBirdie: v.GetString("payment.price_ref_birdie"),
			PriceRefEagle:  v.GetString("payment.price_ref_eagle"),
		},
		Email: EmailConfig{
			Host:     v.GetString("email.host"),
			Port:     v.GetInt("email.port"),
			Username: v.GetString("email.username"),
			Password: v.GetString("email.password"),
			From:     v.GetString("email.from"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("logging.level"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	return cfg, nil
}
