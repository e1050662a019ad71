package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Orders    OrdersConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Email     EmailConfig
}

// Load reads the configuration from the process environment and requires
// database settings.
func Load() (*Config, error) {
	cfg, err := LoadWithoutDB()
	if err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithoutDB is Load for processes that never open the database.
func LoadWithoutDB() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env                string   `envconfig:"APP_ENV" default:"development"`
	Port               string   `envconfig:"PORT" default:"3000"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat          string   `envconfig:"LOG_FORMAT" default:"json"`
	ExposeErrors       bool     `envconfig:"APP_EXPOSE_ERRORS" default:"false"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

type DBConfig struct {
	DSN string `envconfig:"DB_DSN"`

	Host           string        `envconfig:"DB_HOST"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER"`
	Password       string        `envconfig:"DB_PASSWORD"`
	Name           string        `envconfig:"DB_DATABASE"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"verify-full"`
	CACertPath     string        `envconfig:"DB_CA_CERT" default:"ca.pem"`
	ConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"30s"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`

	RetryInitialInterval time.Duration `envconfig:"DB_RETRY_INITIAL_INTERVAL" default:"5s"`
	RetryMaxInterval     time.Duration `envconfig:"DB_RETRY_MAX_INTERVAL" default:"1m"`
	RetryMaxAttempts     int           `envconfig:"DB_RETRY_MAX_ATTEMPTS" default:"5"`
	HealthInterval       time.Duration `envconfig:"DB_HEALTH_INTERVAL" default:"15s"`
}

type OrdersConfig struct {
	PlacementTimeout time.Duration `envconfig:"ORDER_PLACEMENT_TIMEOUT" default:"10s"`
}

type KafkaConfig struct {
	Brokers    []string `envconfig:"KAFKA_BROKERS"`
	OrderTopic string   `envconfig:"KAFKA_ORDER_TOPIC" default:"order.placed"`
	GroupID    string   `envconfig:"KAFKA_GROUP_ID" default:"reorder-worker"`
}

// Enabled reports whether any broker was configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type TelemetryConfig struct {
	OTLPEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceVersion string `envconfig:"SERVICE_VERSION" default:"0.1.0"`
}

type EmailConfig struct {
	ServiceURL       string `envconfig:"EMAIL_SERVICE_URL"`
	ReorderRecipient string `envconfig:"REORDER_RECIPIENT" default:"purchasing@example.com"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	if db.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if db.User == "" {
		missing = append(missing, "DB_USER")
	}
	if db.Name == "" {
		missing = append(missing, "DB_DATABASE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("either DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:   db.Name,
	}

	q := u.Query()
	if db.SSLMode != "" {
		q.Set("sslmode", db.SSLMode)
	}
	if db.SSLMode != "disable" && db.CACertPath != "" {
		q.Set("sslrootcert", db.CACertPath)
	}
	if db.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(db.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()

	db.DSN = u.String()
	return nil
}
