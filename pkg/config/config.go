package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Child provider backends.
const (
	ChildProviderDatabase = "database"
	ChildProviderHTTP     = "http"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Results   ResultsConfig
	Reference ReferenceConfig
	Children  ChildProviderConfig
	Screening ScreeningConfig
	Tracing   TracingConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig holds the shared secret used to verify tokens issued by the identity service.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ResultsConfig governs caching of completed screening results.
type ResultsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ReferenceConfig controls how the ASQ-3 reference tables are seeded and reloaded.
type ReferenceConfig struct {
	AutoSeed         bool
	QuestionsCSV     string
	ReloadChannel    string
	ReloadRetries    int
	ReloadRetryDelay time.Duration
}

// ChildProviderConfig selects where child records are read from.
type ChildProviderConfig struct {
	Provider   string
	ServiceURL string
	Token      string
	Timeout    time.Duration
	Retries    int
}

// ScreeningConfig tunes the screening workflow.
type ScreeningConfig struct {
	MaxRetries int
}

// TracingConfig configures the OTLP exporter.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Results = ResultsConfig{
		CacheEnabled: v.GetBool("ENABLE_RESULTS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("RESULTS_CACHE_TTL"), time.Hour),
	}

	cfg.Reference = ReferenceConfig{
		AutoSeed:         v.GetBool("REFERENCE_AUTO_SEED"),
		QuestionsCSV:     v.GetString("REFERENCE_QUESTIONS_CSV"),
		ReloadChannel:    v.GetString("REFERENCE_RELOAD_CHANNEL"),
		ReloadRetries:    v.GetInt("REFERENCE_RELOAD_RETRIES"),
		ReloadRetryDelay: parseDuration(v.GetString("REFERENCE_RELOAD_RETRY_DELAY"), 2*time.Second),
	}

	cfg.Children = ChildProviderConfig{
		Provider:   strings.ToLower(v.GetString("CHILD_PROVIDER")),
		ServiceURL: v.GetString("CHILD_SERVICE_URL"),
		Token:      v.GetString("CHILD_SERVICE_TOKEN"),
		Timeout:    parseDuration(v.GetString("CHILD_SERVICE_TIMEOUT"), 5*time.Second),
		Retries:    v.GetInt("CHILD_SERVICE_RETRIES"),
	}
	switch cfg.Children.Provider {
	case ChildProviderDatabase:
	case ChildProviderHTTP:
		if cfg.Children.ServiceURL == "" {
			return nil, errors.New("CHILD_SERVICE_URL is required when CHILD_PROVIDER=http")
		}
	default:
		return nil, fmt.Errorf("unsupported CHILD_PROVIDER %q", cfg.Children.Provider)
	}

	retries := v.GetInt("SCREENING_MAX_RETRIES")
	if retries <= 0 {
		retries = 3
	}
	cfg.Screening = ScreeningConfig{MaxRetries: retries}

	cfg.Tracing = TracingConfig{
		Enabled:     v.GetBool("OTEL_ENABLED"),
		Endpoint:    v.GetString("OTEL_ENDPOINT"),
		ServiceName: v.GetString("OTEL_SERVICE_NAME"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "asq3")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_RESULTS_CACHE", true)
	v.SetDefault("RESULTS_CACHE_TTL", "1h")

	v.SetDefault("REFERENCE_AUTO_SEED", true)
	v.SetDefault("REFERENCE_QUESTIONS_CSV", "")
	v.SetDefault("REFERENCE_RELOAD_CHANNEL", "asq3:reference:reload")
	v.SetDefault("REFERENCE_RELOAD_RETRIES", 3)
	v.SetDefault("REFERENCE_RELOAD_RETRY_DELAY", "2s")

	v.SetDefault("CHILD_PROVIDER", ChildProviderDatabase)
	v.SetDefault("CHILD_SERVICE_URL", "")
	v.SetDefault("CHILD_SERVICE_TOKEN", "")
	v.SetDefault("CHILD_SERVICE_TIMEOUT", "5s")
	v.SetDefault("CHILD_SERVICE_RETRIES", 2)

	v.SetDefault("SCREENING_MAX_RETRIES", 3)

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_ENDPOINT", "http://localhost:4318")
	v.SetDefault("OTEL_SERVICE_NAME", "asq3-api")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
