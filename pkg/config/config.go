package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "dev_secret"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Mail     MailConfig
	Batch    BatchConfig
	Events   EventsConfig
	Search   SearchConfig
	Storage  StorageConfig
	HR       BootstrapHRConfig
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MigrationsPath string
	AutoMigrate    bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MailConfig configures the outbound SMTP relay.
type MailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
	Timeout  time.Duration
}

// BatchConfig tunes intern provisioning.
type BatchConfig struct {
	MaxUploadBytes   int64
	MaxRecords       int
	CredentialLength int
	LoginURL         string
}

// EventsConfig points at the RabbitMQ broker used for intern lifecycle events.
type EventsConfig struct {
	URL      string
	Exchange string
}

// SearchConfig governs caching of search metadata.
type SearchConfig struct {
	CacheTTL time.Duration
}

// StorageConfig locates uploaded intern documents and signs their download links.
// An empty SigningSecret falls back to the JWT secret.
type StorageConfig struct {
	Dir              string
	SigningSecret    string
	LinkTTL          time.Duration
	MaxDocumentBytes int64
}

// BootstrapHRConfig seeds the first HR account at startup.
type BootstrapHRConfig struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Enabled reports whether a bootstrap account is configured.
func (c BootstrapHRConfig) Enabled() bool {
	return c.Email != "" && c.Password != ""
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		MigrationsPath: v.GetString("DB_MIGRATIONS_PATH"),
		AutoMigrate:    v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Mail = MailConfig{
		Enabled:  v.GetBool("MAIL_ENABLED"),
		Host:     v.GetString("MAIL_SMTP_HOST"),
		Port:     v.GetInt("MAIL_SMTP_PORT"),
		Username: v.GetString("MAIL_SMTP_USER"),
		Password: v.GetString("MAIL_SMTP_PASS"),
		From:     v.GetString("MAIL_FROM"),
		FromName: v.GetString("MAIL_FROM_NAME"),
		TLS:      v.GetBool("MAIL_SMTP_TLS"),
		Timeout:  parseDuration(v.GetString("MAIL_TIMEOUT"), 10*time.Second),
	}

	maxUpload := v.GetInt64("BATCH_MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Batch = BatchConfig{
		MaxUploadBytes:   maxUpload,
		MaxRecords:       v.GetInt("BATCH_MAX_RECORDS"),
		CredentialLength: v.GetInt("BATCH_CREDENTIAL_LENGTH"),
		LoginURL:         v.GetString("BATCH_LOGIN_URL"),
	}

	cfg.Events = EventsConfig{
		URL:      v.GetString("RABBITMQ_URL"),
		Exchange: v.GetString("RABBITMQ_EXCHANGE"),
	}

	cfg.Search = SearchConfig{
		CacheTTL: parseDuration(v.GetString("SEARCH_CACHE_TTL"), 5*time.Minute),
	}

	maxDocument := v.GetInt64("STORAGE_MAX_DOCUMENT_BYTES")
	if maxDocument <= 0 {
		maxDocument = 10 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		Dir:              v.GetString("STORAGE_DIR"),
		SigningSecret:    v.GetString("STORAGE_SIGNING_SECRET"),
		LinkTTL:          parseDuration(v.GetString("STORAGE_LINK_TTL"), 15*time.Minute),
		MaxDocumentBytes: maxDocument,
	}
	if cfg.Storage.SigningSecret == "" {
		cfg.Storage.SigningSecret = cfg.JWT.Secret
	}

	cfg.HR = BootstrapHRConfig{
		Email:     strings.ToLower(strings.TrimSpace(v.GetString("BOOTSTRAP_HR_EMAIL"))),
		Password:  v.GetString("BOOTSTRAP_HR_PASSWORD"),
		FirstName: v.GetString("BOOTSTRAP_HR_FIRST_NAME"),
		LastName:  v.GetString("BOOTSTRAP_HR_LAST_NAME"),
	}

	if cfg.Env == EnvProduction && cfg.JWT.Secret == defaultJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
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
	v.SetDefault("DB_NAME", "internship_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "internship-api")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAIL_ENABLED", false)
	v.SetDefault("MAIL_SMTP_HOST", "localhost")
	v.SetDefault("MAIL_SMTP_PORT", 1025)
	v.SetDefault("MAIL_SMTP_USER", "")
	v.SetDefault("MAIL_SMTP_PASS", "")
	v.SetDefault("MAIL_FROM", "noreply@internship.local")
	v.SetDefault("MAIL_FROM_NAME", "Internship Program")
	v.SetDefault("MAIL_SMTP_TLS", false)
	v.SetDefault("MAIL_TIMEOUT", "10s")

	v.SetDefault("BATCH_MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("BATCH_MAX_RECORDS", 500)
	v.SetDefault("BATCH_CREDENTIAL_LENGTH", 12)
	v.SetDefault("BATCH_LOGIN_URL", "http://localhost:3000/login")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "internship.events")

	v.SetDefault("SEARCH_CACHE_TTL", "5m")

	v.SetDefault("STORAGE_DIR", "./uploads")
	v.SetDefault("STORAGE_SIGNING_SECRET", "")
	v.SetDefault("STORAGE_LINK_TTL", "15m")
	v.SetDefault("STORAGE_MAX_DOCUMENT_BYTES", 10*1024*1024)

	v.SetDefault("BOOTSTRAP_HR_EMAIL", "")
	v.SetDefault("BOOTSTRAP_HR_PASSWORD", "")
	v.SetDefault("BOOTSTRAP_HR_FIRST_NAME", "HR")
	v.SetDefault("BOOTSTRAP_HR_LAST_NAME", "Admin")
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
