package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverGCS  = "gcs"
	StorageDriverR2   = "r2"
	StorageDriverNone = "none"
)

type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	JWT       JWTConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Cookie    CookieConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Query     QueryConfig
	Redis     RedisConfig
	Mail      MailConfig
	Tokens    TokenConfig
	RateLimit RateLimitConfig
}

// Load reads the process environment. Field names map straight to the
// variable names in the tags.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for storage driver %q", c.Storage.Driver)
		}
	case StorageDriverR2:
		if c.Storage.R2Bucket == "" || c.Storage.R2Endpoint == "" || c.Storage.R2AccessKeyID == "" || c.Storage.R2SecretAccessKey == "" {
			return fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
		}
	case StorageDriverNone:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("DEFAULT_READ_QUERY_LIMIT (%d) exceeds READ_QUERY_MAX_LIMIT (%d)", c.Query.DefaultLimit, c.Query.MaxLimit)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"APP_ENV" default:"dev"`
	Port         string `envconfig:"PORT" default:"8080"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"storefront-api"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"LOG_WARN_STACK" default:"false"`
	FrontendURL  string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type MongoConfig struct {
	URI         string        `envconfig:"MONGODB_URI" required:"true"`
	Database    string        `envconfig:"DATABASE_NAME" required:"true"`
	ConnTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
	OpTimeout   time.Duration `envconfig:"DB_OP_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                string `envconfig:"JWT_SECRET" required:"true"`
	RefreshSecret         string `envconfig:"JWT_REFRESH_SECRET" required:"true"`
	AccessTokenTTLMinutes int    `envconfig:"ACCESS_TOKEN_TTL_MINUTES" default:"15"`
	RefreshTokenTTLDays   int    `envconfig:"REFRESH_TOKEN_TTL_DAYS" default:"14"`
}

func (j JWTConfig) AccessTTL() time.Duration {
	if j.AccessTokenTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(j.AccessTokenTTLMinutes) * time.Minute
}

func (j JWTConfig) RefreshTTL() time.Duration {
	if j.RefreshTokenTTLDays <= 0 {
		return 14 * 24 * time.Hour
	}
	return time.Duration(j.RefreshTokenTTLDays) * 24 * time.Hour
}

type AdminConfig struct {
	Email    string `envconfig:"ADMIN_EMAIL"`
	Password string `envconfig:"ADMIN_PASSWORD"`
}

type CORSConfig struct {
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS"`
}

// Origins splits the comma separated allow-list.
func (c CORSConfig) Origins() map[string]bool {
	allowed := map[string]bool{}
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed[origin] = true
		}
	}
	return allowed
}

type CookieConfig struct {
	Secure bool   `envconfig:"COOKIE_SECURE" default:"true"`
	Domain string `envconfig:"COOKIE_DOMAIN"`
	Path   string `envconfig:"COOKIE_PATH" default:"/api/auth"`
}

type StorageConfig struct {
	Driver            string `envconfig:"STORAGE_DRIVER" default:"none"`
	GCSBucket         string `envconfig:"GCS_BUCKET"`
	CredentialsFile   string `envconfig:"CREDENTIALS_FILE_LOCATION"`
	R2Bucket          string `envconfig:"R2_BUCKET"`
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2Endpoint        string `envconfig:"R2_ENDPOINT"`
	R2PublicDomain    string `envconfig:"R2_PUBLIC_DOMAIN"`
}

type UploadConfig struct {
	MaxProductImages  int    `envconfig:"MAX_PROD_IMAGES" default:"4"`
	MaxUploadSizeMB   int    `envconfig:"MAX_UPLOAD_SIZE_MB" default:"5"`
	AllowedExtensions string `envconfig:"ALLOWED_FILE_EXTENSIONS" default:".jpg,.jpeg,.png,.webp,.pdf"`
	AllowedMimeTypes  string `envconfig:"ALLOWED_FILE_MIME_TYPES" default:"image/jpeg,image/png,image/webp,application/pdf"`
}

type QueryConfig struct {
	MaxLimit     int `envconfig:"READ_QUERY_MAX_LIMIT" default:"100"`
	DefaultLimit int `envconfig:"DEFAULT_READ_QUERY_LIMIT" default:"20"`
	SearchLimit  int `envconfig:"SEARCH_RESULT_LIMIT" default:"20"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	ViewCacheTTL time.Duration `envconfig:"VIEW_CACHE_TTL" default:"5m"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type MailConfig struct {
	SMTPAddress string `envconfig:"SMTP_ADDRESS"`
	SMTPHost    string `envconfig:"FROM_EMAIL_SMTP"`
	From        string `envconfig:"FROM_EMAIL" default:"no-reply@localhost"`
	Password    string `envconfig:"FROM_EMAIL_PASSWORD"`
	LogoURL     string `envconfig:"MAIL_LOGO_URL"`
}

// Enabled reports whether outbound SMTP is configured.
func (m MailConfig) Enabled() bool {
	return m.SMTPAddress != ""
}

type TokenConfig struct {
	ResetTTL        time.Duration `envconfig:"RESET_TOKEN_TTL" default:"1h"`
	VerificationTTL time.Duration `envconfig:"VERIFICATION_TOKEN_TTL" default:"24h"`
}

type RateLimitConfig struct {
	ForgotPasswordLimit  int64         `envconfig:"RATE_LIMIT_FORGOT_PASSWORD" default:"3"`
	ForgotPasswordWindow time.Duration `envconfig:"RATE_LIMIT_FORGOT_PASSWORD_WINDOW" default:"15m"`
	AuthIPLimit          int64         `envconfig:"RATE_LIMIT_AUTH_IP" default:"20"`
	AuthIPWindow         time.Duration `envconfig:"RATE_LIMIT_AUTH_IP_WINDOW" default:"1m"`
}
