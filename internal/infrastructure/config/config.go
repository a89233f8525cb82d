package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // scheduler.timezone must resolve on minimal images

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WIMOTOS_DATABASE_HOST
const EnvPrefix = "WIMOTOS"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Offers    OffersConfig
	WhatsApp  WhatsAppConfig
	Storage   StorageConfig
	Printing  PrintingConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
	// The admin account is created at startup when no user has this email yet
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	URL             string // full DSN; wins over the discrete fields
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	SlowQueryMS     int // queries slower than this are logged at warn
	MigrateOnStart  bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	MaxUploadSize    int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// SchedulerConfig holds the reminder loop configuration
type SchedulerConfig struct {
	Enabled              bool // embed the loop in the HTTP server process
	Interval             time.Duration
	DueSoonLeadDays      int
	Timezone             string
	FinanceBatchSize     int
	InstallmentBatchSize int
	LockEnabled          bool
	LockTTL              time.Duration
	StaleSendingAfter    time.Duration // 0 disables the stale SENDING sweep
}

// Location resolves Timezone, falling back to UTC
func (s SchedulerConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OffersConfig holds the daily offers broadcast configuration
type OffersConfig struct {
	Enabled       bool
	Hour          int
	MaxPerDay     int
	Delay         time.Duration
	QueryLimit    int
	ImageMaxDim   int
	ImageQuality  int
	ImageMaxBytes int
	Destinations  []string
	CaptionFooter string
}

// WhatsAppConfig holds the Blibsend transport settings
type WhatsAppConfig struct {
	BaseURL      string
	SessionToken string
	ClientID     string
	ClientSecret string
	DefaultTo    string
	Timeout      time.Duration
	UserAgent    string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Driver          string // s3 or memory
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

// PrintingConfig holds the booklet renderer settings
type PrintingConfig struct {
	Enabled    bool
	ChromePath string
	// ChromeURL attaches to a running Chrome (ws://...) instead of launching one
	ChromeURL     string
	Timeout       time.Duration
	CompanyName   string
	MaxConcurrent int
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled bool
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	LogsEnabled       bool
	DBTraceEnabled    bool
	ProfilingEnabled  bool
	PyroscopeURL      string
}

// legacyEnv maps config keys to the environment names the deployment already uses
var legacyEnv = map[string]string{
	"database.url":               "DATABASE_URL",
	"whatsapp.base_url":          "BLIBSEND_BASE_URL",
	"whatsapp.session_token":     "BLIBSEND_SESSION_TOKEN",
	"whatsapp.client_id":         "BLIBSEND_CLIENT_ID",
	"whatsapp.client_secret":     "BLIBSEND_CLIENT_SECRET",
	"whatsapp.default_to":        "BLIBSEND_DEFAULT_TO",
	"storage.endpoint":           "S3_ENDPOINT",
	"storage.access_key_id":      "S3_ACCESS_KEY_ID",
	"storage.secret_access_key":  "S3_SECRET_ACCESS_KEY",
	"storage.region":             "S3_REGION",
	"storage.bucket":             "S3_BUCKET",
	"scheduler.interval_seconds": "WORKER_INTERVAL_SECONDS",
}

// Load loads configuration from .env, TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with WIMOTOS_ prefix (e.g., WIMOTOS_DATABASE_PASSWORD)
// 2. Legacy variable names (DATABASE_URL, BLIBSEND_*, S3_*, WORKER_INTERVAL_SECONDS)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", legacy, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:          v.GetString("app.name"),
			Env:           v.GetString("app.env"),
			Port:          v.GetString("app.port"),
			AdminName:     v.GetString("app.admin_name"),
			AdminEmail:    v.GetString("app.admin_email"),
			AdminPassword: v.GetString("app.admin_password"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			URL:             v.GetString("database.url"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			SlowQueryMS:     v.GetInt("database.slow_query_ms"),
			MigrateOnStart:  v.GetBool("database.migrate_on_start"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			MaxUploadSize:    v.GetInt64("http.max_upload_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Scheduler: SchedulerConfig{
			Enabled:              v.GetBool("scheduler.enabled"),
			Interval:             v.GetDuration("scheduler.interval"),
			DueSoonLeadDays:      v.GetInt("scheduler.due_soon_lead_days"),
			Timezone:             v.GetString("scheduler.timezone"),
			FinanceBatchSize:     v.GetInt("scheduler.finance_batch_size"),
			InstallmentBatchSize: v.GetInt("scheduler.installment_batch_size"),
			LockEnabled:          v.GetBool("scheduler.lock_enabled"),
			LockTTL:              v.GetDuration("scheduler.lock_ttl"),
			StaleSendingAfter:    v.GetDuration("scheduler.stale_sending_after"),
		},
		Offers: OffersConfig{
			Enabled:       v.GetBool("offers.enabled"),
			Hour:          v.GetInt("offers.hour"),
			MaxPerDay:     v.GetInt("offers.max_per_day"),
			Delay:         v.GetDuration("offers.delay"),
			QueryLimit:    v.GetInt("offers.query_limit"),
			ImageMaxDim:   v.GetInt("offers.image_max_dim"),
			ImageQuality:  v.GetInt("offers.image_quality"),
			ImageMaxBytes: v.GetInt("offers.image_max_bytes"),
			Destinations:  v.GetStringSlice("offers.destinations"),
			CaptionFooter: v.GetString("offers.caption_footer"),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:      v.GetString("whatsapp.base_url"),
			SessionToken: v.GetString("whatsapp.session_token"),
			ClientID:     v.GetString("whatsapp.client_id"),
			ClientSecret: v.GetString("whatsapp.client_secret"),
			DefaultTo:    v.GetString("whatsapp.default_to"),
			Timeout:      v.GetDuration("whatsapp.timeout"),
			UserAgent:    v.GetString("whatsapp.user_agent"),
		},
		Storage: StorageConfig{
			Driver:          v.GetString("storage.driver"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PresignExpiry:   v.GetDuration("storage.presign_expiry"),
		},
		Printing: PrintingConfig{
			Enabled:       v.GetBool("printing.enabled"),
			ChromePath:    v.GetString("printing.chrome_path"),
			ChromeURL:     v.GetString("printing.chrome_url"),
			Timeout:       v.GetDuration("printing.timeout"),
			CompanyName:   v.GetString("printing.company_name"),
			MaxConcurrent: v.GetInt("printing.max_concurrent"),
		},
		Swagger: SwaggerConfig{
			Enabled: v.GetBool("swagger.enabled"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeURL:      v.GetString("telemetry.pyroscope_url"),
		},
	}

	// WORKER_INTERVAL_SECONDS is a bare integer
	if secs := v.GetInt("scheduler.interval_seconds"); secs > 0 {
		cfg.Scheduler.Interval = time.Duration(secs) * time.Second
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "wimotos-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.AdminName == "" {
		cfg.App.AdminName = "Administrador"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "wimotos"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "wimotos.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.SlowQueryMS == 0 {
		cfg.Database.SlowQueryMS = 200
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 12 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "wimotos-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxUploadSize == 0 {
		cfg.HTTP.MaxUploadSize = 10 << 20 // 10MB
	}
	// An empty origin list allows no cross-origin requests until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = 30 * time.Second
	}
	if cfg.Scheduler.DueSoonLeadDays == 0 {
		cfg.Scheduler.DueSoonLeadDays = 5
	}
	if cfg.Scheduler.Timezone == "" {
		cfg.Scheduler.Timezone = "America/Sao_Paulo"
	}
	if cfg.Scheduler.FinanceBatchSize == 0 {
		cfg.Scheduler.FinanceBatchSize = 50
	}
	if cfg.Scheduler.InstallmentBatchSize == 0 {
		cfg.Scheduler.InstallmentBatchSize = 100
	}
	if cfg.Scheduler.LockTTL == 0 {
		cfg.Scheduler.LockTTL = 5 * time.Minute
	}
	if cfg.Offers.Hour == 0 {
		cfg.Offers.Hour = 9
	}
	if cfg.Offers.MaxPerDay == 0 {
		cfg.Offers.MaxPerDay = 5
	}
	if cfg.Offers.Delay == 0 {
		cfg.Offers.Delay = 8 * time.Second
	}
	if cfg.Offers.QueryLimit == 0 {
		cfg.Offers.QueryLimit = 20
	}
	if cfg.Offers.ImageMaxDim == 0 {
		cfg.Offers.ImageMaxDim = 1280
	}
	if cfg.Offers.ImageQuality == 0 {
		cfg.Offers.ImageQuality = 70
	}
	if cfg.Offers.ImageMaxBytes == 0 {
		cfg.Offers.ImageMaxBytes = 850000
	}
	if len(cfg.Offers.Destinations) == 0 && cfg.WhatsApp.DefaultTo != "" {
		cfg.Offers.Destinations = []string{cfg.WhatsApp.DefaultTo}
	}
	if cfg.WhatsApp.Timeout == 0 {
		cfg.WhatsApp.Timeout = 25 * time.Second
	}
	if cfg.WhatsApp.UserAgent == "" {
		cfg.WhatsApp.UserAgent = "wi_motos/1.0"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "s3"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = time.Hour
	}
	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
	}
	if cfg.Printing.CompanyName == "" {
		cfg.Printing.CompanyName = "Wi Motos"
	}
	if cfg.Printing.MaxConcurrent == 0 {
		cfg.Printing.MaxConcurrent = 2
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	switch c.Storage.Driver {
	case "s3", "memory":
	default:
		return fmt.Errorf("storage.driver must be s3 or memory, got %q", c.Storage.Driver)
	}
	if c.Scheduler.Interval < time.Second {
		return fmt.Errorf("scheduler.interval must be at least 1s")
	}
	if c.Scheduler.DueSoonLeadDays < 0 {
		return fmt.Errorf("scheduler.due_soon_lead_days cannot be negative")
	}
	if c.Scheduler.StaleSendingAfter < 0 {
		return fmt.Errorf("scheduler.stale_sending_after cannot be negative")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("scheduler.timezone: %w", err)
	}
	if c.Offers.Hour < 0 || c.Offers.Hour > 23 {
		return fmt.Errorf("offers.hour must be between 0 and 23")
	}
	if c.Offers.ImageQuality < 1 || c.Offers.ImageQuality > 100 {
		return fmt.Errorf("offers.image_quality must be between 1 and 100")
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver == "sqlite" {
			return fmt.Errorf("database.driver sqlite is not allowed in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values.
// For sqlite it returns the file path.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
