package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvDBConnection  = "DB_CONNECTION"
	EnvJWTSecret     = "JWT_SECRET"
	EnvJWTExpiry     = "JWT_EXPIRY"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
	EnvSMTPPassword  = "SMTP_PASSWORD"
	EnvLogLevel      = "LOG_LEVEL"
	EnvPort          = "PORT"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// RedisConfig holds the optional Redis connection used for rate limiting and refresh broadcasts.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// RateLimitConfig holds public endpoint rate limits.
type RateLimitConfig struct {
	SubmitPerMinute int `yaml:"submit-per-minute"`
	TrackPerMinute  int `yaml:"track-per-minute"`
}

// CRMConfig tunes the CRM outbox worker.
type CRMConfig struct {
	PollInterval time.Duration `yaml:"poll-interval"`
	MaxAttempts  int           `yaml:"max-attempts"`
	Timeout      time.Duration `yaml:"timeout"`
	BatchSize    int           `yaml:"batch-size"`
}

// ContentConfig tunes the content snapshot loader.
type ContentConfig struct {
	RefreshInterval time.Duration `yaml:"refresh-interval"`
}

// AdminBootstrapConfig holds credentials for the first super admin.
type AdminBootstrapConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SMTPConfig holds outgoing mail settings for operator alerts.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"-"`
}

// Enabled reports whether alerts can be sent.
func (c SMTPConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != "" && strings.TrimSpace(c.From) != "" && strings.TrimSpace(c.To) != ""
}

// fileConfig maps the YAML document.
type fileConfig struct {
	DatabaseDSN string `yaml:"database-dsn"`
	Database    struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT       JWTConfig            `yaml:"jwt"`
	Redis     RedisConfig          `yaml:"redis"`
	RateLimit RateLimitConfig      `yaml:"rate-limit"`
	CRM       CRMConfig            `yaml:"crm"`
	Content   ContentConfig        `yaml:"content"`
	Admin     AdminBootstrapConfig `yaml:"admin"`
	SMTP      SMTPConfig           `yaml:"smtp"`
	Notify    struct {
		To string `yaml:"to"`
	} `yaml:"notify"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log-level"`
	Debug    bool   `yaml:"debug"`
}

// readFileConfig parses the config file. A missing file yields an empty config.
func readFileConfig(configPath string) (fileConfig, error) {
	var cfg fileConfig
	data, errRead := os.ReadFile(configPath)
	if errRead != nil {
		if errors.Is(errRead, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", errRead)
	}
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return cfg, fmt.Errorf("parse config file: %w", errUnmarshal)
	}
	return cfg, nil
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 7 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	result := JWTConfig{Expiry: defaultJWTExpiry}

	if cfg, errRead := readFileConfig(configPath); errRead == nil {
		result = cfg.JWT
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// DefaultRedisPrefix namespaces every key the service writes to Redis.
const DefaultRedisPrefix = "energee"

// LoadRedisConfig loads the Redis connection settings.
func LoadRedisConfig(configPath string) (RedisConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return RedisConfig{}, errRead
	}
	result := cfg.Redis
	if addr := strings.TrimSpace(os.Getenv(EnvRedisAddr)); addr != "" {
		result.Addr = addr
	}
	if password := os.Getenv(EnvRedisPassword); password != "" {
		result.Password = password
	}
	if dbRaw := strings.TrimSpace(os.Getenv(EnvRedisDB)); dbRaw != "" {
		if db, errParse := strconv.Atoi(dbRaw); errParse == nil {
			result.DB = db
		}
	}
	result.Addr = strings.TrimSpace(result.Addr)
	result.Prefix = strings.TrimSpace(result.Prefix)
	if result.Prefix == "" {
		result.Prefix = DefaultRedisPrefix
	}
	if result.DB < 0 {
		result.DB = 0
	}
	return result, nil
}

const (
	defaultSubmitPerMinute = 10
	defaultTrackPerMinute  = 120
)

// LoadRateLimitConfig loads per-client limits for the public endpoints.
// Zero keeps the default; a negative value disables the limit.
func LoadRateLimitConfig(configPath string) (RateLimitConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return RateLimitConfig{}, errRead
	}
	result := cfg.RateLimit
	if result.SubmitPerMinute == 0 {
		result.SubmitPerMinute = defaultSubmitPerMinute
	}
	if result.TrackPerMinute == 0 {
		result.TrackPerMinute = defaultTrackPerMinute
	}
	if result.SubmitPerMinute < 0 {
		result.SubmitPerMinute = 0
	}
	if result.TrackPerMinute < 0 {
		result.TrackPerMinute = 0
	}
	return result, nil
}

const (
	defaultCRMPollInterval = 5 * time.Second
	defaultCRMMaxAttempts  = 5
	defaultCRMTimeout      = 10 * time.Second
	defaultCRMBatchSize    = 20
)

// LoadCRMConfig loads the outbox worker settings.
func LoadCRMConfig(configPath string) (CRMConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return CRMConfig{}, errRead
	}
	result := cfg.CRM
	if result.PollInterval <= 0 {
		result.PollInterval = defaultCRMPollInterval
	}
	if result.MaxAttempts <= 0 {
		result.MaxAttempts = defaultCRMMaxAttempts
	}
	if result.Timeout <= 0 {
		result.Timeout = defaultCRMTimeout
	}
	if result.BatchSize <= 0 {
		result.BatchSize = defaultCRMBatchSize
	}
	return result, nil
}

const defaultContentRefreshInterval = time.Minute

// LoadContentConfig loads content snapshot settings.
func LoadContentConfig(configPath string) (ContentConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return ContentConfig{}, errRead
	}
	result := cfg.Content
	if result.RefreshInterval <= 0 {
		result.RefreshInterval = defaultContentRefreshInterval
	}
	return result, nil
}

// LoadAdminBootstrapConfig loads the credentials used to create the first admin.
func LoadAdminBootstrapConfig(configPath string) (AdminBootstrapConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return AdminBootstrapConfig{}, errRead
	}
	result := cfg.Admin
	if username := strings.TrimSpace(os.Getenv(EnvAdminUsername)); username != "" {
		result.Username = username
	}
	if password := os.Getenv(EnvAdminPassword); password != "" {
		result.Password = password
	}
	result.Username = strings.TrimSpace(result.Username)
	return result, nil
}

const defaultSMTPPort = 587

// LoadSMTPConfig loads mail settings for dead-letter alerts.
func LoadSMTPConfig(configPath string) (SMTPConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return SMTPConfig{}, errRead
	}
	result := cfg.SMTP
	result.To = strings.TrimSpace(cfg.Notify.To)
	if password := os.Getenv(EnvSMTPPassword); password != "" {
		result.Password = password
	}
	if result.Port <= 0 {
		result.Port = defaultSMTPPort
	}
	return result, nil
}

// LogConfig holds logging and debug flags.
type LogConfig struct {
	Level string
	Debug bool
}

// LoadLogConfig loads the log level and debug flag.
func LoadLogConfig(configPath string) (LogConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return LogConfig{}, errRead
	}
	result := LogConfig{Level: strings.TrimSpace(cfg.LogLevel), Debug: cfg.Debug}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		result.Level = level
	}
	if result.Level == "" {
		result.Level = "info"
	}
	return result, nil
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Host string
	Port int
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadServerConfig loads the listen address. A zero port falls back to defaultPort.
func LoadServerConfig(configPath string, defaultPort int) (ServerConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return ServerConfig{}, errRead
	}
	result := ServerConfig{Host: strings.TrimSpace(cfg.Host), Port: cfg.Port}
	if raw := strings.TrimSpace(os.Getenv(EnvPort)); raw != "" {
		port, errParse := strconv.Atoi(raw)
		if errParse != nil {
			return ServerConfig{}, fmt.Errorf("parse %s: %w", EnvPort, errParse)
		}
		result.Port = port
	}
	if result.Port <= 0 {
		result.Port = defaultPort
	}
	if result.Port <= 0 || result.Port > 65535 {
		return ServerConfig{}, fmt.Errorf("invalid port: %d", result.Port)
	}
	return result, nil
}
