package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Mail      MailConfig      `yaml:"mail"`
	Waitlist  WaitlistConfig  `yaml:"waitlist"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	BasePath            string `yaml:"base_path"` // prefix prepended to every module mount point
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// DatabaseConfig contains SQLite settings. Each application gets its own file under Dir.
type DatabaseConfig struct {
	Dir           string `yaml:"dir"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// MailConfig contains outbound email settings
type MailConfig struct {
	Provider       string `yaml:"provider"` // "smtp" or "sendgrid"
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	From           string `yaml:"from"`
	FromName       string `yaml:"from_name"`
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WaitlistConfig contains waitlist workflow settings
type WaitlistConfig struct {
	NotificationPolicy      string `yaml:"notification_policy"` // "outbox" or "strict"
	MaxNotificationAttempts int    `yaml:"max_notification_attempts"`
}

// AuthConfig contains session and token settings
type AuthConfig struct {
	SessionSecret      string `yaml:"session_secret"`
	JWTSecret          string `yaml:"jwt_secret"`
	AccessTokenMinutes int    `yaml:"access_token_expiry_minutes"`
	ProtectAdmin       bool   `yaml:"protect_admin"`
	SecureCookies      bool   `yaml:"secure_cookies"`
}

// RateLimitConfig limits public write endpoints per client
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	Enabled            bool   `yaml:"enabled"`
	RetryNotifications string `yaml:"retry_notifications"`
}

// Load reads configuration from a YAML file. An empty path skips the file
// and builds the configuration from defaults and the environment.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("BASE_PATH"); val != "" {
		c.Server.BasePath = val
	}

	// Database
	if val := os.Getenv("DATABASE_PATH"); val != "" {
		c.Database.Dir = val
	}

	// Mail. SENDER_EMAIL / SENDER_PASSWORD are the relay credentials.
	if val := os.Getenv("MAIL_PROVIDER"); val != "" {
		c.Mail.Provider = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.Mail.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Mail.Port)
	}
	if val := os.Getenv("SENDER_EMAIL"); val != "" {
		c.Mail.User = val
		if c.Mail.From == "" {
			c.Mail.From = val
		}
	}
	if val := os.Getenv("SENDER_PASSWORD"); val != "" {
		c.Mail.Password = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Mail.SendGridAPIKey = val
	}

	// Waitlist
	if val := os.Getenv("NOTIFICATION_POLICY"); val != "" {
		c.Waitlist.NotificationPolicy = val
	}

	// Auth
	if val := os.Getenv("SESSION_SECRET"); val != "" {
		c.Auth.SessionSecret = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.Auth.JWTSecret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	c.Server.BasePath = NormalizeBasePath(c.Server.BasePath)
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 30
	}

	if c.Database.Dir == "" {
		c.Database.Dir = "instance"
	}
	if c.Database.BusyTimeoutMS == 0 {
		c.Database.BusyTimeoutMS = 5000
	}

	if c.Mail.Provider == "" {
		c.Mail.Provider = "smtp"
	}
	if c.Mail.Host == "" {
		c.Mail.Host = "smtp.gmail.com"
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 465
	}
	if c.Mail.From == "" {
		c.Mail.From = c.Mail.User
	}
	if c.Mail.TimeoutSeconds == 0 {
		c.Mail.TimeoutSeconds = 20
	}

	if c.Waitlist.NotificationPolicy == "" {
		c.Waitlist.NotificationPolicy = "outbox"
	}
	if c.Waitlist.MaxNotificationAttempts == 0 {
		c.Waitlist.MaxNotificationAttempts = 5
	}

	if c.Auth.AccessTokenMinutes == 0 {
		c.Auth.AccessTokenMinutes = 60
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Scheduler.RetryNotifications == "" {
		c.Scheduler.RetryNotifications = "0 */5 * * * *" // every 5 minutes
	}
}

// cronParser matches the seconds-precision parser the scheduler uses
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Mail validation
	switch c.Mail.Provider {
	case "smtp":
		if c.Mail.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Mail.Port)
		}
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid API key is required")
		}
	default:
		return fmt.Errorf("unsupported mail provider: %s", c.Mail.Provider)
	}

	// Waitlist validation
	switch c.Waitlist.NotificationPolicy {
	case "outbox", "strict":
	default:
		return fmt.Errorf("unsupported notification policy: %s", c.Waitlist.NotificationPolicy)
	}
	if c.Waitlist.MaxNotificationAttempts < 1 {
		return fmt.Errorf("max notification attempts must be at least 1")
	}

	// Auth validation
	if len(c.Auth.SessionSecret) < 32 {
		return fmt.Errorf("session secret must be at least 32 characters")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("invalid rate limit: %v rps, burst %d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}

	if c.Scheduler.Enabled {
		if _, err := cronParser.Parse(c.Scheduler.RetryNotifications); err != nil {
			return fmt.Errorf("invalid retry_notifications schedule %q: %w", c.Scheduler.RetryNotifications, err)
		}
	}

	return nil
}

// DatabasePath returns the SQLite file used by the named application
func (c *Config) DatabasePath(app string) string {
	return filepath.Join(c.Database.Dir, app+".db")
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// NormalizeBasePath turns "api/", "/api" and "/api/" into "/api" and "/" into "".
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
