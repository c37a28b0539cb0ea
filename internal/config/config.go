// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// MaxAccounts bounds the credential set. The platform tolerates a handful of
// parallel login windows; ten is the contract with the credential file.
const MaxAccounts = 10

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Posting PostingConfig `mapstructure:"posting" yaml:"posting"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the per-account Chrome instances.
//
// Each account gets its own debug port (BasePort + ordinal) and its own
// profile directory under ProfileBaseDir, so cookies and local storage
// persist across runs per account.
type BrowserConfig struct {
	ChromePath          string        `mapstructure:"chrome_path" yaml:"chrome_path"`
	LoginURL            string        `mapstructure:"login_url" yaml:"login_url"`
	BasePort            int           `mapstructure:"base_port" yaml:"base_port"`
	ProfileBaseDir      string        `mapstructure:"profile_base_dir" yaml:"profile_base_dir"`
	AttachTimeout       time.Duration `mapstructure:"attach_timeout" yaml:"attach_timeout"`
	AttachRetryInterval time.Duration `mapstructure:"attach_retry_interval" yaml:"attach_retry_interval"`
	PrefillCredentials  bool          `mapstructure:"prefill_credentials" yaml:"prefill_credentials"`
	ExtraArgs           []string      `mapstructure:"extra_args" yaml:"extra_args"`
}

// PostingConfig tunes the HTTP posting client.
type PostingConfig struct {
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	MinSubmitInterval time.Duration `mapstructure:"min_submit_interval" yaml:"min_submit_interval"`
}

// StoreConfig locates the flat-file collaborators: the credential file, the
// harvested-session directory, and the post-attempt log directory.
type StoreConfig struct {
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
	SessionsDir     string `mapstructure:"sessions_dir" yaml:"sessions_dir"`
	LogsDir         string `mapstructure:"logs_dir" yaml:"logs_dir"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "cafeposter")
	v.SetDefault("logger.log_file", "cafeposter.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.chrome_path", defaultChromePath())
	v.SetDefault("browser.login_url", "https://nid.naver.com/nidlogin.login")
	v.SetDefault("browser.base_port", 9222)
	v.SetDefault("browser.profile_base_dir", defaultDataPath("chrome_profiles"))
	v.SetDefault("browser.attach_timeout", "15s")
	v.SetDefault("browser.attach_retry_interval", "250ms")
	v.SetDefault("browser.prefill_credentials", true)

	// -- Posting --
	v.SetDefault("posting.base_url", "https://apis.naver.com")
	v.SetDefault("posting.request_timeout", "30s")
	v.SetDefault("posting.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36")
	v.SetDefault("posting.min_submit_interval", "2s")

	// -- Store --
	v.SetDefault("store.credentials_file", "naver_accounts.txt")
	v.SetDefault("store.sessions_dir", defaultDataPath("sessions"))
	v.SetDefault("store.logs_dir", "logs")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a validated configuration from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
// Validation failures are fatal to the operation that needed the value and
// must surface before any browser process is spawned.
func (c *Config) Validate() error {
	if c.Browser.ChromePath == "" {
		return fmt.Errorf("browser.chrome_path is required")
	}
	if info, err := os.Stat(c.Browser.ChromePath); err != nil || info.IsDir() {
		return fmt.Errorf("browser.chrome_path %q is not a usable binary", c.Browser.ChromePath)
	}
	if c.Browser.BasePort <= 0 || c.Browser.BasePort > 65535-MaxAccounts {
		return fmt.Errorf("browser.base_port must leave room for %d consecutive ports", MaxAccounts)
	}
	if c.Browser.LoginURL == "" {
		return fmt.Errorf("browser.login_url is required")
	}
	if c.Browser.AttachTimeout <= 0 {
		return fmt.Errorf("browser.attach_timeout must be a positive duration")
	}
	if c.Posting.BaseURL == "" {
		return fmt.Errorf("posting.base_url is required")
	}
	if c.Store.CredentialsFile == "" || c.Store.SessionsDir == "" || c.Store.LogsDir == "" {
		return fmt.Errorf("store.credentials_file, store.sessions_dir, and store.logs_dir are required")
	}
	return nil
}

// defaultChromePath picks the conventional Chrome location for the platform.
func defaultChromePath() string {
	candidates := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return candidates[0]
}

// defaultDataPath roots persistent state under the user's home directory.
func defaultDataPath(elem string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cafeposter", elem)
	}
	return filepath.Join(home, ".cafeposter", elem)
}
