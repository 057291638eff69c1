package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Supported browser drivers
const (
	DriverSelenium = "selenium"
	DriverChromedp = "chromedp"
	DriverRod      = "rod"
)

// MatchModeSubstring is the only supported comparison: case-insensitive substring
const MatchModeSubstring = "substring"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Check     CheckConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BrowserConfig holds browser automation configuration
type BrowserConfig struct {
	Driver     string `mapstructure:"driver"` // "selenium", "chromedp" or "rod"
	DriverPath string `mapstructure:"driver_path"`
	Port       int    `mapstructure:"port"`
	BinaryPath string `mapstructure:"binary_path"`
	Headless   bool   `mapstructure:"headless"`
	UserAgent  string `mapstructure:"user_agent"`
	WindowSize string `mapstructure:"window_size"`
}

// CheckConfig holds weather check configuration
type CheckConfig struct {
	SearchURL       string        `mapstructure:"search_url"`
	Language        string        `mapstructure:"language"`
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
	ElementTimeout  time.Duration `mapstructure:"element_timeout"`
	MatchMode       string        `mapstructure:"match_mode"`
	ScreenshotDir   string        `mapstructure:"screenshot_dir"`
	Debug           bool          `mapstructure:"debug"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP    int `mapstructure:"per_ip"`   // HTTP requests per minute per client
	Provider int `mapstructure:"provider"` // searches per hour against the provider
}

// flagKeys maps command-line flag names to configuration keys
var flagKeys = map[string]string{
	"driver":          "browser.driver",
	"driver-path":     "browser.driver_path",
	"driver-port":     "browser.port",
	"browser-binary":  "browser.binary_path",
	"headless":        "browser.headless",
	"page-timeout":    "check.page_load_timeout",
	"element-timeout": "check.element_timeout",
	"search-url":      "check.search_url",
	"screenshot-dir":  "check.screenshot_dir",
	"debug":           "check.debug",
	"port":            "server.port",
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags loads configuration and lets any set command-line flags in fs
// override file and environment values.
func LoadWithFlags(fs *pflag.FlagSet) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/weathercheck/")

	// Environment variable settings
	v.SetEnvPrefix("WEATHERCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	if fs != nil {
		for name, key := range flagKeys {
			if flag := fs.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("error binding flag %q: %w", name, err)
				}
			}
		}
	}

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Browser defaults
	v.SetDefault("browser.driver", DriverSelenium)
	v.SetDefault("browser.driver_path", "chromedriver")
	v.SetDefault("browser.port", 9515)
	v.SetDefault("browser.binary_path", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("browser.window_size", "1920,1080")

	// Check defaults
	v.SetDefault("check.search_url", "https://www.google.com/search")
	v.SetDefault("check.language", "en")
	v.SetDefault("check.page_load_timeout", "15s")
	v.SetDefault("check.element_timeout", "5s")
	v.SetDefault("check.match_mode", MatchModeSubstring)
	v.SetDefault("check.screenshot_dir", "")
	v.SetDefault("check.debug", false)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 30)
	v.SetDefault("ratelimit.provider", 60)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Browser.Driver {
	case DriverSelenium, DriverChromedp, DriverRod:
	default:
		return fmt.Errorf("browser driver must be 'selenium', 'chromedp' or 'rod', got: %s", config.Browser.Driver)
	}

	if config.Browser.Driver == DriverSelenium {
		if config.Browser.DriverPath == "" {
			return fmt.Errorf("driver path is required when browser driver is 'selenium'")
		}
		if config.Browser.Port <= 0 || config.Browser.Port > 65535 {
			return fmt.Errorf("driver port must be between 1 and 65535, got: %d", config.Browser.Port)
		}
	}

	if config.Check.PageLoadTimeout <= 0 {
		return fmt.Errorf("page load timeout must be positive, got: %s", config.Check.PageLoadTimeout)
	}

	if config.Check.ElementTimeout <= 0 {
		return fmt.Errorf("element timeout must be positive, got: %s", config.Check.ElementTimeout)
	}

	if config.Check.MatchMode != MatchModeSubstring {
		return fmt.Errorf("match mode must be '%s', got: %s", MatchModeSubstring, config.Check.MatchMode)
	}

	if config.Check.SearchURL == "" {
		return fmt.Errorf("search URL is required (set WEATHERCHECK_CHECK_SEARCH_URL)")
	}

	return nil
}

// loadEnvFile loads KEY=VALUE pairs from a .env file in the working directory.
// Variables already present in the environment win.
func loadEnvFile() error {
	if err := gotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
