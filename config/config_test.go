package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("WEATHERCHECK_SERVER_PORT")
		os.Unsetenv("WEATHERCHECK_SERVER_ENVIRONMENT")
		os.Unsetenv("WEATHERCHECK_BROWSER_DRIVER")
		os.Unsetenv("WEATHERCHECK_BROWSER_DRIVER_PATH")
		os.Unsetenv("WEATHERCHECK_BROWSER_PORT")
		os.Unsetenv("WEATHERCHECK_BROWSER_HEADLESS")
		os.Unsetenv("WEATHERCHECK_CHECK_SEARCH_URL")
		os.Unsetenv("WEATHERCHECK_CHECK_PAGE_LOAD_TIMEOUT")
		os.Unsetenv("WEATHERCHECK_CHECK_ELEMENT_TIMEOUT")
		os.Unsetenv("WEATHERCHECK_CHECK_MATCH_MODE")
		os.Unsetenv("WEATHERCHECK_CHECK_SCREENSHOT_DIR")
		os.Unsetenv("WEATHERCHECK_RATELIMIT_PER_IP")
		os.Unsetenv("WEATHERCHECK_RATELIMIT_PROVIDER")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Browser.Driver != DriverSelenium {
			t.Errorf("Browser.Driver = %s, want selenium", cfg.Browser.Driver)
		}
		if cfg.Browser.DriverPath != "chromedriver" {
			t.Errorf("Browser.DriverPath = %s, want chromedriver", cfg.Browser.DriverPath)
		}
		if cfg.Browser.Port != 9515 {
			t.Errorf("Browser.Port = %d, want 9515", cfg.Browser.Port)
		}
		if !cfg.Browser.Headless {
			t.Error("Browser.Headless = false, want true")
		}
		if cfg.Check.SearchURL != "https://www.google.com/search" {
			t.Errorf("Check.SearchURL = %s, want https://www.google.com/search", cfg.Check.SearchURL)
		}
		if cfg.Check.PageLoadTimeout != 15*time.Second {
			t.Errorf("Check.PageLoadTimeout = %v, want 15s", cfg.Check.PageLoadTimeout)
		}
		if cfg.Check.ElementTimeout != 5*time.Second {
			t.Errorf("Check.ElementTimeout = %v, want 5s", cfg.Check.ElementTimeout)
		}
		if cfg.Check.MatchMode != MatchModeSubstring {
			t.Errorf("Check.MatchMode = %s, want substring", cfg.Check.MatchMode)
		}
		if cfg.RateLimit.PerIP != 30 {
			t.Errorf("RateLimit.PerIP = %d, want 30", cfg.RateLimit.PerIP)
		}
		if cfg.RateLimit.Provider != 60 {
			t.Errorf("RateLimit.Provider = %d, want 60", cfg.RateLimit.Provider)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("WEATHERCHECK_SERVER_PORT", "9090")
		os.Setenv("WEATHERCHECK_BROWSER_DRIVER", "chromedp")
		os.Setenv("WEATHERCHECK_BROWSER_HEADLESS", "false")
		os.Setenv("WEATHERCHECK_CHECK_SEARCH_URL", "https://search.example.com/q")
		os.Setenv("WEATHERCHECK_CHECK_PAGE_LOAD_TIMEOUT", "30s")
		os.Setenv("WEATHERCHECK_CHECK_ELEMENT_TIMEOUT", "10s")
		os.Setenv("WEATHERCHECK_CHECK_SCREENSHOT_DIR", "/tmp/shots")
		os.Setenv("WEATHERCHECK_RATELIMIT_PROVIDER", "120")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Browser.Driver != DriverChromedp {
			t.Errorf("Browser.Driver = %s, want chromedp", cfg.Browser.Driver)
		}
		if cfg.Browser.Headless {
			t.Error("Browser.Headless = true, want false")
		}
		if cfg.Check.SearchURL != "https://search.example.com/q" {
			t.Errorf("Check.SearchURL = %s, want https://search.example.com/q", cfg.Check.SearchURL)
		}
		if cfg.Check.PageLoadTimeout != 30*time.Second {
			t.Errorf("Check.PageLoadTimeout = %v, want 30s", cfg.Check.PageLoadTimeout)
		}
		if cfg.Check.ElementTimeout != 10*time.Second {
			t.Errorf("Check.ElementTimeout = %v, want 10s", cfg.Check.ElementTimeout)
		}
		if cfg.Check.ScreenshotDir != "/tmp/shots" {
			t.Errorf("Check.ScreenshotDir = %s, want /tmp/shots", cfg.Check.ScreenshotDir)
		}
		if cfg.RateLimit.Provider != 120 {
			t.Errorf("RateLimit.Provider = %d, want 120", cfg.RateLimit.Provider)
		}
	})

	t.Run("flags override environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("WEATHERCHECK_CHECK_ELEMENT_TIMEOUT", "10s")
		defer cleanupEnv()

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.Duration("element-timeout", 0, "")
		fs.String("driver", "", "")
		if err := fs.Parse([]string{"--element-timeout=7s", "--driver=chromedp"}); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		cfg, err := LoadWithFlags(fs)
		if err != nil {
			t.Fatalf("LoadWithFlags() error = %v, want nil", err)
		}
		if cfg.Check.ElementTimeout != 7*time.Second {
			t.Errorf("Check.ElementTimeout = %v, want 7s", cfg.Check.ElementTimeout)
		}
		if cfg.Browser.Driver != DriverChromedp {
			t.Errorf("Browser.Driver = %s, want chromedp", cfg.Browser.Driver)
		}
	})

	t.Run("unset flags keep defaults", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.Duration("page-timeout", 0, "")
		if err := fs.Parse(nil); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		cfg, err := LoadWithFlags(fs)
		if err != nil {
			t.Fatalf("LoadWithFlags() error = %v, want nil", err)
		}
		if cfg.Check.PageLoadTimeout != 15*time.Second {
			t.Errorf("Check.PageLoadTimeout = %v, want 15s", cfg.Check.PageLoadTimeout)
		}
	})

	t.Run("fails validation for invalid driver", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("WEATHERCHECK_BROWSER_DRIVER", "netscape")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid driver")
		}
		if err != nil && err.Error() != "invalid configuration: browser driver must be 'selenium', 'chromedp' or 'rod', got: netscape" {
			t.Errorf("Load() error = %v, want 'browser driver must be ...'", err)
		}
	})

	t.Run("fails validation for non-positive page load timeout", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("WEATHERCHECK_CHECK_PAGE_LOAD_TIMEOUT", "0s")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for zero page load timeout")
		}
	})

	t.Run("fails validation for unsupported match mode", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("WEATHERCHECK_CHECK_MATCH_MODE", "exact")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for unsupported match mode")
		}
	})

	t.Run("fails validation for out of range driver port", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("WEATHERCHECK_BROWSER_PORT", "70000")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for driver port")
		}
	})

	t.Run("rod is a valid driver", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("WEATHERCHECK_BROWSER_DRIVER", "rod")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Browser.Driver != DriverRod {
			t.Errorf("Browser.Driver = %s, want rod", cfg.Browser.Driver)
		}
	})

	t.Run("chromedp does not require a driver port", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("WEATHERCHECK_BROWSER_DRIVER", "chromedp")
		os.Setenv("WEATHERCHECK_BROWSER_PORT", "0")
		defer cleanupEnv()

		if _, err := Load(); err != nil {
			t.Errorf("Load() error = %v, want nil", err)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		envContent := `
# Comment line
TEST_VAR_1=value1
export TEST_VAR_2="value2"

# Another comment
TEST_VAR_3=value3
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
			os.Unsetenv("TEST_VAR_3")
		}()

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}
	})

	t.Run("handles inline comments and single quotes", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		envContent := "TEST_VAR_DIR=/tmp/shots # screenshots\nTEST_VAR_UA='Mozilla \"5.0\"'\n"
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_DIR")
		os.Unsetenv("TEST_VAR_UA")
		defer func() {
			os.Unsetenv("TEST_VAR_DIR")
			os.Unsetenv("TEST_VAR_UA")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}
		if os.Getenv("TEST_VAR_DIR") != "/tmp/shots" {
			t.Errorf("TEST_VAR_DIR = %q, want /tmp/shots", os.Getenv("TEST_VAR_DIR"))
		}
		if os.Getenv("TEST_VAR_UA") != `Mozilla "5.0"` {
			t.Errorf("TEST_VAR_UA = %q, want Mozilla \"5.0\"", os.Getenv("TEST_VAR_UA"))
		}
	})

	t.Run("does not override existing variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		if err := os.WriteFile(".env", []byte("TEST_VAR_KEEP=from-file\n"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Setenv("TEST_VAR_KEEP", "from-env")
		defer os.Unsetenv("TEST_VAR_KEEP")

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}
		if os.Getenv("TEST_VAR_KEEP") != "from-env" {
			t.Errorf("TEST_VAR_KEEP = %s, want from-env", os.Getenv("TEST_VAR_KEEP"))
		}
	})
}
