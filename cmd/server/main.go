package main

import (
	"fmt"
	"log"
	"os"

	"github.com/weathercheck/agent/config"
	httpDelivery "github.com/weathercheck/agent/internal/delivery/http"
	"github.com/weathercheck/agent/internal/infrastructure/browser"
	"github.com/weathercheck/agent/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Weather Check Service v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	launcher, err := browser.NewLauncher(cfg)
	if err != nil {
		log.Fatalf("Failed to configure browser: %v", err)
	}

	if cfg.Browser.Driver == config.DriverSelenium {
		log.Printf("Browser: selenium via %s on port %d (headless=%v)", cfg.Browser.DriverPath, cfg.Browser.Port, cfg.Browser.Headless)
	} else {
		log.Printf("Browser: %s (headless=%v)", cfg.Browser.Driver, cfg.Browser.Headless)
	}

	// Enable debug logging in development environment
	debug := cfg.Check.Debug || cfg.Server.Environment == "development"

	// Initialize usecase layer
	checker := usecase.NewWeatherChecker(
		launcher,
		usecase.WeatherCheckerConfig{
			SearchURL:               cfg.Check.SearchURL,
			Language:                cfg.Check.Language,
			ScreenshotDir:           cfg.Check.ScreenshotDir,
			ProviderRequestsPerHour: cfg.RateLimit.Provider,
			EnableDebugLogging:      debug,
		},
	)

	log.Printf("Check: search=%s, page timeout=%s, element timeout=%s, match=%s, debug=%v",
		cfg.Check.SearchURL,
		cfg.Check.PageLoadTimeout,
		cfg.Check.ElementTimeout,
		cfg.Check.MatchMode,
		debug)

	if cfg.Check.ScreenshotDir != "" {
		log.Printf("Screenshots: %s", cfg.Check.ScreenshotDir)
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(checker)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
