package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/weathercheck/agent/config"
	"github.com/weathercheck/agent/internal/delivery/cli"
	"github.com/weathercheck/agent/internal/domain"
	"github.com/weathercheck/agent/internal/infrastructure/browser"
	"github.com/weathercheck/agent/internal/usecase"
)

const usageText = `Usage: weathercheck [flags] <city> <expected_condition>

Example:
  weathercheck "Pune" "Sunny"

Flags:
`

// launcherFactory builds the browser launcher for a configuration
type launcherFactory func(cfg *config.Config) (domain.BrowserLauncher, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, browser.NewLauncher)
	stop()
	os.Exit(code)
}

// run executes one weather check and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer, newLauncher launcherFactory) int {
	fs := pflag.NewFlagSet("weathercheck", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}

	city := fs.String("city", "", "city to check (alternative to the first argument)")
	expected := fs.String("expected", "", "expected condition (alternative to the second argument)")
	output := fs.StringP("output", "o", cli.FormatText, "output format: text or json")
	fs.String("driver", "", "browser driver: selenium, chromedp or rod")
	fs.String("driver-path", "", "path to the ChromeDriver binary")
	fs.Int("driver-port", 0, "port for the ChromeDriver service")
	fs.String("browser-binary", "", "path to the Chrome binary")
	fs.Bool("headless", true, "run the browser without a window")
	fs.Duration("page-timeout", 0, "maximum time to wait for the page to load")
	fs.Duration("element-timeout", 0, "maximum time to wait for the weather element")
	fs.String("search-url", "", "search page URL")
	fs.String("screenshot-dir", "", "directory for page screenshots (disabled when empty)")
	fs.Bool("debug", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitUsage
	}

	positional := fs.Args()
	if *city == "" && len(positional) > 0 {
		*city, positional = positional[0], positional[1:]
	}
	if *expected == "" && len(positional) > 0 {
		*expected, positional = positional[0], positional[1:]
	}
	if *city == "" || *expected == "" || len(positional) > 0 {
		fs.Usage()
		return cli.ExitUsage
	}

	cfg, err := config.LoadWithFlags(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return cli.ExitUsage
	}

	reporter := cli.NewReporter(stdout, *output)

	launcher, err := newLauncher(cfg)
	if err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrEnvironment, err)
		if werr := reporter.Write(nil, err); werr != nil {
			log.Printf("Failed to write report: %v", werr)
		}
		return cli.ExitCode(err)
	}

	if cfg.Check.Debug {
		log.Printf("Browser driver: %s, page timeout: %s, element timeout: %s, match mode: %s",
			cfg.Browser.Driver, cfg.Check.PageLoadTimeout, cfg.Check.ElementTimeout, cfg.Check.MatchMode)
	}

	checker := usecase.NewWeatherChecker(launcher, usecase.WeatherCheckerConfig{
		SearchURL:               cfg.Check.SearchURL,
		Language:                cfg.Check.Language,
		ScreenshotDir:           cfg.Check.ScreenshotDir,
		ProviderRequestsPerHour: cfg.RateLimit.Provider,
		EnableDebugLogging:      cfg.Check.Debug,
	})

	reporter.Start(*city, *expected)
	result, err := checker.Check(ctx, *city, *expected)
	if werr := reporter.Write(result, err); werr != nil {
		log.Printf("Failed to write report: %v", werr)
	}

	return cli.ExitCode(err)
}

func init() {
	// Logs go to stderr so stdout carries only the report
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stderr)
}
