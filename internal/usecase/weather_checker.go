package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/weathercheck/agent/internal/domain"
)

// WeatherCheckerConfig holds configuration for the weather checker
type WeatherCheckerConfig struct {
	SearchURL               string
	Language                string
	ScreenshotDir           string // empty disables screenshots
	ProviderRequestsPerHour int
	// MaxProviderWait is how long a check may wait for the provider limiter.
	// Zero rejects an over-limit check at once with domain.ErrRateLimited.
	MaxProviderWait    time.Duration
	EnableDebugLogging bool
}

// WeatherChecker performs one browser-driven weather lookup per call and compares
// the displayed condition with the caller's expectation.
type WeatherChecker struct {
	launcher      domain.BrowserLauncher
	searchURL     string
	language      string
	screenshotDir string
	rateLimiter   *rate.Limiter
	maxWait       time.Duration
	debug         bool
	now           func() time.Time
}

// NewWeatherChecker creates a new weather checker with dependencies
func NewWeatherChecker(launcher domain.BrowserLauncher, config WeatherCheckerConfig) *WeatherChecker {
	searchURL := config.SearchURL
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}

	perHour := config.ProviderRequestsPerHour
	if perHour <= 0 {
		perHour = 60 // Default one search per minute on average
	}

	return &WeatherChecker{
		launcher:      launcher,
		searchURL:     searchURL,
		language:      config.Language,
		screenshotDir: config.ScreenshotDir,
		rateLimiter:   rate.NewLimiter(rate.Limit(float64(perHour)/3600), 1),
		maxWait:       config.MaxProviderWait,
		debug:         config.EnableDebugLogging,
		now:           time.Now,
	}
}

// Check looks up the current weather condition for city and compares it with expected.
//
// Flow: validate -> rate limit -> launch browser -> fetch condition -> compare -> close browser.
// The browser session is released on every path. Launch failures return a nil result and
// an error wrapping domain.ErrEnvironment. Page failures (domain.ErrFetchTimeout,
// domain.ErrElementNotFound) return a negative result with no observed condition
// alongside the error so the caller can still report it. There are no retries.
func (s *WeatherChecker) Check(ctx context.Context, city, expected string) (*domain.WeatherCheckResult, error) {
	request := &domain.CheckRequest{City: city, ExpectedCondition: expected}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	city = normalizeCity(city)
	expected = strings.TrimSpace(expected)

	pageURL, err := BuildSearchURL(s.searchURL, city, s.language)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	result := &domain.WeatherCheckResult{
		CheckID:           ulid.Make().String(),
		City:              city,
		ExpectedCondition: expected,
		CheckedAt:         s.now().UTC(),
	}

	if err := s.waitForProvider(ctx); err != nil {
		log.Printf("[Checker] Provider rate limited: %v", err)
		return s.fail(result, fmt.Errorf("%w: %v", domain.ErrRateLimited, err))
	}

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrEnvironment) {
			err = fmt.Errorf("%w: %v", domain.ErrEnvironment, err)
		}
		log.Printf("[Checker] Browser launch failed: %v", err)
		return nil, err
	}
	if notifier, ok := session.(domain.SelectorMissNotifier); ok && s.screenshotDir != "" {
		notifier.OnSelectorsMissed(func(ctx context.Context) {
			s.saveScreenshot(ctx, session, result.City, "debug")
		})
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Printf("[Checker] Failed to close browser session: %v", cerr)
		} else if s.debug {
			log.Printf("[Checker] Browser closed")
		}
	}()

	if s.debug {
		log.Printf("[Checker] %s navigating to %s", result.CheckID, pageURL)
	}

	observed, err := session.FetchCondition(ctx, pageURL)
	if err == nil && strings.TrimSpace(observed) == "" {
		err = fmt.Errorf("%w: empty condition text", domain.ErrElementNotFound)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrFetchTimeout) && !errors.Is(err, domain.ErrElementNotFound) {
			err = fmt.Errorf("%w: %v", domain.ErrFetchTimeout, err)
		}
		log.Printf("[Checker] Could not determine weather for %q: %v", city, err)
		s.captureScreenshot(ctx, session, result, "error")
		return s.fail(result, err)
	}

	observed = strings.TrimSpace(observed)
	result.ObservedCondition = &observed
	result.IsMatch = MatchCondition(observed, expected)

	log.Printf("[Checker] Current weather in %q: %q (expected %q, match=%v)", city, observed, expected, result.IsMatch)

	s.captureScreenshot(ctx, session, result, "weather")

	return result, nil
}

// waitForProvider takes a provider token, waiting at most maxWait for one
func (s *WeatherChecker) waitForProvider(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	reservation := s.rateLimiter.Reserve()
	if !reservation.OK() {
		return errors.New("provider limit has no capacity")
	}

	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}
	if delay > s.maxWait {
		reservation.Cancel()
		return fmt.Errorf("next search allowed in %s", delay.Round(time.Second))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	}
}

// fail records err on a negative result.
func (s *WeatherChecker) fail(result *domain.WeatherCheckResult, err error) (*domain.WeatherCheckResult, error) {
	result.ObservedCondition = nil
	result.IsMatch = false
	result.Error = err.Error()
	return result, err
}

// captureScreenshot saves the current page when a screenshot directory is configured.
// Failures are logged and never change the result outcome.
func (s *WeatherChecker) captureScreenshot(ctx context.Context, session domain.BrowserSession, result *domain.WeatherCheckResult, suffix string) {
	if s.screenshotDir == "" {
		return
	}
	if path := s.saveScreenshot(ctx, session, result.City, suffix); path != "" {
		result.Screenshot = path
	}
}

// saveScreenshot writes the current page as <city>_<suffix>.png and returns its path,
// or "" when the capture failed
func (s *WeatherChecker) saveScreenshot(ctx context.Context, session domain.BrowserSession, city, suffix string) string {
	data, err := session.Screenshot(ctx)
	if err != nil {
		log.Printf("[Checker] Screenshot failed: %v", err)
		return ""
	}

	if err := os.MkdirAll(s.screenshotDir, 0o755); err != nil {
		log.Printf("[Checker] Cannot create screenshot directory %s: %v", s.screenshotDir, err)
		return ""
	}

	path := filepath.Join(s.screenshotDir, screenshotName(city, suffix))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("[Checker] Cannot write screenshot %s: %v", path, err)
		return ""
	}

	log.Printf("[Checker] Screenshot saved as %s", path)
	return path
}
