package browser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/weathercheck/agent/config"
)

// defaultPollInterval is how often the page is re-inspected while waiting for the condition element
const defaultPollInterval = 250 * time.Millisecond

// Options configures a browser launcher
type Options struct {
	DriverPath      string
	Port            int
	BinaryPath      string
	Headless        bool
	UserAgent       string
	WindowSize      string // "width,height"
	PageLoadTimeout time.Duration
	ElementTimeout  time.Duration
	PollInterval    time.Duration
	Selectors       []Selector
	Debug           bool
}

// OptionsFromConfig builds launcher options from application configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DriverPath:      cfg.Browser.DriverPath,
		Port:            cfg.Browser.Port,
		BinaryPath:      cfg.Browser.BinaryPath,
		Headless:        cfg.Browser.Headless,
		UserAgent:       cfg.Browser.UserAgent,
		WindowSize:      cfg.Browser.WindowSize,
		PageLoadTimeout: cfg.Check.PageLoadTimeout,
		ElementTimeout:  cfg.Check.ElementTimeout,
		Debug:           cfg.Check.Debug,
	}
}

// withDefaults fills zero values
func (o Options) withDefaults() Options {
	if o.PageLoadTimeout <= 0 {
		o.PageLoadTimeout = 15 * time.Second
	}
	if o.ElementTimeout <= 0 {
		o.ElementTimeout = 5 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if len(o.Selectors) == 0 {
		o.Selectors = DefaultSelectors
	}
	return o
}

// chromeArgs returns the Chrome command-line switches for a scraping session
func (o Options) chromeArgs() []string {
	args := []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
	}
	if o.Headless {
		args = append(args, "--headless=new")
	}
	if w, h, err := parseWindowSize(o.WindowSize); err == nil {
		args = append(args, fmt.Sprintf("--window-size=%d,%d", w, h))
	}
	if o.UserAgent != "" {
		args = append(args, "--user-agent="+o.UserAgent)
	}
	return args
}

// parseWindowSize parses "1920,1080" (or "1920x1080") into width and height
func parseWindowSize(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty window size")
	}

	sep := ","
	if !strings.Contains(s, sep) {
		sep = "x"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid window size %q", s)
	}

	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid window width in %q", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid window height in %q", s)
	}
	return w, h, nil
}
