package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"github.com/weathercheck/agent/internal/domain"
)

// driverService is the running ChromeDriver process
type driverService interface {
	Stop() error
}

// SeleniumLauncher starts a local ChromeDriver and opens a WebDriver session per launch
type SeleniumLauncher struct {
	opts       Options
	newService func(path string, port int, opts ...selenium.ServiceOption) (driverService, error)
	newRemote  func(caps selenium.Capabilities, urlPrefix string) (selenium.WebDriver, error)
}

// NewSeleniumLauncher creates a launcher backed by ChromeDriver
func NewSeleniumLauncher(opts Options) *SeleniumLauncher {
	return &SeleniumLauncher{
		opts: opts.withDefaults(),
		newService: func(path string, port int, opts ...selenium.ServiceOption) (driverService, error) {
			service, err := selenium.NewChromeDriverService(path, port, opts...)
			if err != nil {
				return nil, err
			}
			return service, nil
		},
		newRemote: selenium.NewRemote,
	}
}

// Launch starts ChromeDriver and a headless Chrome session
func (l *SeleniumLauncher) Launch(ctx context.Context) (domain.BrowserSession, error) {
	var serviceOpts []selenium.ServiceOption
	if l.opts.Debug {
		serviceOpts = append(serviceOpts, selenium.Output(os.Stderr))
		log.Printf("[Browser] Starting ChromeDriver %s on port %d", l.opts.DriverPath, l.opts.Port)
	}

	service, err := l.newService(l.opts.DriverPath, l.opts.Port, serviceOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot start ChromeDriver %q (check that ChromeDriver is installed): %v",
			domain.ErrEnvironment, l.opts.DriverPath, err)
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Path: l.opts.BinaryPath,
		Args: l.opts.chromeArgs(),
		W3C:  true,
	})

	wd, err := l.newRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", l.opts.Port))
	if err != nil {
		if serr := service.Stop(); serr != nil {
			log.Printf("[Browser] Failed to stop ChromeDriver: %v", serr)
		}
		return nil, fmt.Errorf("%w: cannot start Chrome (check that Chrome is installed): %v",
			domain.ErrEnvironment, err)
	}

	return &seleniumSession{wd: wd, service: service, opts: l.opts}, nil
}

// seleniumSession is one WebDriver session plus the driver process that owns it
type seleniumSession struct {
	missHook

	wd      selenium.WebDriver
	service driverService
	opts    Options

	closeOnce sync.Once
	closeErr  error
}

// FetchCondition navigates to pageURL and extracts the weather condition text
func (s *seleniumSession) FetchCondition(ctx context.Context, pageURL string) (string, error) {
	if err := s.wd.SetPageLoadTimeout(s.opts.PageLoadTimeout); err != nil && s.opts.Debug {
		log.Printf("[Browser] Cannot set page load timeout: %v", err)
	}

	if err := s.wd.Get(pageURL); err != nil {
		return "", fmt.Errorf("%w: loading %s: %v", domain.ErrFetchTimeout, pageURL, err)
	}

	return extractCondition(ctx, s, s.opts.Selectors, s.opts.ElementTimeout, s.opts.PollInterval, s.opts.Debug)
}

// FirstText implements elementFinder
func (s *seleniumSession) FirstText(ctx context.Context, sel Selector) (string, error) {
	by, err := seleniumBy(sel.By)
	if err != nil {
		return "", err
	}

	elems, err := s.wd.FindElements(by, sel.Value)
	if err != nil {
		return "", err
	}

	for _, elem := range elems {
		text, err := elem.Text()
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return "", nil
}

// Title implements elementFinder
func (s *seleniumSession) Title(ctx context.Context) (string, error) {
	return s.wd.Title()
}

// Screenshot captures the current viewport as PNG
func (s *seleniumSession) Screenshot(ctx context.Context) ([]byte, error) {
	return s.wd.Screenshot()
}

// Close quits the browser and stops ChromeDriver. Safe to call more than once.
func (s *seleniumSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.wd.Quit(); err != nil {
			errs = append(errs, fmt.Errorf("quit browser: %w", err))
		}
		if err := s.service.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop ChromeDriver: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// seleniumBy maps a selector strategy to its WebDriver constant
func seleniumBy(by string) (string, error) {
	switch by {
	case ByID:
		return selenium.ByID, nil
	case ByCSS:
		return selenium.ByCSSSelector, nil
	case ByXPath:
		return selenium.ByXPATH, nil
	default:
		return "", fmt.Errorf("unsupported selector strategy %q", by)
	}
}
