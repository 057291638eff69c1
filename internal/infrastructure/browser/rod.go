package browser

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/weathercheck/agent/internal/domain"
)

// RodLauncher starts Chrome through go-rod's launcher and drives it over CDP
type RodLauncher struct {
	opts Options
	// lookPath finds a local Chrome when no binary is configured
	lookPath func() (string, bool)
}

// NewRodLauncher creates a launcher backed by go-rod
func NewRodLauncher(opts Options) *RodLauncher {
	return &RodLauncher{opts: opts.withDefaults(), lookPath: launcher.LookPath}
}

// newBrowserLauncher configures the Chrome process for bin
func (l *RodLauncher) newBrowserLauncher(ctx context.Context, bin string) *launcher.Launcher {
	lc := launcher.New().
		Context(ctx).
		Bin(bin).
		Leakless(false).
		Headless(l.opts.Headless).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	if w, h, err := parseWindowSize(l.opts.WindowSize); err == nil {
		lc = lc.Set("window-size", strconv.Itoa(w)+","+strconv.Itoa(h))
	}
	if l.opts.UserAgent != "" {
		lc = lc.Set("user-agent", l.opts.UserAgent)
	}
	return lc
}

// Launch starts Chrome and opens a blank page. Chrome is never downloaded.
func (l *RodLauncher) Launch(ctx context.Context) (domain.BrowserSession, error) {
	bin := l.opts.BinaryPath
	if bin == "" {
		found, ok := l.lookPath()
		if !ok {
			return nil, fmt.Errorf("%w: Chrome not found (set browser.binary_path)", domain.ErrEnvironment)
		}
		bin = found
	}

	// The browser outlives ctx; per-call contexts are applied to the page.
	lc := l.newBrowserLauncher(context.WithoutCancel(ctx), bin)
	controlURL, err := lc.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot start Chrome at %s: %v", domain.ErrEnvironment, bin, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		lc.Kill()
		return nil, fmt.Errorf("%w: cannot connect to Chrome: %v", domain.ErrEnvironment, err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		lc.Kill()
		return nil, fmt.Errorf("%w: cannot open a page: %v", domain.ErrEnvironment, err)
	}

	if l.opts.Debug {
		log.Printf("[Browser] rod connected to %s", controlURL)
	}

	return &rodSession{browser: browser, page: page, launcher: lc, opts: l.opts}, nil
}

// rodSession is one Chrome process with a single page
type rodSession struct {
	missHook

	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	opts     Options

	closeOnce sync.Once
	closeErr  error
}

// FetchCondition navigates to pageURL and extracts the weather condition text
func (s *rodSession) FetchCondition(ctx context.Context, pageURL string) (string, error) {
	if err := loadPage(s.page.Context(ctx).Timeout(s.opts.PageLoadTimeout), pageURL); err != nil {
		return "", err
	}

	return extractCondition(ctx, s, s.opts.Selectors, s.opts.ElementTimeout, s.opts.PollInterval, s.opts.Debug)
}

// pageLoader is the part of a timeout-bound *rod.Page used to load a URL
type pageLoader interface {
	Navigate(url string) error
	WaitLoad() error
	CancelTimeout() *rod.Page
}

// loadPage navigates p to pageURL and waits for the load event, then releases
// the page timeout
func loadPage(p pageLoader, pageURL string) error {
	defer p.CancelTimeout()

	if err := p.Navigate(pageURL); err != nil {
		return fmt.Errorf("%w: loading %s: %v", domain.ErrFetchTimeout, pageURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: waiting for %s: %v", domain.ErrFetchTimeout, pageURL, err)
	}
	return nil
}

// FirstText implements elementFinder
func (s *rodSession) FirstText(ctx context.Context, sel Selector) (string, error) {
	page := s.page.Context(ctx)

	var (
		elements rod.Elements
		err      error
	)
	switch sel.By {
	case ByID:
		elements, err = page.Elements("#" + sel.Value)
	case ByCSS:
		elements, err = page.Elements(sel.Value)
	case ByXPath:
		elements, err = page.ElementsX(sel.Value)
	default:
		return "", fmt.Errorf("unsupported selector strategy %q", sel.By)
	}
	if err != nil {
		return "", err
	}

	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if cleanConditionText(text) != "" {
			return text, nil
		}
	}
	return "", nil
}

// Title implements elementFinder
func (s *rodSession) Title(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// Screenshot captures the current viewport as PNG
func (s *rodSession) Screenshot(ctx context.Context) ([]byte, error) {
	return s.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// Close shuts the browser down and kills the process. Safe to call more than once.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.browser.Close()
		s.launcher.Kill()
	})
	return s.closeErr
}
