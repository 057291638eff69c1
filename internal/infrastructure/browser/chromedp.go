package browser

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/weathercheck/agent/internal/domain"
)

// ChromedpLauncher starts Chrome directly over the DevTools protocol, no driver binary needed
type ChromedpLauncher struct {
	opts Options
}

// NewChromedpLauncher creates a launcher backed by chromedp
func NewChromedpLauncher(opts Options) *ChromedpLauncher {
	return &ChromedpLauncher{opts: opts.withDefaults()}
}

// allocatorOptions returns the exec allocator flags for a scraping session
func (l *ChromedpLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.opts.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if l.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.opts.UserAgent))
	}
	if w, h, err := parseWindowSize(l.opts.WindowSize); err == nil {
		opts = append(opts, chromedp.WindowSize(w, h))
	}
	if l.opts.BinaryPath != "" {
		opts = append(opts, chromedp.ExecPath(l.opts.BinaryPath))
	}
	return opts
}

// Launch starts a Chrome process and opens a tab
func (l *ChromedpLauncher) Launch(ctx context.Context) (domain.BrowserSession, error) {
	// The session outlives ctx; per-call contexts are bound in FetchCondition.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), l.allocatorOptions()...)

	var contextOpts []chromedp.ContextOption
	if l.opts.Debug {
		contextOpts = append(contextOpts, chromedp.WithLogf(log.Printf))
	}
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, contextOpts...)

	// The browser process only starts on the first Run.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%w: cannot start Chrome (check that Chrome is installed): %v", domain.ErrEnvironment, err)
	}

	return &chromedpSession{
		ctx:         browserCtx,
		cancelAlloc: cancelAlloc,
		opts:        l.opts,
	}, nil
}

// chromedpSession is one Chrome process with a single tab
type chromedpSession struct {
	missHook

	ctx         context.Context
	cancelAlloc context.CancelFunc
	opts        Options

	closeOnce sync.Once
	closeErr  error
}

// bind derives a browser context that is also cancelled when ctx is done
func (s *chromedpSession) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// FetchCondition navigates to pageURL and extracts the weather condition text
func (s *chromedpSession) FetchCondition(ctx context.Context, pageURL string) (string, error) {
	runCtx, cancel := s.bind(ctx)
	defer cancel()

	loadCtx, cancelLoad := context.WithTimeout(runCtx, s.opts.PageLoadTimeout)
	defer cancelLoad()

	if err := chromedp.Run(loadCtx, chromedp.Navigate(pageURL)); err != nil {
		return "", fmt.Errorf("%w: loading %s: %v", domain.ErrFetchTimeout, pageURL, err)
	}

	return extractCondition(runCtx, s, s.opts.Selectors, s.opts.ElementTimeout, s.opts.PollInterval, s.opts.Debug)
}

// FirstText implements elementFinder
func (s *chromedpSession) FirstText(ctx context.Context, sel Selector) (string, error) {
	query, by, err := chromedpQuery(sel)
	if err != nil {
		return "", err
	}

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(query, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return "", err
	}

	for _, node := range nodes {
		var text string
		if err := chromedp.Run(ctx, chromedp.Text([]cdp.NodeID{node.NodeID}, &text, chromedp.ByNodeID)); err != nil {
			continue
		}
		if cleanConditionText(text) != "" {
			return text, nil
		}
	}
	return "", nil
}

// Title implements elementFinder
func (s *chromedpSession) Title(ctx context.Context) (string, error) {
	var title string
	if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// Screenshot captures the current viewport as PNG
func (s *chromedpSession) Screenshot(ctx context.Context) ([]byte, error) {
	runCtx, cancel := s.bind(ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close shuts the browser down and releases the allocator. Safe to call more than once.
func (s *chromedpSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = chromedp.Cancel(s.ctx)
		s.cancelAlloc()
	})
	return s.closeErr
}

// chromedpQuery maps a selector to a chromedp query and option
func chromedpQuery(sel Selector) (string, chromedp.QueryOption, error) {
	switch sel.By {
	case ByID:
		return "#" + sel.Value, chromedp.ByQuery, nil
	case ByCSS:
		return sel.Value, chromedp.ByQuery, nil
	case ByXPath:
		return sel.Value, chromedp.BySearch, nil
	default:
		return "", nil, fmt.Errorf("unsupported selector strategy %q", sel.By)
	}
}
