package domain

import "context"

// BrowserSession is an exclusively owned browser instance used to load and inspect one page.
// Close terminates the browser process and must be called on every path.
type BrowserSession interface {
	// FetchCondition loads pageURL and returns the displayed weather condition text.
	// Page load failures wrap ErrFetchTimeout, missing markup wraps ErrElementNotFound.
	FetchCondition(ctx context.Context, pageURL string) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// SelectorMissNotifier is implemented by sessions that can report the moment every
// primary condition selector has missed, before any fallback lookup runs.
type SelectorMissNotifier interface {
	OnSelectorsMissed(fn func(ctx context.Context))
}

// BrowserLauncher starts browser sessions. Launch failures wrap ErrEnvironment.
type BrowserLauncher interface {
	Launch(ctx context.Context) (BrowserSession, error)
}
