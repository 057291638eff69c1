package browser

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/weathercheck/agent/internal/domain"
)

// Selector location strategies. The values are the WebDriver strategy names.
const (
	ByID    = "id"
	ByCSS   = "css selector"
	ByXPath = "xpath"
)

// maxConditionLength bounds text accepted from the vocabulary fallback
const maxConditionLength = 40

// Selector locates the weather condition element on the results page
type Selector struct {
	By    string
	Value string
}

func (s Selector) String() string {
	return fmt.Sprintf("%s=%s", s.By, s.Value)
}

// DefaultSelectors are tried in order on every poll. The weather card markup is not
// under our control; keep the most specific selectors first.
var DefaultSelectors = []Selector{
	{By: ByID, Value: "wob_dc"},
	{By: ByCSS, Value: ".wob_dc"},
	{By: ByXPath, Value: "//div[@id='wob_dcp']/div"},
	{By: ByCSS, Value: "[data-local-attribute='weather-condition']"},
	{By: ByXPath, Value: "//div[@class='UQt4rd']"},
}

// conditionVocabulary lists common condition words used by the fallback scans
var conditionVocabulary = []string{
	"sunny", "cloudy", "rain", "partly", "clear", "storm",
	"snow", "fog", "mist", "drizzle", "overcast", "haze",
}

var spaceRegex = regexp.MustCompile(`\s+`)

// elementFinder is the DOM access an extraction needs from a browser session
type elementFinder interface {
	// FirstText returns the text of the first element matching sel with non-blank text,
	// or "" when nothing matches.
	FirstText(ctx context.Context, sel Selector) (string, error)
	Title(ctx context.Context) (string, error)
}

// missHook runs a callback when every primary selector missed.
// Sessions embed it to satisfy domain.SelectorMissNotifier.
type missHook struct {
	fn func(ctx context.Context)
}

// OnSelectorsMissed registers fn; a nil fn clears it
func (h *missHook) OnSelectorsMissed(fn func(ctx context.Context)) {
	h.fn = fn
}

func (h *missHook) selectorsMissed(ctx context.Context) {
	if h.fn != nil {
		h.fn(ctx)
	}
}

// extractCondition polls selectors until one yields text or timeout elapses, then
// tries the vocabulary and page title fallbacks once.
func extractCondition(ctx context.Context, f elementFinder, selectors []Selector, timeout, interval time.Duration, debug bool) (string, error) {
	deadline := time.Now().Add(timeout)
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for {
		for _, sel := range selectors {
			text, err := f.FirstText(pollCtx, sel)
			if err != nil {
				if debug {
					log.Printf("[Browser] Selector %s failed: %v", sel, err)
				}
				continue
			}
			if text = cleanConditionText(text); text != "" {
				if debug {
					log.Printf("[Browser] Found weather condition using %s", sel)
				}
				return text, nil
			}
		}

		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrFetchTimeout, err)
		}
		if !time.Now().Add(interval).Before(deadline) {
			break
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", domain.ErrFetchTimeout, ctx.Err())
		case <-pollCtx.Done():
		case <-time.After(interval):
		}
		if pollCtx.Err() != nil {
			break
		}
	}

	if debug {
		log.Printf("[Browser] No selector matched within %s, trying fallbacks", timeout)
	}

	if h, ok := f.(interface{ selectorsMissed(context.Context) }); ok {
		h.selectorsMissed(ctx)
	}

	fallbackCtx, cancelFallback := context.WithTimeout(ctx, timeout)
	defer cancelFallback()

	for _, term := range conditionVocabulary {
		text, err := f.FirstText(fallbackCtx, vocabularySelector(term))
		if err != nil {
			continue
		}
		if text = cleanConditionText(text); text != "" && len(text) <= maxConditionLength {
			log.Printf("[Browser] Found likely weather condition: %q", text)
			return text, nil
		}
	}

	if title, err := f.Title(fallbackCtx); err == nil {
		if condition := conditionFromTitle(title); condition != "" {
			log.Printf("[Browser] Extracted condition from page title: %q", condition)
			return condition, nil
		}
	}

	return "", fmt.Errorf("%w: no selector matched within %s", domain.ErrElementNotFound, timeout)
}

// vocabularySelector finds a div whose own text contains term, ignoring case
func vocabularySelector(term string) Selector {
	return Selector{
		By: ByXPath,
		Value: fmt.Sprintf(
			"//div[contains(translate(text(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), '%s')]",
			term,
		),
	}
}

// conditionFromTitle extracts a condition from titles like "Sunny - Weather in Pune".
// Only a leading segment that carries a known condition word is accepted.
func conditionFromTitle(title string) string {
	if !strings.Contains(strings.ToLower(title), "weather") {
		return ""
	}
	parts := strings.Split(title, " - ")
	if len(parts) < 2 {
		return ""
	}
	first := cleanConditionText(parts[0])
	if !containsVocabulary(first) {
		return ""
	}
	return first
}

func containsVocabulary(s string) bool {
	lower := strings.ToLower(s)
	for _, term := range conditionVocabulary {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// cleanConditionText collapses whitespace and trims
func cleanConditionText(s string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}
