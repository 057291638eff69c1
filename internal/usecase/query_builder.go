package usecase

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultSearchURL is the search page queried for "weather <city>"
const DefaultSearchURL = "https://www.google.com/search"

// normalizeCity trims the city name and collapses internal whitespace.
func normalizeCity(city string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(city, " "))
}

// BuildSearchURL builds the provider URL for a city's weather, e.g.
// "https://www.google.com/search?q=weather+New+York". Existing query parameters on
// baseURL are preserved; language, when set, is sent as "hl".
func BuildSearchURL(baseURL, city, language string) (string, error) {
	if baseURL == "" {
		baseURL = DefaultSearchURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid search URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid search URL %q: scheme and host are required", baseURL)
	}

	params := u.Query()
	params.Set("q", "weather "+normalizeCity(city))
	if language != "" {
		params.Set("hl", language)
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// screenshotName turns a city into a file-name friendly stem: "New York" -> "New_York".
func screenshotName(city, suffix string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, normalizeCity(city))
	stem = strings.ReplaceAll(stem, " ", "_")
	if stem == "" {
		stem = "unknown"
	}
	return fmt.Sprintf("%s_%s.png", stem, suffix)
}
