package browser

import (
	"fmt"

	"github.com/weathercheck/agent/config"
	"github.com/weathercheck/agent/internal/domain"
)

// NewLauncher returns the browser launcher selected by cfg.Browser.Driver
func NewLauncher(cfg *config.Config) (domain.BrowserLauncher, error) {
	opts := OptionsFromConfig(cfg)

	switch cfg.Browser.Driver {
	case config.DriverSelenium:
		return NewSeleniumLauncher(opts), nil
	case config.DriverChromedp:
		return NewChromedpLauncher(opts), nil
	case config.DriverRod:
		return NewRodLauncher(opts), nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q", cfg.Browser.Driver)
	}
}
