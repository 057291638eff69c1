package browser

import (
	"context"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathercheck/agent/internal/domain"
)

func TestChromedpQuery(t *testing.T) {
	tests := []struct {
		name  string
		sel   Selector
		query string
	}{
		{"id becomes css", Selector{By: ByID, Value: "wob_dc"}, "#wob_dc"},
		{"css passes through", Selector{By: ByCSS, Value: ".wob_dc"}, ".wob_dc"},
		{"xpath passes through", Selector{By: ByXPath, Value: "//div[@id='wob_dcp']/div"}, "//div[@id='wob_dcp']/div"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, by, err := chromedpQuery(tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.query, query)
			assert.NotNil(t, by)
		})
	}

	_, _, err := chromedpQuery(Selector{By: "link text", Value: "Weather"})
	assert.Error(t, err)
}

func TestChromedpLauncher_AllocatorOptions(t *testing.T) {
	base := len(chromedp.DefaultExecAllocatorOptions)

	l := NewChromedpLauncher(Options{})
	assert.Len(t, l.allocatorOptions(), base+4)

	l = NewChromedpLauncher(Options{UserAgent: "ua", WindowSize: "800,600", BinaryPath: "/usr/bin/chromium"})
	assert.Len(t, l.allocatorOptions(), base+7)
}

func TestChromedpLauncher_LaunchMissingBrowser(t *testing.T) {
	l := NewChromedpLauncher(Options{BinaryPath: "/nonexistent/chrome", Headless: true})

	_, err := l.Launch(context.Background())
	assert.ErrorIs(t, err, domain.ErrEnvironment)
}
