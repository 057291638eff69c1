// Package cli renders weather check outcomes for the terminal.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/weathercheck/agent/internal/domain"
)

// Exit codes
const (
	ExitOK           = 0  // comparison done, match or not
	ExitEnvironment  = 1  // browser or driver unavailable
	ExitUndetermined = 2  // page failed to load or the condition was not found
	ExitUsage        = 64 // bad command line
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

const separator = "--------------------------------------------------"

// Report is the JSON document written with --output json
type Report struct {
	Status string                     `json:"status"` // "match", "no_match", "undetermined" or "error"
	Result *domain.WeatherCheckResult `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

// ExitCode maps a check outcome to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrInvalidRequest):
		return ExitUsage
	case errors.Is(err, domain.ErrEnvironment):
		return ExitEnvironment
	default:
		return ExitUndetermined
	}
}

// status classifies an outcome for the JSON report
func status(result *domain.WeatherCheckResult, err error) string {
	switch {
	case err != nil && domain.IsPageFailure(err):
		return "undetermined"
	case err != nil:
		return "error"
	case result != nil && result.IsMatch:
		return "match"
	default:
		return "no_match"
	}
}

// Reporter writes check outcomes in the configured format
type Reporter struct {
	w      io.Writer
	format string
}

// NewReporter creates a reporter; unknown formats fall back to text
func NewReporter(w io.Writer, format string) *Reporter {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatJSON {
		format = FormatText
	}
	return &Reporter{w: w, format: format}
}

// Start announces a check in text mode
func (r *Reporter) Start(city, expected string) {
	if r.format != FormatText {
		return
	}
	fmt.Fprintln(r.w, "Weather Checker Agent Started")
	fmt.Fprintf(r.w, "Checking if the weather in %s is %s...\n", city, expected)
	fmt.Fprintln(r.w, separator)
}

// Write reports result and err
func (r *Reporter) Write(result *domain.WeatherCheckResult, err error) error {
	if r.format == FormatJSON {
		return r.writeJSON(result, err)
	}
	r.writeText(result, err)
	return nil
}

func (r *Reporter) writeJSON(result *domain.WeatherCheckResult, err error) error {
	report := Report{Status: status(result, err), Result: result}
	if err != nil {
		report.Error = err.Error()
	}

	data, merr := json.MarshalIndent(report, "", "  ")
	if merr != nil {
		return fmt.Errorf("failed to encode report: %w", merr)
	}
	_, werr := fmt.Fprintln(r.w, string(data))
	return werr
}

func (r *Reporter) writeText(result *domain.WeatherCheckResult, err error) {
	switch {
	case err != nil && errors.Is(err, domain.ErrEnvironment):
		fmt.Fprintf(r.w, "Environment error: %v\n", err)
		fmt.Fprintln(r.w, "Check that Chrome and ChromeDriver are installed and on your PATH.")
	case err != nil && errors.Is(err, domain.ErrInvalidRequest):
		fmt.Fprintf(r.w, "Invalid input: %v\n", err)
	case err != nil:
		city := ""
		if result != nil {
			city = result.City
		}
		fmt.Fprintf(r.w, "Could not determine weather for %s: %v\n", city, err)
		fmt.Fprintln(r.w, "Match:    false")
	default:
		fmt.Fprintf(r.w, "City:     %s\n", result.City)
		fmt.Fprintf(r.w, "Expected: %s\n", result.ExpectedCondition)
		fmt.Fprintf(r.w, "Observed: %s\n", result.Observed())
		fmt.Fprintf(r.w, "Match:    %v\n", result.IsMatch)
		if result.IsMatch {
			fmt.Fprintln(r.w, "✅ Weather matches your expectation!")
		} else {
			fmt.Fprintln(r.w, "❌ Weather doesn't match your expectation.")
		}
	}

	if result != nil && result.Screenshot != "" {
		fmt.Fprintf(r.w, "Screenshot saved as %s\n", result.Screenshot)
	}
	fmt.Fprintln(r.w, separator)
	fmt.Fprintln(r.w, "Weather Checker Agent Completed")
}
