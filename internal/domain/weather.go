package domain

import (
	"fmt"
	"strings"
	"time"
)

// WeatherCheckResult is the outcome of a single weather check
type WeatherCheckResult struct {
	CheckID           string    `json:"checkId"`
	City              string    `json:"city"`
	ExpectedCondition string    `json:"expectedCondition"`
	ObservedCondition *string   `json:"observedCondition"` // nil when extraction failed
	IsMatch           bool      `json:"isMatch"`
	CheckedAt         time.Time `json:"checkedAt"`
	Screenshot        string    `json:"screenshot,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// Observed returns the observed condition or an empty string when none was extracted
func (r *WeatherCheckResult) Observed() string {
	if r == nil || r.ObservedCondition == nil {
		return ""
	}
	return *r.ObservedCondition
}

// CheckRequest represents a weather check request
type CheckRequest struct {
	City              string `json:"city" form:"city" binding:"required"`
	ExpectedCondition string `json:"expected" form:"expected" binding:"required"`
}

// Validate ensures both inputs carry non-blank text
func (r *CheckRequest) Validate() error {
	if r == nil {
		return ErrInvalidRequest
	}
	if strings.TrimSpace(r.City) == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.ExpectedCondition) == "" {
		return fmt.Errorf("%w: expected condition is required", ErrInvalidRequest)
	}
	return nil
}
