package http

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/weathercheck/agent/internal/domain"
)

// WeatherChecker is the usecase the handlers depend on
type WeatherChecker interface {
	Check(ctx context.Context, city, expected string) (*domain.WeatherCheckResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	checker WeatherChecker
	// checks run one at a time; every check owns its own browser session
	mu sync.Mutex
}

// NewHandler creates a new HTTP handler
func NewHandler(checker WeatherChecker) *Handler {
	return &Handler{checker: checker}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "weathercheck",
		"version": "1.0.0",
	})
}

// CheckWeather handles GET /api/v1/weather/check?city=...&expected=...
func (h *Handler) CheckWeather(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "weather checking is not configured",
		})
		return
	}

	var req domain.CheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city and expected query parameters are required"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	result, err := h.checker.Check(c.Request.Context(), req.City, req.ExpectedCondition)
	h.mu.Unlock()

	if err != nil {
		c.JSON(statusForError(err), errorBody(result, err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// statusForError maps domain errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEnvironment):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrFetchTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrElementNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorBody includes the negative result when the check got far enough to produce one
func errorBody(result *domain.WeatherCheckResult, err error) gin.H {
	body := gin.H{"error": err.Error()}
	if result != nil {
		body["result"] = result
	}
	return body
}
