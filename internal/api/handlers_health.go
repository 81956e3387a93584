// handlers_health.go - Health check and provider catalog handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talentlens/console/internal/config"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version    string
	backendURL string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, backendURL string) HealthHandler {
	return &HealthHandlerImpl{
		version:    version,
		backendURL: backendURL,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"backend": h.backendURL,
	})
}

// ProviderHandlerImpl implements the ProviderHandler interface
type ProviderHandlerImpl struct {
	catalog *config.ProviderCatalog
}

// NewProviderHandler creates a new provider catalog handler
func NewProviderHandler(catalog *config.ProviderCatalog) ProviderHandler {
	if catalog == nil {
		catalog = config.DefaultProviderCatalog()
	}
	return &ProviderHandlerImpl{catalog: catalog}
}

// HandleListProviders returns the selectable AI providers and the default
func (h *ProviderHandlerImpl) HandleListProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog)
}
