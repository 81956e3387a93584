// handlers_settings.go - AI provider settings proxy handlers
package api

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
	"github.com/talentlens/console/internal/config"
	"github.com/talentlens/console/internal/models"
)

// SettingsHandlerImpl implements the SettingsHandler interface
type SettingsHandlerImpl struct {
	backend SettingsBackend
	catalog *config.ProviderCatalog
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(backend SettingsBackend, catalog *config.ProviderCatalog) SettingsHandler {
	if catalog == nil {
		catalog = config.DefaultProviderCatalog()
	}
	return &SettingsHandlerImpl{backend: backend, catalog: catalog}
}

// HandleGetSettings returns the provider settings
func (h *SettingsHandlerImpl) HandleGetSettings(c echo.Context) error {
	settings, err := h.backend.Settings(c.Request().Context())
	if err != nil {
		return backendError(err, "settings", "")
	}
	return c.JSON(http.StatusOK, settings)
}

// HandleUpdateSettings stores new provider settings
func (h *SettingsHandlerImpl) HandleUpdateSettings(c echo.Context) error {
	var req models.AISettings
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := validateSettings(&req); err != nil {
		return err
	}

	message, err := h.backend.UpdateSettings(c.Request().Context(), req)
	if err != nil {
		return backendError(err, "settings", "")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

// HandleTestConnection asks the backend to reach a provider
func (h *SettingsHandlerImpl) HandleTestConnection(c echo.Context) error {
	provider := models.Provider(c.Param("provider"))
	if !h.catalog.Has(provider) {
		return NewValidationError("provider")
	}

	status, err := h.backend.TestConnection(c.Request().Context(), provider)
	if err != nil {
		return backendError(err, "provider", string(provider))
	}
	return c.JSON(http.StatusOK, status)
}

func validateSettings(s *models.AISettings) error {
	for _, p := range []*models.ProviderSettings{s.OpenAI, s.Gemini, s.Groq} {
		if p == nil {
			continue
		}
		err := validation.ValidateStruct(p,
			validation.Field(&p.APIURL, is.URL),
			validation.Field(&p.Model, validation.Length(0, 128)),
		)
		if err != nil {
			return NewRequestValidationError(err)
		}
	}
	return nil
}
