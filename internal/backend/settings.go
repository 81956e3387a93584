package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/talentlens/console/internal/models"
)

// Settings returns the AI provider settings stored on the backend.
func (c *Client) Settings(ctx context.Context) (*models.AISettings, error) {
	var out models.AISettings
	if err := c.doJSON(ctx, http.MethodGet, "/admin/settings", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings replaces the provider settings and returns the backend's confirmation.
func (c *Client) UpdateSettings(ctx context.Context, settings models.AISettings) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/admin/settings", nil, settings, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// TestConnection asks the backend whether provider is configured.
func (c *Client) TestConnection(ctx context.Context, provider models.Provider) (*models.ConnectionStatus, error) {
	var out models.ConnectionStatus
	path := "/admin/settings/test/" + url.PathEscape(string(provider))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
