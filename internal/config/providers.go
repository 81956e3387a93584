package config

import (
	"fmt"
	"io"
	"os"

	"github.com/talentlens/console/internal/models"
	"gopkg.in/yaml.v3"
)

// ProviderCatalog is the closed set of AI providers offered in the console.
type ProviderCatalog struct {
	Default   models.Provider       `json:"default" yaml:"default"`
	Providers []models.ProviderInfo `json:"providers" yaml:"providers"`
}

// DefaultProviderCatalog returns the providers the backend ships with.
func DefaultProviderCatalog() *ProviderCatalog {
	return &ProviderCatalog{
		Default: models.DefaultProvider,
		Providers: []models.ProviderInfo{
			{ID: "openai", Label: "OpenAI (GPT-3.5)"},
			{ID: "gemini", Label: "Google Gemini"},
			{ID: "groq", Label: "Groq (Llama 3.1)"},
		},
	}
}

// LoadProviderCatalog reads a YAML catalog. An empty path yields the default catalog.
func LoadProviderCatalog(path string) (*ProviderCatalog, error) {
	if path == "" {
		return DefaultProviderCatalog(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open provider catalog: %w", err)
	}
	defer file.Close()

	return ParseProviderCatalog(file)
}

// ParseProviderCatalog parses a catalog from an io.Reader.
func ParseProviderCatalog(r io.Reader) (*ProviderCatalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var catalog ProviderCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse provider catalog: %w", err)
	}
	if len(catalog.Providers) == 0 {
		return nil, fmt.Errorf("provider catalog lists no providers")
	}
	if catalog.Default == "" {
		catalog.Default = catalog.Providers[0].ID
	}
	if !catalog.Has(catalog.Default) {
		return nil, fmt.Errorf("default provider %q is not in the catalog", catalog.Default)
	}

	return &catalog, nil
}

// Has reports whether id names a provider in the catalog.
func (c *ProviderCatalog) Has(id models.Provider) bool {
	for _, p := range c.Providers {
		if p.ID == id {
			return true
		}
	}
	return false
}

// IDs returns the provider identifiers in catalog order.
func (c *ProviderCatalog) IDs() []interface{} {
	ids := make([]interface{}, 0, len(c.Providers))
	for _, p := range c.Providers {
		ids = append(ids, p.ID)
	}
	return ids
}
